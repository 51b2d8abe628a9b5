package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/dedupe"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
	"github.com/ReqCrypto/sol-meme-scanner/internal/filter"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
	"github.com/ReqCrypto/sol-meme-scanner/internal/rank"
	"github.com/ReqCrypto/sol-meme-scanner/internal/score"
	"github.com/ReqCrypto/sol-meme-scanner/internal/source"
)

// Screener is the risk-screen surface the pipeline needs. Satisfied by
// *risk.Oracle; narrowed here so tests can stub it.
type Screener interface {
	ScreenAll(ctx context.Context, listings []domain.RawListing, concurrency int) []domain.RawListing
}

// Service runs one discovery->filter->score->rank pass. It is the single
// orchestration point of the pipeline; the scheduler, tests and any future
// CLI all go through RunCycle.
type Service struct {
	log      logger.Logger
	cfg      *config.Config
	adapter  source.Adapter
	screener Screener
	filters  *filter.Chain
	model    *score.Model
	now      func() time.Time
}

func New(log logger.Logger, cfg *config.Config, adapter source.Adapter, screener Screener) *Service {
	return &Service{
		log:      log,
		cfg:      cfg,
		adapter:  adapter,
		screener: screener,
		filters:  filter.NewChain(cfg.Filters),
		model:    score.NewModel(cfg.Scoring),
		now:      time.Now,
	}
}

// RunCycle executes the whole pipeline once and returns the ranked top-N.
// Provider and oracle failures have already been absorbed below this level;
// an error here means the cycle itself could not proceed (cancellation).
func (s *Service) RunCycle(ctx context.Context) ([]domain.Candidate, error) {
	started := s.now()

	specific := s.fetchAll(ctx, s.cfg.Provider.SpecificQueries, "specific")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := specific
	if dedupe.UniqueCount(specific...) < s.cfg.Scanner.MinSpecificResults {
		s.log.Debugf("Specific queries below minimum (%d), running %d fallback queries",
			s.cfg.Scanner.MinSpecificResults, len(s.cfg.Provider.FallbackQueries))
		fallback := s.fetchAll(ctx, s.cfg.Provider.FallbackQueries, "fallback")
		groups = append(groups, fallback...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := dedupe.Merge(groups...)

	now := s.now()
	passed := make([]domain.RawListing, 0, len(merged))
	for i := range merged {
		ok, rule := s.filters.Eval(now, &merged[i])
		if !ok {
			metrics.ListingsRejected.WithLabelValues(rule).Inc()
			continue
		}
		passed = append(passed, merged[i])
	}

	screened := s.screener.ScreenAll(ctx, passed, s.cfg.Scanner.RiskConcurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cands := make([]domain.Candidate, 0, len(screened))
	for i := range screened {
		cands = append(cands, s.buildCandidate(now, &screened[i]))
	}

	top := rank.Select(cands, s.cfg.Scoring.MinScore, s.cfg.Scoring.TopN)

	metrics.CandidatesEmitted.Add(float64(len(top)))
	s.log.Infof("Cycle done in %s: %d fetched, %d unique, %d filtered through, %d screened, %d ranked",
		s.now().Sub(started).Round(time.Millisecond), totalLen(groups), len(merged), len(passed), len(screened), len(top))

	return top, nil
}

// fetchAll fans the queries out under the source concurrency cap and joins
// the per-query groups back in config order, so dedup priority stays stable
// no matter which fetch finished first.
func (s *Service) fetchAll(ctx context.Context, queries []string, kind string) [][]domain.RawListing {
	groups := make([][]domain.RawListing, len(queries))

	sem := make(chan struct{}, s.cfg.Scanner.SourceConcurrency)
	var wg sync.WaitGroup

	for i, q := range queries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, q string) {
			defer wg.Done()
			defer func() { <-sem }()
			groups[i] = s.adapter.Query(ctx, q)
			metrics.ListingsFetched.WithLabelValues(kind).Add(float64(len(groups[i])))
		}(i, q)
	}
	wg.Wait()

	return groups
}

func (s *Service) buildCandidate(now time.Time, l *domain.RawListing) domain.Candidate {
	return domain.Candidate{
		Name:           l.Name,
		Symbol:         l.Symbol,
		TokenAddress:   l.TokenAddress,
		Score:          s.model.Score(l),
		Age:            domain.FormatAge(l.Age(now)),
		LiquidityUSD:   l.LiquidityUSD,
		FDV:            l.FDV,
		PriceUSD:       l.PriceUSD,
		URL:            l.URL,
		BuySellRatio5m: l.BuySellRatio5m(),
		Volume5m:       l.Volume5m,
		Links: domain.RefLinks{
			Provider:    l.URL,
			Marketplace: expandLink(s.cfg.Links.Marketplace, l.TokenAddress),
			Screener:    expandLink(s.cfg.Links.Screener, l.TokenAddress),
		},
	}
}

func expandLink(template, addr string) string {
	if template == "" {
		return ""
	}
	return fmt.Sprintf(template, addr)
}

func totalLen(groups [][]domain.RawListing) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
