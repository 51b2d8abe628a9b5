package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
)

// Verdict substrings that block a candidate. Anything else passes.
var blockedVerdicts = []string{"honeypot", "malicious", "scam"}

// Oracle asks an external verdict service whether a token looks safe.
//
// The screen is fail-open by contract: only a successful response whose
// verdict explicitly names a blocked pattern rejects the token. Timeouts,
// transport errors, non-2xx statuses and unreadable bodies all pass, so a
// flaky oracle can never starve the pipeline.
type Oracle struct {
	log      logger.Logger
	http     *http.Client
	endpoint string // URL template, %s = token address; empty disables the screen
	timeout  time.Duration
}

func NewOracle(log logger.Logger, httpCl *http.Client, cfg *config.RiskConfig) (*Oracle, error) {
	if cfg == nil {
		return nil, errors.New("risk config is required")
	}
	if httpCl == nil {
		return nil, errors.New("http client is required")
	}

	return &Oracle{
		log:      log,
		http:     httpCl,
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
	}, nil
}

// Enabled reports whether a verdict endpoint is configured at all.
func (o *Oracle) Enabled() bool {
	return o.endpoint != ""
}

type verdictResponse struct {
	Verdict string `json:"verdict"`
}

func (o *Oracle) IsSafe(ctx context.Context, tokenAddress string) bool {
	if !o.Enabled() {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(o.endpoint, tokenAddress), nil)
	if err != nil {
		o.log.Debugf("Risk screen request build failed for %s: %v", tokenAddress, err)
		metrics.RiskFailOpen.Inc()
		return true
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		o.log.Debugf("Risk screen unavailable for %s: %v", tokenAddress, err)
		metrics.RiskFailOpen.Inc()
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		o.log.Debugf("Risk screen for %s returned status %d", tokenAddress, resp.StatusCode)
		metrics.RiskFailOpen.Inc()
		return true
	}

	var body verdictResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		o.log.Debugf("Risk screen verdict for %s is malformed: %v", tokenAddress, err)
		metrics.RiskFailOpen.Inc()
		return true
	}

	verdict := strings.ToLower(body.Verdict)
	for _, bad := range blockedVerdicts {
		if strings.Contains(verdict, bad) {
			o.log.Infof("Risk screen blocked %s: verdict=%q", tokenAddress, body.Verdict)
			metrics.RiskBlocked.Inc()
			return false
		}
	}
	return true
}

// ScreenAll checks listings concurrently under the given in-flight cap and
// returns the safe ones in input order. With the oracle disabled it returns
// the input as-is.
func (o *Oracle) ScreenAll(ctx context.Context, listings []domain.RawListing, concurrency int) []domain.RawListing {
	if !o.Enabled() || len(listings) == 0 {
		return listings
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	safe := make([]bool, len(listings))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range listings {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			safe[i] = o.IsSafe(ctx, listings[i].TokenAddress)
		}(i)
	}
	wg.Wait()

	out := make([]domain.RawListing, 0, len(listings))
	for i, l := range listings {
		if safe[i] {
			out = append(out, l)
		}
	}
	return out
}
