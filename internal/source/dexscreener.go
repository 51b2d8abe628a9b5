package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gitlab.com/nevasik7/alerting/logger"
	"golang.org/x/time/rate"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
)

// Adapter fetches raw listings for one free-text query.
// Provider failure never escapes: a broken fetch is an empty result.
type Adapter interface {
	Query(ctx context.Context, query string) []domain.RawListing
}

// Client is a DexScreener-style search adapter. One instance per provider,
// sharing the process-wide HTTP client.
type Client struct {
	log      logger.Logger
	http     *http.Client
	endpoint string
	chainID  string
	timeout  time.Duration
	limiter  *rate.Limiter
}

func New(log logger.Logger, httpCl *http.Client, cfg *config.ProviderConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("provider config is required")
	}
	if httpCl == nil {
		return nil, errors.New("http client is required")
	}

	return &Client{
		log:      log,
		http:     httpCl,
		endpoint: cfg.Endpoint,
		chainID:  cfg.ChainID,
		timeout:  cfg.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
	}, nil
}

func (c *Client) Query(ctx context.Context, query string) []domain.RawListing {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil // shutdown while queued behind the rate limiter
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.log.Warnf("Source request build failed for %q: %v", query, err)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnf("Source fetch failed for %q: %v", query, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Warnf("Source fetch for %q returned status %d", query, resp.StatusCode)
		return nil
	}

	var body searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warnf("Source response for %q is malformed: %v", query, err)
		return nil
	}

	out := make([]domain.RawListing, 0, len(body.Pairs))
	for i := range body.Pairs {
		p := &body.Pairs[i]
		if p.ChainID != c.chainID {
			continue
		}
		if p.BaseToken.Address == "" {
			metrics.ListingsMalformed.Inc()
			continue
		}
		out = append(out, p.toListing())
	}

	c.log.Debugf("Source query %q: %d pairs, %d kept for chain %s", query, len(body.Pairs), len(out), c.chainID)
	return out
}

// Close releases pooled connections of the shared client. Called once on
// shutdown by the owner of the client, not per adapter.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// --- provider wire format ---

type searchResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []pairData `json:"pairs"`
}

type pairData struct {
	ChainID       string          `json:"chainId"`
	DexID         string          `json:"dexId"`
	URL           string          `json:"url"`
	PairAddress   string          `json:"pairAddress"`
	BaseToken     wireToken       `json:"baseToken"`
	PriceUsd      string          `json:"priceUsd"`
	Txns          wireTxns        `json:"txns"`
	Volume        wireWindows     `json:"volume"`
	PriceChange   wireWindows     `json:"priceChange"`
	Liquidity     *wireLiquidity  `json:"liquidity"` // pointer: providers omit it for dead pools
	Fdv           float64         `json:"fdv"`
	PairCreatedAt int64           `json:"pairCreatedAt"` // epoch millis
	Info          *wireExtraInfo  `json:"info"`
}

type wireToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type wireTxnWindow struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type wireTxns struct {
	M5 wireTxnWindow `json:"m5"`
	H1 wireTxnWindow `json:"h1"`
}

type wireWindows struct {
	M5 float64 `json:"m5"`
	H1 float64 `json:"h1"`
}

type wireLiquidity struct {
	Usd float64 `json:"usd"`
}

type wireExtraInfo struct {
	Holders int `json:"holders"`
}

func (p *pairData) toListing() domain.RawListing {
	l := domain.RawListing{
		ChainID:       p.ChainID,
		TokenAddress:  domain.NormalizeAddress(p.BaseToken.Address),
		Name:          p.BaseToken.Name,
		Symbol:        p.BaseToken.Symbol,
		PairCreatedAt: time.UnixMilli(p.PairCreatedAt).UTC(),
		FDV:           p.Fdv,
		Buys5m:        p.Txns.M5.Buys,
		Sells5m:       p.Txns.M5.Sells,
		Buys1h:        p.Txns.H1.Buys,
		Sells1h:       p.Txns.H1.Sells,
		Volume5m:      p.Volume.M5,
		Volume1h:      p.Volume.H1,
		PriceChange5m: p.PriceChange.M5,
		PriceChange1h: p.PriceChange.H1,
		URL:           p.URL,
	}
	if p.Liquidity != nil {
		l.LiquidityUSD = p.Liquidity.Usd
	}
	if p.Info != nil {
		l.Holders = p.Info.Holders
	}
	if p.PriceUsd != "" {
		if v, err := strconv.ParseFloat(p.PriceUsd, 64); err == nil {
			l.PriceUSD = v
		}
	}
	return l
}
