package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	loggerCfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
)

func newTestLogger() logger.Logger {
	return logger.New(loggerCfg.LoggerCfg{Level: "error", Format: "json"})
}

const searchBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "solana",
      "dexId": "raydium",
      "url": "https://dexscreener.com/solana/pair1",
      "pairAddress": "PAIR1",
      "baseToken": {"address": "MintA", "name": "DOGE MOON", "symbol": "DMOON"},
      "priceUsd": "0.00123",
      "txns": {"m5": {"buys": 30, "sells": 5}, "h1": {"buys": 200, "sells": 90}},
      "volume": {"m5": 3000, "h1": 20000},
      "priceChange": {"m5": 12.5, "h1": 40.1},
      "liquidity": {"usd": 50000},
      "fdv": 1000000,
      "pairCreatedAt": 1710000000000
    },
    {
      "chainId": "ethereum",
      "baseToken": {"address": "0xother", "name": "WRONG CHAIN", "symbol": "WC"},
      "pairCreatedAt": 1710000000000
    },
    {
      "chainId": "solana",
      "baseToken": {"address": "", "name": "NO MINT", "symbol": "NM"},
      "pairCreatedAt": 1710000000000
    },
    {
      "chainId": "solana",
      "url": "https://dexscreener.com/solana/pair2",
      "baseToken": {"address": "MintB", "name": "PEPE", "symbol": "PP"},
      "fdv": 200000,
      "pairCreatedAt": 1710000000000
    }
  ]
}`

func newClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	cl, err := New(newTestLogger(), &http.Client{}, &config.ProviderConfig{
		Endpoint:   endpoint,
		ChainID:    "solana",
		Timeout:    2 * time.Second,
		RatePerSec: 1000,
		RateBurst:  1000,
	})
	require.NoError(t, err)
	return cl
}

func TestQuery_DecodesAndFiltersChain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "doge", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	cl := newClient(t, srv.URL)
	out := cl.Query(context.Background(), "doge")

	// wrong chain and missing address are dropped
	require.Len(t, out, 2)

	l := out[0]
	assert.Equal(t, "minta", l.TokenAddress) // normalized
	assert.Equal(t, "DOGE MOON", l.Name)
	assert.Equal(t, "DMOON", l.Symbol)
	assert.Equal(t, 30, l.Buys5m)
	assert.Equal(t, 5, l.Sells5m)
	assert.Equal(t, 200, l.Buys1h)
	assert.Equal(t, 3000.0, l.Volume5m)
	assert.Equal(t, 20000.0, l.Volume1h)
	assert.Equal(t, 12.5, l.PriceChange5m)
	assert.Equal(t, 40.1, l.PriceChange1h)
	assert.Equal(t, 50000.0, l.LiquidityUSD)
	assert.Equal(t, 1000000.0, l.FDV)
	assert.InDelta(t, 0.00123, l.PriceUSD, 1e-9)
	assert.Equal(t, time.UnixMilli(1710000000000).UTC(), l.PairCreatedAt)
	assert.Equal(t, "https://dexscreener.com/solana/pair1", l.URL)

	// absent liquidity object defaults to zero, record still kept
	assert.Equal(t, "mintb", out[1].TokenAddress)
	assert.Equal(t, 0.0, out[1].LiquidityUSD)
}

func TestQuery_Non2xxYieldsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cl := newClient(t, srv.URL)
	assert.Empty(t, cl.Query(context.Background(), "doge"))
}

func TestQuery_MalformedBodyYieldsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs": [{`))
	}))
	defer srv.Close()

	cl := newClient(t, srv.URL)
	assert.Empty(t, cl.Query(context.Background(), "doge"))
}

func TestQuery_TimeoutYieldsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cl, err := New(newTestLogger(), &http.Client{}, &config.ProviderConfig{
		Endpoint:   srv.URL,
		ChainID:    "solana",
		Timeout:    50 * time.Millisecond,
		RatePerSec: 1000,
		RateBurst:  1000,
	})
	require.NoError(t, err)

	assert.Empty(t, cl.Query(context.Background(), "doge"))
}

func TestQuery_UnreachableEndpointYieldsEmpty(t *testing.T) {
	t.Parallel()

	cl := newClient(t, "http://127.0.0.1:1")
	assert.Empty(t, cl.Query(context.Background(), "doge"))
}

func TestNew_RequiresConfigAndClient(t *testing.T) {
	t.Parallel()

	_, err := New(newTestLogger(), nil, &config.ProviderConfig{})
	assert.Error(t, err)

	_, err = New(newTestLogger(), &http.Client{}, nil)
	assert.Error(t, err)
}
