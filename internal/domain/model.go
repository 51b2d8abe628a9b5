package domain

import "time"

// Raw pair observation as reported by a provider for one listing.
// Immutable after fetch; the pipeline never writes back into it.
type RawListing struct {
	ChainID       string    `json:"chain_id"`
	TokenAddress  string    `json:"token_address"` // base token mint, normalized lower-case
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	PairCreatedAt time.Time `json:"pair_created_at"`
	LiquidityUSD  float64   `json:"liquidity_usd"`
	FDV           float64   `json:"fdv"`
	Buys5m        int       `json:"buys_5m"`
	Sells5m       int       `json:"sells_5m"`
	Buys1h        int       `json:"buys_1h"`
	Sells1h       int       `json:"sells_1h"`
	Volume5m      float64   `json:"volume_5m"`
	Volume1h      float64   `json:"volume_1h"`
	PriceChange5m float64   `json:"price_change_5m"` // percent
	PriceChange1h float64   `json:"price_change_1h"` // percent
	PriceUSD      float64   `json:"price_usd"`
	URL           string    `json:"url"`     // provider pair page
	Holders       int       `json:"holders"` // optional, 0 when the provider does not report it
}

// External reference links attached to every emitted candidate.
type RefLinks struct {
	Provider    string `json:"provider"`
	Marketplace string `json:"marketplace"`
	Screener    string `json:"screener"`
}

// Candidate is a listing that survived the whole pipeline.
// Built once per cycle, handed to the sink, not retained afterwards.
type Candidate struct {
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	TokenAddress   string   `json:"token_address"`
	Score          float64  `json:"score"`
	Age            string   `json:"age"` // human readable, e.g. "7m" or "1h 12m"
	LiquidityUSD   float64  `json:"liquidity_usd"`
	FDV            float64  `json:"fdv"`
	PriceUSD       float64  `json:"price_usd"`
	URL            string   `json:"url"`
	BuySellRatio5m float64  `json:"buy_sell_ratio_5m"`
	Volume5m       float64  `json:"volume_5m"`
	Links          RefLinks `json:"links"`
}

// One completed cycle as delivered to the sink and kept in the snapshot store.
type CycleResult struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Candidates  []Candidate `json:"candidates"`
}

// BuySellRatio5m with the sell count floored at 1, per the BSR definition.
func (l *RawListing) BuySellRatio5m() float64 {
	sells := l.Sells5m
	if sells < 1 {
		sells = 1
	}
	return float64(l.Buys5m) / float64(sells)
}

// Age of the pair relative to an explicit clock reading.
func (l *RawListing) Age(now time.Time) time.Duration {
	return now.Sub(l.PairCreatedAt)
}
