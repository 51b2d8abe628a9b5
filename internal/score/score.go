package score

import (
	"math"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Model computes the momentum score of a listing. Pure: no I/O, no clock,
// identical input and weights always give the identical score.
type Model struct {
	cfg config.ScoringConfig
}

func NewModel(cfg config.ScoringConfig) *Model {
	return &Model{cfg: cfg}
}

// Score, rounded to two decimals:
//
//	w_bsr   * max(0, bsr5 - 1)
//	+ w_vol5  * min(vol5m / vol5m_divisor, vol5m_cap)
//	+ w_vol1h * min(vol1h / vol1h_divisor, vol1h_cap)
//	+ w_chg5  * max(0, priceChange5m)
//	+ w_chg1h * max(0, priceChange1h)
//	+ liquidity-band bonus
//	- max(0, (fdv - fdv_soft_cap) / fdv_penalty_divisor)
func (m *Model) Score(l *domain.RawListing) float64 {
	c := &m.cfg

	s := c.WeightBSR * math.Max(0, l.BuySellRatio5m()-1.0)
	s += c.WeightVolume5m * cappedShare(l.Volume5m, c.Volume5mDivisor, c.Volume5mCap)
	s += c.WeightVolume1h * cappedShare(l.Volume1h, c.Volume1hDivisor, c.Volume1hCap)
	s += c.WeightPriceChange5m * math.Max(0, l.PriceChange5m)
	s += c.WeightPriceChange1h * math.Max(0, l.PriceChange1h)

	if l.LiquidityUSD >= c.BonusLiquidityMin && l.LiquidityUSD <= c.BonusLiquidityMax {
		s += c.LiquidityBonus
	}

	if c.FDVPenaltyDivisor > 0 {
		s -= math.Max(0, (l.FDV-c.FDVSoftCap)/c.FDVPenaltyDivisor)
	}

	return round2(s)
}

func cappedShare(v, divisor, ceil float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return math.Min(v/divisor, ceil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
