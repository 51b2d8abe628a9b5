package filter

import (
	"strings"
	"time"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Rule names, reported on rejection and used as metric labels.
const (
	RuleAge          = "age"
	RuleLiquidity    = "liquidity"
	RuleFDV          = "fdv"
	RuleTxns5m       = "txns_5m"
	RuleBuySellRatio = "buy_sell_ratio_5m"
	RuleVolume5m     = "volume_5m"
	RuleHolders      = "holders"
	RuleKeywords     = "keywords"
)

// Chain is the deterministic predicate chain over raw listings. Evaluation
// order is fixed, cheapest and most discriminating first, and the first
// failing rule short-circuits. The chain reads no clock: "now" is an input.
type Chain struct {
	cfg      config.FiltersConfig
	keywords []string // pre-lowered
}

func NewChain(cfg config.FiltersConfig) *Chain {
	kw := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Chain{cfg: cfg, keywords: kw}
}

// Eval accepts or rejects one listing. On rejection the failed rule name is
// returned; on acceptance the reason is empty.
func (c *Chain) Eval(now time.Time, l *domain.RawListing) (bool, string) {
	if l.Age(now) > c.cfg.MaxAge {
		return false, RuleAge
	}
	if l.LiquidityUSD < c.cfg.MinLiquidityUSD || l.LiquidityUSD > c.cfg.MaxLiquidityUSD {
		return false, RuleLiquidity
	}
	if l.FDV <= 0 || l.FDV > c.cfg.MaxFDV {
		return false, RuleFDV
	}
	if l.Buys5m+l.Sells5m < c.cfg.MinTxns5m {
		return false, RuleTxns5m
	}
	if l.BuySellRatio5m() < c.cfg.MinBuySellRatio5m {
		return false, RuleBuySellRatio
	}
	if l.Volume5m < c.cfg.MinVolume5m {
		return false, RuleVolume5m
	}
	if c.cfg.MinHolders > 0 && l.Holders < c.cfg.MinHolders {
		return false, RuleHolders
	}
	if !c.matchesKeyword(l) {
		return false, RuleKeywords
	}
	return true, ""
}

func (c *Chain) matchesKeyword(l *domain.RawListing) bool {
	if len(c.keywords) == 0 {
		return true // no keyword set configured, rule disabled
	}
	haystack := strings.ToLower(l.Name + " " + l.Symbol)
	for _, kw := range c.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
