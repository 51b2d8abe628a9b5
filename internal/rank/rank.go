package rank

import (
	"sort"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Select drops candidates below threshold, orders the rest best-first and
// truncates to limit. Ordering is fully deterministic: score descending,
// then 5-minute volume descending, then token address ascending. The input
// slice is not modified.
func Select(cands []domain.Candidate, threshold float64, limit int) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Score >= threshold {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := &kept[i], &kept[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Volume5m != b.Volume5m {
			return a.Volume5m > b.Volume5m
		}
		return a.TokenAddress < b.TokenAddress
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
