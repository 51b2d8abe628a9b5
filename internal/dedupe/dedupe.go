package dedupe

import (
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Merge flattens adapter result groups into one sequence that is unique by
// normalized token address. Groups are walked in the order given and the
// first occurrence of an address wins, so callers must pass high-precision
// (specific-query) groups before noisy fallback groups.
//
// The identity set lives only for this call; nothing survives the cycle.
func Merge(groups ...[]domain.RawListing) []domain.RawListing {
	total := 0
	for _, g := range groups {
		total += len(g)
	}

	seen := make(map[string]struct{}, total)
	out := make([]domain.RawListing, 0, total)

	for _, g := range groups {
		for _, l := range g {
			key := domain.NormalizeAddress(l.TokenAddress)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, l)
		}
	}

	return out
}

// UniqueCount reports how many distinct addresses the groups hold without
// materializing the merged slice. The scheduler uses it to decide whether
// fallback queries are worth running.
func UniqueCount(groups ...[]domain.RawListing) int {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, l := range g {
			key := domain.NormalizeAddress(l.TokenAddress)
			if key == "" {
				continue
			}
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}
