package domain

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeAddress is the canonical form of a token/mint address used as the
// deduplication identity key within a cycle.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// FormatAge renders a pair age for humans: "45s", "7m", "1h 12m".
// Negative ages (provider clock ahead of ours) collapse to "0s".
func FormatAge(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	if age < time.Minute {
		return fmt.Sprintf("%ds", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm", int(age.Minutes()))
	}
	h := int(age.Hours())
	m := int(age.Minutes()) - h*60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
