package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc123", NormalizeAddress("  ABC123 "))
	assert.Equal(t, "7xkxtg2cw87d97txjsdpbd5jbkhetqa83tzrujosgasu", NormalizeAddress("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{-5 * time.Second, "0s"},
		{45 * time.Second, "45s"},
		{7 * time.Minute, "7m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{time.Hour, "1h"},
		{time.Hour + 12*time.Minute, "1h 12m"},
		{26*time.Hour + 5*time.Minute, "26h 5m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAge(tc.in), "age %s", tc.in)
	}
}

func TestBuySellRatio5m_FloorsSellsAtOne(t *testing.T) {
	t.Parallel()

	l := RawListing{Buys5m: 30, Sells5m: 0}
	assert.Equal(t, 30.0, l.BuySellRatio5m())

	l = RawListing{Buys5m: 30, Sells5m: 5}
	assert.Equal(t, 6.0, l.BuySellRatio5m())
}
