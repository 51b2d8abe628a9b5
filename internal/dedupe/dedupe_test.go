package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

func listing(addr, name string) domain.RawListing {
	return domain.RawListing{TokenAddress: addr, Name: name}
}

// The first occurrence across groups wins; groups are walked in order, so a
// specific-query record is never overwritten by fallback data.
func TestMerge_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	specific := []domain.RawListing{
		listing("aaa", "from-specific"),
		listing("bbb", "from-specific"),
	}
	fallback := []domain.RawListing{
		listing("AAA", "from-fallback"), // same address, different case
		listing("ccc", "from-fallback"),
	}

	out := Merge(specific, fallback)

	require.Len(t, out, 3)
	assert.Equal(t, "from-specific", out[0].Name)
	assert.Equal(t, "from-specific", out[1].Name)
	assert.Equal(t, "from-fallback", out[2].Name)
	assert.Equal(t, "ccc", out[2].TokenAddress)
}

func TestMerge_NoDuplicateAddresses(t *testing.T) {
	t.Parallel()

	out := Merge(
		[]domain.RawListing{listing("x", "a"), listing("x", "b"), listing("y", "c")},
		[]domain.RawListing{listing("X ", "d"), listing("z", "e")},
	)

	seen := map[string]bool{}
	for _, l := range out {
		key := domain.NormalizeAddress(l.TokenAddress)
		assert.False(t, seen[key], "duplicate address %q in output", key)
		seen[key] = true
	}
	assert.Len(t, out, 3)
}

func TestMerge_SkipsEmptyAddress(t *testing.T) {
	t.Parallel()

	out := Merge([]domain.RawListing{listing("", "broken"), listing("ok", "fine")})
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].TokenAddress)
}

func TestMerge_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}

func TestUniqueCount(t *testing.T) {
	t.Parallel()

	n := UniqueCount(
		[]domain.RawListing{listing("a", ""), listing("b", "")},
		[]domain.RawListing{listing("A", ""), listing("c", ""), listing("", "")},
	)
	assert.Equal(t, 3, n)
}
