package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

func cand(addr string, score, vol5 float64) domain.Candidate {
	return domain.Candidate{TokenAddress: addr, Score: score, Volume5m: vol5}
}

func TestSelect_ThresholdAndOrder(t *testing.T) {
	t.Parallel()

	in := []domain.Candidate{
		cand("a", 41.5, 0),
		cand("b", 12.0, 0), // below threshold
		cand("c", 99.9, 0),
		cand("d", 40.0, 0), // exactly at threshold stays
	}

	out := Select(in, 40, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].TokenAddress)
	assert.Equal(t, "a", out[1].TokenAddress)
	assert.Equal(t, "d", out[2].TokenAddress)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
	for _, c := range out {
		assert.GreaterOrEqual(t, c.Score, 40.0)
	}
}

func TestSelect_Truncates(t *testing.T) {
	t.Parallel()

	in := []domain.Candidate{
		cand("a", 50, 0), cand("b", 60, 0), cand("c", 70, 0), cand("d", 80, 0),
	}

	out := Select(in, 0, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "d", out[0].TokenAddress)
	assert.Equal(t, "c", out[1].TokenAddress)
}

// Equal scores break on 5m volume (desc), then address (asc), so the order
// never depends on how the provider happened to return the records.
func TestSelect_DeterministicTieBreak(t *testing.T) {
	t.Parallel()

	in := []domain.Candidate{
		cand("zzz", 50, 1_000),
		cand("aaa", 50, 1_000),
		cand("mmm", 50, 9_000),
	}

	out := Select(in, 0, 10)
	require.Len(t, out, 3)
	assert.Equal(t, "mmm", out[0].TokenAddress) // highest volume first
	assert.Equal(t, "aaa", out[1].TokenAddress) // then ascending address
	assert.Equal(t, "zzz", out[2].TokenAddress)

	// shuffle the input, same output
	shuffled := []domain.Candidate{in[2], in[0], in[1]}
	out2 := Select(shuffled, 0, 10)
	assert.Equal(t, out, out2)
}

func TestSelect_EmptyAndNoLimit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Select(nil, 40, 5))

	in := []domain.Candidate{cand("a", 50, 0)}
	out := Select(in, 0, 0) // limit 0 means unlimited
	assert.Len(t, out, 1)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []domain.Candidate{cand("b", 10, 0), cand("a", 20, 0)}
	_ = Select(in, 0, 10)
	assert.Equal(t, "b", in[0].TokenAddress)
	assert.Equal(t, "a", in[1].TokenAddress)
}
