package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/domain"
)

// stubEmbedder returns fixed vectors per text, mimicking a pretrained model
// that places related descriptions close together.
type stubEmbedder struct {
	vectors map[string][]float64
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	s.calls++
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func newStub() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float64{
		"armed services":      {0.9, 0.1, 0.0},
		"aerospace & defense": {0.8, 0.2, 0.1},
		"consumer retail":     {0.0, 0.2, 0.9},
		"agriculture":         {0.1, 0.9, 0.1},
	}}
}

func TestScore_Ordering(t *testing.T) {
	m, err := NewMatcher(nil, newStub(), 0)
	require.NoError(t, err)

	defense, err := m.Score(context.Background(), "armed services", "aerospace & defense")
	require.NoError(t, err)
	retail, err := m.Score(context.Background(), "armed services", "consumer retail")
	require.NoError(t, err)

	require.Greater(t, defense, retail)
}

func TestScore_Range(t *testing.T) {
	stub := newStub()
	m, err := NewMatcher(nil, stub, 0)
	require.NoError(t, err)

	for left := range stub.vectors {
		for right := range stub.vectors {
			score, err := m.Score(context.Background(), left, right)
			require.NoError(t, err)
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	m, err := NewMatcher(nil, newStub(), 0)
	require.NoError(t, err)

	first, err := m.Score(context.Background(), "armed services", "aerospace & defense")
	require.NoError(t, err)
	second, err := m.Score(context.Background(), "armed services", "aerospace & defense")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestScore_EmptyText(t *testing.T) {
	stub := newStub()
	m, err := NewMatcher(nil, stub, 0)
	require.NoError(t, err)

	score, err := m.Score(context.Background(), "", "aerospace & defense")
	require.NoError(t, err)
	require.Zero(t, score)

	score, err = m.Score(context.Background(), "armed services", "")
	require.NoError(t, err)
	require.Zero(t, score)

	require.Zero(t, stub.calls, "empty text must not hit the embedder")
}

func TestMatchAll(t *testing.T) {
	stub := newStub()
	m, err := NewMatcher(nil, stub, 2)
	require.NoError(t, err)

	committees := []domain.Committee{
		{ID: "C01", Description: "armed services"},
		{ID: "C02", Description: "agriculture"},
		{ID: "C03", Description: ""}, // unresolved description
	}
	firms := []domain.Firm{
		{Ticker: "LMT", Industry: "aerospace & defense"},
		{Ticker: "WMT", Industry: "consumer retail"},
	}

	set, err := m.MatchAll(context.Background(), committees, firms)
	require.NoError(t, err)
	require.Equal(t, len(committees)*len(firms), set.Len())

	defense, ok := set.Strength("C01", "LMT")
	require.True(t, ok)
	retail, ok := set.Strength("C01", "WMT")
	require.True(t, ok)
	require.Greater(t, defense, retail)

	// empty committee description scores 0 against everything
	empty, ok := set.Strength("C03", "LMT")
	require.True(t, ok)
	require.Zero(t, empty)

	_, ok = set.Strength("C99", "LMT")
	require.False(t, ok)

	// one embedder call per side of the grid
	require.Equal(t, 2, stub.calls)
}

func TestMatchAll_Deterministic(t *testing.T) {
	committees := []domain.Committee{
		{ID: "C01", Description: "armed services"},
		{ID: "C02", Description: "agriculture"},
	}
	firms := []domain.Firm{
		{Ticker: "LMT", Industry: "aerospace & defense"},
		{Ticker: "WMT", Industry: "consumer retail"},
	}

	m1, err := NewMatcher(nil, newStub(), 4)
	require.NoError(t, err)
	m2, err := NewMatcher(nil, newStub(), 1)
	require.NoError(t, err)

	first, err := m1.MatchAll(context.Background(), committees, firms)
	require.NoError(t, err)
	second, err := m2.MatchAll(context.Background(), committees, firms)
	require.NoError(t, err)

	require.Equal(t, first.All(), second.All())
}

func TestSimilarity_Bounds(t *testing.T) {
	require.Equal(t, 1.0, similarity([]float64{1, 0}, []float64{1, 0}))
	require.Equal(t, 0.0, similarity([]float64{1, 0}, []float64{-1, 0}))
	require.InDelta(t, 0.5, similarity([]float64{1, 0}, []float64{0, 1}), 1e-12)

	// degenerate vectors carry no information
	require.Zero(t, similarity(nil, []float64{1}))
	require.Zero(t, similarity([]float64{0, 0}, []float64{1, 0}))
	require.Zero(t, similarity([]float64{1, 0}, []float64{1, 0, 0}))
}
