package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrigramEmbedder_Deterministic(t *testing.T) {
	e := NewTrigramEmbedder()

	first, err := e.Embed(context.Background(), []string{"armed services"})
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), []string{"armed services"})
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestTrigramEmbedder_NormalizesInput(t *testing.T) {
	e := NewTrigramEmbedder()

	vectors, err := e.Embed(context.Background(), []string{"Armed Services", "armed  services."})
	require.NoError(t, err)
	require.Equal(t, vectors[0], vectors[1])
}

func TestTrigramEmbedder_UnitNorm(t *testing.T) {
	e := NewTrigramEmbedder()

	vectors, err := e.Embed(context.Background(), []string{"aerospace and defense"})
	require.NoError(t, err)

	var norm float64
	for _, v := range vectors[0] {
		norm += v * v
	}
	require.InDelta(t, 1.0, norm, 1e-9)
}

func TestTrigramEmbedder_EmptyText(t *testing.T) {
	e := NewTrigramEmbedder()

	vectors, err := e.Embed(context.Background(), []string{"", "  ", "ab"})
	require.NoError(t, err)

	for _, vec := range vectors {
		for _, v := range vec {
			require.Zero(t, v)
		}
	}
}
