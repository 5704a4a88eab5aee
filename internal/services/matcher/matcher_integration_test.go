//go:build integration

package matcher

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/clients"
)

// TestScore_LiveEmbeddings_Integration calls a real embeddings API and checks
// that semantically related descriptions outscore unrelated ones.
// To run this test, use: go test -tags=integration -v ./...
func TestScore_LiveEmbeddings_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	apiURL := os.Getenv("EMBEDDINGS_API_URL")
	apiKey := os.Getenv("EMBEDDINGS_API_KEY")
	model := os.Getenv("EMBEDDINGS_MODEL")
	if apiURL == "" || apiKey == "" || model == "" {
		t.Fatal("EMBEDDINGS_API_URL, EMBEDDINGS_API_KEY and EMBEDDINGS_MODEL environment variables must be set for integration tests")
	}

	client := clients.NewOpenAICompatibleEmbeddingClient(apiURL, apiKey, model)
	m, err := NewMatcher(nil, client, 4)
	require.NoError(t, err)

	defense, err := m.Score(context.Background(), "Armed Services", "Aerospace & Defense")
	require.NoError(t, err)
	retail, err := m.Score(context.Background(), "Armed Services", "Consumer Retail")
	require.NoError(t, err)

	t.Logf("armed services vs aerospace & defense: %f, vs consumer retail: %f", defense, retail)
	require.Greater(t, defense, retail)
}
