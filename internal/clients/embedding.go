package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Embedder turns texts into fixed-dimension vectors. Implementations must be
// deterministic: the same text always maps to the same vector within a run,
// otherwise backtests stop being reproducible.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAICompatibleEmbeddingClient calls an OpenAI-compatible /embeddings
// endpoint.
type OpenAICompatibleEmbeddingClient struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAICompatibleEmbeddingClient creates a client for OpenAI-compatible
// embedding APIs. apiURL is the full endpoint URL including the /embeddings
// path.
func NewOpenAICompatibleEmbeddingClient(apiURL, apiKey, model string) *OpenAICompatibleEmbeddingClient {
	return &OpenAICompatibleEmbeddingClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// embeddingRequest represents the request structure for OpenAI-compatible APIs
type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// embeddingResponse represents the response structure from OpenAI-compatible APIs
type embeddingResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []embeddingItem `json:"data"`
	Error  *apiError       `json:"error,omitempty"`
}

type embeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Embed sends the texts to the embeddings API and returns the vectors in
// input order regardless of the order the API responds in.
func (c *OpenAICompatibleEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if c.apiKey == "" {
		return nil, errors.New("embeddings API key is empty")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{
		Model:          c.model,
		Input:          texts,
		EncodingFormat: "float",
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		vectors, err := c.sendRequest(ctx, reqBody, len(texts))
		if err != nil {
			lastErr = err
			continue
		}

		return vectors, nil
	}

	return nil, errors.Wrapf(lastErr, "failed after %d retries", c.maxRetries)
}

func (c *OpenAICompatibleEmbeddingClient) sendRequest(ctx context.Context, reqBody embeddingRequest, want int) ([][]float64, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("embeddings API error: %s (type: %s, code: %s)",
			embResp.Error.Message, embResp.Error.Type, embResp.Error.Code)
	}

	if len(embResp.Data) != want {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(embResp.Data), want)
	}

	vectors := make([][]float64, want)
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= want {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, nil
}
