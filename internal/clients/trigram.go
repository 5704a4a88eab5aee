package clients

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const trigramDimensions = 512

// TrigramEmbedder embeds text as hashed character-trigram frequency vectors.
// A pure function of the input text: no network, no model files, identical
// output on every run. Semantic fidelity is far below a pretrained model, so
// it serves as the offline fallback when no embeddings API is configured,
// and as the deterministic backend for tests.
type TrigramEmbedder struct{}

// NewTrigramEmbedder creates the offline embedder.
func NewTrigramEmbedder() *TrigramEmbedder {
	return &TrigramEmbedder{}
}

// Embed returns one L2-normalized vector per text. Empty or all-punctuation
// texts yield a zero vector.
func (e *TrigramEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = embedTrigrams(text)
	}
	return vectors, nil
}

func embedTrigrams(text string) []float64 {
	vec := make([]float64, trigramDimensions)

	runes := normalizeText(text)
	if len(runes) < 3 {
		return vec
	}

	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%trigramDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}

// normalizeText lowercases, strips punctuation and collapses runs of spaces
// so that "Armed Services" and "armed  services." embed identically.
func normalizeText(text string) []rune {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) && !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return []rune(strings.TrimSpace(b.String()))
}
