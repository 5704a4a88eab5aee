// Package matcher scores committee subject matter against firm industries.
package matcher

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gavel-labs/gavel/internal/domain"
)

const defaultConcurrency = 8

type embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Matcher computes similarity between committee descriptions and firm
// industry descriptions using a shared embedding backend.
type Matcher struct {
	embedder    embedder
	logger      *zap.Logger
	concurrency int
}

// NewMatcher returns a configured matcher. concurrency bounds the pairwise
// scoring fan-out; values below 1 fall back to the default.
func NewMatcher(logger *zap.Logger, emb embedder, concurrency int) (*Matcher, error) {
	if emb == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	return &Matcher{
		embedder:    emb,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Score returns the similarity of two description texts in [0,1]. An empty
// description on either side yields 0 without touching the embedder.
func (m *Matcher) Score(ctx context.Context, committeeText, industryText string) (float64, error) {
	if committeeText == "" || industryText == "" {
		return 0, nil
	}

	vectors, err := m.embedder.Embed(ctx, []string{committeeText, industryText})
	if err != nil {
		return 0, errors.Wrap(err, "embed description pair")
	}

	return similarity(vectors[0], vectors[1]), nil
}

// MatchAll scores the full committee x firm grid and returns the per-run
// match set. Each distinct description is embedded once; the pairwise cosine
// grid is then computed locally with bounded parallelism. Every task owns its
// own output row, so no locking is needed.
func (m *Matcher) MatchAll(ctx context.Context, committees []domain.Committee, firms []domain.Firm) (*Set, error) {
	committeeVecs, err := embedTexts(ctx, m.embedder, committees, func(c domain.Committee) string { return c.Description })
	if err != nil {
		return nil, errors.Wrap(err, "embed committee descriptions")
	}
	firmVecs, err := embedTexts(ctx, m.embedder, firms, func(f domain.Firm) string { return f.Industry })
	if err != nil {
		return nil, errors.Wrap(err, "embed firm industries")
	}

	rows := make([][]float64, len(committees))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i := range committees {
		i := i
		g.Go(func() error {
			row := make([]float64, len(firms))
			for j := range firms {
				row[j] = similarity(committeeVecs[i], firmVecs[j])
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := newSet(len(committees) * len(firms))
	for i, c := range committees {
		for j, f := range firms {
			set.add(domain.Match{CommitteeID: c.ID, Ticker: f.Ticker, Strength: rows[i][j]})
		}
	}

	m.logger.Info("matched committee and firm descriptions",
		zap.Int("committees", len(committees)),
		zap.Int("firms", len(firms)),
		zap.Int("pairs", set.Len()))

	return set, nil
}

// embedTexts embeds the descriptions of items, embedding each distinct
// non-empty text exactly once. Items with empty descriptions get a nil
// vector, which scores 0 against everything.
func embedTexts[T any](ctx context.Context, emb embedder, items []T, text func(T) string) ([][]float64, error) {
	distinct := make(map[string]int)
	var texts []string
	for _, item := range items {
		t := text(item)
		if t == "" {
			continue
		}
		if _, ok := distinct[t]; !ok {
			distinct[t] = len(texts)
			texts = append(texts, t)
		}
	}

	var vectors [][]float64
	if len(texts) > 0 {
		var err error
		vectors, err = emb.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
	}

	out := make([][]float64, len(items))
	for i, item := range items {
		if idx, ok := distinct[text(item)]; ok {
			out[i] = vectors[idx]
		}
	}
	return out, nil
}

// similarity maps cosine similarity into [0,1] via (cos+1)/2. A zero or
// missing vector carries no information and scores 0.
func similarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	score := (cos + 1) / 2

	// guard against float drift at the boundaries
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Set holds all match strengths for one run, keyed by (committee, ticker).
type Set struct {
	strengths map[setKey]float64
}

type setKey struct {
	committeeID string
	ticker      string
}

func newSet(capacity int) *Set {
	return &Set{strengths: make(map[setKey]float64, capacity)}
}

func (s *Set) add(m domain.Match) {
	s.strengths[setKey{m.CommitteeID, m.Ticker}] = m.Strength
}

// Strength returns the match strength for a (committee, ticker) pair.
func (s *Set) Strength(committeeID, ticker string) (float64, bool) {
	v, ok := s.strengths[setKey{committeeID, ticker}]
	return v, ok
}

// Len returns the number of scored pairs.
func (s *Set) Len() int {
	return len(s.strengths)
}

// All returns every match ordered by committee then ticker.
func (s *Set) All() []domain.Match {
	out := make([]domain.Match, 0, len(s.strengths))
	for k, v := range s.strengths {
		out = append(out, domain.Match{CommitteeID: k.committeeID, Ticker: k.ticker, Strength: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitteeID != out[j].CommitteeID {
			return out[i].CommitteeID < out[j].CommitteeID
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}
