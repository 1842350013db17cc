// Package dedupe flags bullets in different roles that say the same thing.
package dedupe

import (
	"context"
	"log/slog"
	"math"

	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// DefaultThreshold is the cosine similarity above which two bullets are
// reported as duplicates
const DefaultThreshold = 0.75

// Deduplicator compares every pair of bullets from different roles by the
// cosine similarity of their embeddings. The pairwise pass is quadratic in
// the number of bullets; CVs stay in the low hundreds.
type Deduplicator struct {
	embedder  llm.Embedder
	threshold float64
	logger    *slog.Logger
}

// Option configures a Deduplicator
type Option func(*Deduplicator)

// WithThreshold overrides DefaultThreshold
func WithThreshold(threshold float64) Option {
	return func(d *Deduplicator) {
		d.threshold = threshold
	}
}

// WithLogger sets the logger used for embedding failures
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Deduplicator backed by embedder
func New(embedder llm.Embedder, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		embedder:  embedder,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the similarity threshold in use
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}

type bulletRef struct {
	role   int
	bullet int
}

// FindDuplicates returns one candidate per cross-role bullet pair whose
// similarity is strictly above the threshold, ordered by the position of the
// first bullet and then the second. Bullets within the same role are never
// compared. If embedding fails the result is empty and the error is logged.
func (d *Deduplicator) FindDuplicates(ctx context.Context, cv *types.CanonicalCV) []types.DuplicateCandidate {
	out := []types.DuplicateCandidate{}
	if cv == nil {
		return out
	}

	var (
		refs  []bulletRef
		texts []string
	)
	for r, role := range cv.Roles {
		for b, bullet := range role.BulletPoints {
			refs = append(refs, bulletRef{role: r, bullet: b})
			texts = append(texts, bullet)
		}
	}
	if len(texts) < 2 {
		return out
	}

	vectors, err := d.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		d.logger.Warn("bullet embedding failed, skipping duplicate detection",
			"bullets", len(texts), "error", err)
		return out
	}
	if len(vectors) != len(texts) {
		d.logger.Warn("embedding count mismatch, skipping duplicate detection",
			"bullets", len(texts), "vectors", len(vectors))
		return out
	}

	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			if refs[i].role == refs[j].role {
				continue
			}
			score := Cosine(vectors[i], vectors[j])
			if score > d.threshold {
				out = append(out, types.DuplicateCandidate{
					RoleIndexA:      refs[i].role,
					BulletIndexA:    refs[i].bullet,
					RoleIndexB:      refs[j].role,
					BulletIndexB:    refs[j].bullet,
					SimilarityScore: score,
				})
			}
		}
	}

	d.logger.Debug("duplicate detection finished",
		"bullets", len(texts), "duplicates", len(out), "threshold", d.threshold)
	return out
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
