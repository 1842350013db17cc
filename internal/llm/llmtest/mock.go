// Package llmtest provides func-field fakes of the llm interfaces for tests.
package llmtest

import (
	"context"

	"github.com/jonathan/cv-consolidator/internal/llm"
)

// MockClient implements llm.Client for testing
type MockClient struct {
	GenerateStructuredFunc func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error)
}

// GenerateStructured calls GenerateStructuredFunc or returns an empty object
func (m *MockClient) GenerateStructured(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
	if m.GenerateStructuredFunc != nil {
		return m.GenerateStructuredFunc(ctx, schema, input, tier)
	}
	return `{}`, nil
}

// MockEmbedder implements llm.Embedder for testing
type MockEmbedder struct {
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedBatch calls EmbedBatchFunc or returns one zero vector per text
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 3)
	}
	return out, nil
}

// TableEmbedder returns fixed vectors keyed by text. Unknown texts embed to
// a zero vector.
func TableEmbedder(table map[string][]float32) *MockEmbedder {
	return &MockEmbedder{
		EmbedBatchFunc: func(_ context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, t := range texts {
				if v, ok := table[t]; ok {
					out[i] = v
				} else {
					out[i] = []float32{0, 0, 0}
				}
			}
			return out, nil
		},
	}
}
