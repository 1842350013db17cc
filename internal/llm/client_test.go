package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("bullet %d", i)
	}
	return texts
}

// indexEmbedder returns a one-element vector holding each text's position in
// the original input, recovered from its "bullet N" suffix
func indexEmbedder(sizes *[]int) func(context.Context, []string) ([][]float32, error) {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		*sizes = append(*sizes, len(texts))
		out := make([][]float32, len(texts))
		for i, text := range texts {
			var n int
			if _, err := fmt.Sscanf(text, "bullet %d", &n); err != nil {
				return nil, err
			}
			out[i] = []float32{float32(n)}
		}
		return out, nil
	}
}

func TestEmbedInBatches_SplitsLargeInputs(t *testing.T) {
	var sizes []int
	texts := numberedTexts(250)

	vectors, err := embedInBatches(context.Background(), texts, MaxEmbedBatch, indexEmbedder(&sizes))

	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, sizes)
	require.Len(t, vectors, 250)
	for i, v := range vectors {
		assert.Equal(t, []float32{float32(i)}, v)
	}
}

func TestEmbedInBatches_SingleRequestWhenSmall(t *testing.T) {
	var sizes []int

	vectors, err := embedInBatches(context.Background(), numberedTexts(MaxEmbedBatch), MaxEmbedBatch, indexEmbedder(&sizes))

	require.NoError(t, err)
	assert.Equal(t, []int{MaxEmbedBatch}, sizes)
	assert.Len(t, vectors, MaxEmbedBatch)
}

func TestEmbedInBatches_EmptyInput(t *testing.T) {
	var sizes []int

	vectors, err := embedInBatches(context.Background(), nil, MaxEmbedBatch, indexEmbedder(&sizes))

	require.NoError(t, err)
	assert.NotNil(t, vectors)
	assert.Empty(t, vectors)
	assert.Empty(t, sizes)
}

func TestEmbedInBatches_StopsOnError(t *testing.T) {
	calls := 0
	embed := func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 2 {
			return nil, &ServiceError{Kind: KindUnavailable, Message: "boom"}
		}
		return make([][]float32, len(texts)), nil
	}

	_, err := embedInBatches(context.Background(), numberedTexts(350), MaxEmbedBatch, embed)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindUnavailable, svcErr.Kind)
	assert.Equal(t, 2, calls)
}

func TestEmbedInBatches_CountMismatch(t *testing.T) {
	embed := func(_ context.Context, texts []string) ([][]float32, error) {
		return make([][]float32, len(texts)-1), nil
	}

	_, err := embedInBatches(context.Background(), numberedTexts(3), MaxEmbedBatch, embed)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindEmpty, svcErr.Kind)
	assert.Contains(t, err.Error(), "expected 3 embeddings, got 2")
}
