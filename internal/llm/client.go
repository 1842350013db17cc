package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateStructured generates JSON constrained to the given schema
	GenerateStructured(ctx context.Context, schema ExtractionSchema, inputText string, tier ModelTier) (string, error)
}

// Embedder turns text into vectors for similarity comparisons
type Embedder interface {
	// EmbedBatch returns one vector per text, in input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// MaxEmbedBatch is the most texts the embedding service accepts in one
// batch request
const MaxEmbedBatch = 100

// GeminiClient implements Client and Embedder for Google Gemini
type GeminiClient struct {
	client  *genai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ServiceError{Kind: KindAuth, Message: "API key is required"}
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		config:  config,
		limiter: newLimiter(config),
	}, nil
}

func newLimiter(config *Config) *rate.Limiter {
	if config.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
}

// GenerateStructured sends the extraction prompt for schema and asks the
// service to constrain its output to the schema's JSON shape.
func (c *GeminiClient) GenerateStructured(ctx context.Context, schema ExtractionSchema, inputText string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema.GenaiSchema()

	text, err := c.generate(ctx, model, BuildExtractionPrompt(schema, inputText))
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	return model, nil
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	return Retry(ctx, c.config.Retry, func(ctx context.Context) (string, error) {
		if err := c.wait(ctx); err != nil {
			return "", err
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", classifyError("failed to generate content", err)
		}

		text, err := extractTextFromResponse(resp)
		if err != nil {
			return "", &ServiceError{Kind: KindEmpty, Message: "unusable response", Cause: err}
		}
		return text, nil
	})
}

// wait blocks until the limiter admits another request. A limiter that
// cannot admit before the deadline counts as a timeout.
func (c *GeminiClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return classifyError("rate limiter wait", ctx.Err())
		}
		return &ServiceError{Kind: KindTimeout, Message: "rate limiter wait", Cause: err}
	}
	return nil
}

// EmbedBatch returns one embedding vector per input text, in input order.
// Inputs larger than MaxEmbedBatch are sent as several requests.
func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.config.EmbeddingModel)
	return embedInBatches(ctx, texts, MaxEmbedBatch, func(ctx context.Context, batch []string) ([][]float32, error) {
		return c.embedOnce(ctx, em, batch)
	})
}

func (c *GeminiClient) embedOnce(ctx context.Context, em *genai.EmbeddingModel, texts []string) ([][]float32, error) {
	return Retry(ctx, c.config.Retry, func(ctx context.Context) ([][]float32, error) {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}

		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, classifyError("failed to embed content", err)
		}

		vectors := make([][]float32, len(res.Embeddings))
		for i, e := range res.Embeddings {
			if e == nil {
				return nil, &ServiceError{Kind: KindEmpty, Message: fmt.Sprintf("missing embedding %d", i)}
			}
			vectors[i] = e.Values
		}
		return vectors, nil
	})
}

// embedInBatches calls embed once per run of at most size texts and
// concatenates the vectors in input order
func embedInBatches(ctx context.Context, texts []string, size int, embed func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		batch, err := embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, &ServiceError{
				Kind:    KindEmpty,
				Message: fmt.Sprintf("expected %d embeddings, got %d", end-start, len(batch)),
			}
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
