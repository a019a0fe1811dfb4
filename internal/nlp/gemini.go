package nlp

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mertksaa/career-app/internal/match"
)

// DefaultEmbeddingModel is the Gemini embedding model used when none is
// configured.
const DefaultEmbeddingModel = "text-embedding-004"

// maxEmbedChars bounds the text sent to the embedding API. Long job
// descriptions beyond this contribute little to the representation.
const maxEmbedChars = 8000

// GeminiEmbedder implements match.Embedder on top of the Google generative
// AI embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the given API key.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed returns the embedding vector for one text. Markup is stripped and
// the input truncated before the API call.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) (match.Vector, error) {
	cleaned, err := StripHTML(text)
	if err != nil {
		return nil, err
	}
	cleaned = Truncate(cleaned, maxEmbedChars)
	if cleaned == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	em := g.client.EmbeddingModel(g.model)
	res, err := em.EmbedContent(ctx, genai.Text(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response contained no values")
	}
	return match.Vector(res.Embedding.Values), nil
}

// Close releases the underlying API client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}
