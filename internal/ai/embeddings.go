package ai

import (
	"context"
	"fmt"

	"modular-rag-service/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EmbeddingService produces fixed-dimension vectors from chunk text using
// Google Generative AI (text-embedding-004 by default). The genai client is
// created once and reused across calls.
type EmbeddingService struct {
	client *genai.Client
	model  string
}

func NewEmbeddingService(ctx context.Context, cfg *config.Config) (*EmbeddingService, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	return &EmbeddingService{client: client, model: cfg.EmbeddingsModel}, nil
}

// EmbedText returns an embedding vector for the given text.
func (es *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	model := es.client.EmbeddingModel(es.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

func (es *EmbeddingService) Close() error {
	return es.client.Close()
}
