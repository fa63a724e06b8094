// File path: internal/embedding/huggingface.go
package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	hfembeddings "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"
)

// huggingFaceProvider is the secondary tier, backed by the HuggingFace
// Inference API through langchaingo.
type huggingFaceProvider struct {
	embedder embeddings.Embedder
}

func newHuggingFaceProvider(model, token string) (*huggingFaceProvider, error) {
	opts := []huggingface.Option{huggingface.WithModel(model)}
	if token != "" {
		opts = append(opts, huggingface.WithToken(token))
	}
	llm, err := huggingface.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("huggingface client: %w", err)
	}
	embedder, err := hfembeddings.NewHuggingface(
		hfembeddings.WithClient(*llm),
		hfembeddings.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("huggingface embedder: %w", err)
	}
	return &huggingFaceProvider{embedder: embedder}, nil
}

func (h *huggingFaceProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := h.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("huggingface embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("huggingface embedding: empty response")
	}
	return vectors[0], nil
}

func (h *huggingFaceProvider) Name() string { return "huggingface" }
