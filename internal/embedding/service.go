// File path: internal/embedding/service.go
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
)

// ErrDimensionMismatch reports a cosine similarity call over vectors of
// different lengths. This is a programmer error and the only embedding
// failure that ever propagates to callers.
var ErrDimensionMismatch = errors.New("vectors must have the same length")

// Service generates embeddings through a ranked chain of providers. External
// tiers (OpenAI, HuggingFace) are attempted in order; any failure degrades
// silently to the deterministic local fallback, so Embed never fails.
// Results are cached in-process, keyed by model and text hash.
type Service struct {
	providers  []Provider
	dimensions int
	model      string

	mu    sync.Mutex
	cache map[string][]float32
}

// NewService assembles the provider chain from the configuration. The
// deterministic fallback is always the last tier.
func NewService(cfg config.EmbeddingConfig) *Service {
	logger := common.Logger()
	var providers []Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, newOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel))
		logger.Info("embedding: openai tier enabled", "model", cfg.OpenAIModel)
	}
	if hf, err := newHuggingFaceProvider(cfg.Model, cfg.HuggingFaceToken); err == nil {
		providers = append(providers, hf)
		logger.Info("embedding: huggingface tier enabled", "model", cfg.Model)
	} else {
		logger.Warn("embedding: huggingface tier unavailable", "error", err)
	}
	providers = append(providers, newFallbackProvider(cfg.Dimensions))
	return &Service{
		providers:  providers,
		dimensions: cfg.Dimensions,
		model:      cfg.Model,
		cache:      make(map[string][]float32),
	}
}

// NewLocalService builds a service with only the deterministic tier. Used in
// tests and when external calls must be avoided entirely.
func NewLocalService(dimensions int) *Service {
	return &Service{
		providers:  []Provider{newFallbackProvider(dimensions)},
		dimensions: dimensions,
		model:      "local",
		cache:      make(map[string][]float32),
	}
}

// Dimensions returns the configured vector length.
func (s *Service) Dimensions() int { return s.dimensions }

// Embed returns the vector for the text. A cache hit returns a copy of the
// previously computed vector; otherwise the provider chain is walked until a
// tier succeeds. The final tier cannot fail, so neither can Embed.
func (s *Service) Embed(ctx context.Context, text string) []float32 {
	key := s.cacheKey(text)
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cloneVector(cached)
	}
	s.mu.Unlock()

	logger := common.Logger()
	var vector []float32
	for _, provider := range s.providers {
		v, err := provider.Embed(ctx, text)
		if err != nil {
			logger.Warn("embedding: provider failed, trying next tier",
				"provider", provider.Name(), "error", err)
			continue
		}
		vector = v
		break
	}

	s.mu.Lock()
	s.cache[key] = vector
	s.mu.Unlock()
	return cloneVector(vector)
}

// EmbedBatch embeds each text concurrently and reassembles the results in
// input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			out[i] = s.Embed(ctx, text)
		}(i, text)
	}
	wg.Wait()
	return out
}

// ClearCache drops every cached vector.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string][]float32)
}

// CacheSize reports the number of cached entries.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Service) cacheKey(text string) string {
	return fmt.Sprintf("%s_%d", s.model, textHash(text))
}

// CosineSimilarity computes dot(a,b)/(|a||b|). It returns
// ErrDimensionMismatch when the vectors differ in length.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
