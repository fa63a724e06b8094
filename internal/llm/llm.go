// File path: internal/llm/llm.go
package llm

import (
	"context"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
)

// Generator produces a natural-language answer from a query and a formatted
// context block.
type Generator interface {
	Generate(ctx context.Context, query, contextBlock string) (string, error)
	Name() string
}

// Service wraps the configured generator with the template fallback, so
// answer generation never fails: any upstream error degrades to the mock
// analyst response.
type Service struct {
	primary Generator
	mock    *mockGenerator
}

// NewService selects OpenAI when a key is configured; otherwise every answer
// comes from the template generator.
func NewService(apiKey string, cfg config.GenerationConfig) *Service {
	svc := &Service{mock: &mockGenerator{}}
	if apiKey != "" {
		svc.primary = newOpenAIGenerator(apiKey, cfg)
		common.Logger().Info("llm: openai generation enabled", "model", cfg.Model)
	} else {
		common.Logger().Warn("llm: no api key configured, using template responses")
	}
	return svc
}

// GenerateAnswer runs the primary generator and falls back to the template
// on any failure.
func (s *Service) GenerateAnswer(ctx context.Context, query, contextBlock string) string {
	if s.primary != nil {
		answer, err := s.primary.Generate(ctx, query, contextBlock)
		if err == nil {
			return answer
		}
		common.Logger().Warn("llm: generation failed, using template response",
			"provider", s.primary.Name(), "error", err)
	}
	answer, _ := s.mock.Generate(ctx, query, contextBlock)
	return answer
}
