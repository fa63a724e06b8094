// File path: internal/llm/openai.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
)

const systemPrompt = `You are an expert social media trend analyst. You analyze social media data to provide insights about trending topics, sentiment, and cultural phenomena.

Your responses should be:
- Informative and well-structured
- Based on the provided social media context
- Include specific examples from the data when relevant
- Mention sentiment and engagement patterns
- Highlight cross-platform trends when applicable
- Be concise but comprehensive (aim for 2-4 paragraphs)

If the context is insufficient, clearly state this and suggest what additional information would be helpful.`

type openAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func newOpenAIGenerator(apiKey string, cfg config.GenerationConfig) *openAIGenerator {
	return &openAIGenerator{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *openAIGenerator) Generate(ctx context.Context, query, contextBlock string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(query, contextBlock)),
		},
		Model:               openai.ChatModel(g.model),
		MaxCompletionTokens: openai.Int(int64(g.maxTokens)),
		Temperature:         openai.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (g *openAIGenerator) Name() string { return "openai" }

func buildPrompt(query, contextBlock string) string {
	return fmt.Sprintf(`Based on the following social media data, please answer this question: %q

Social Media Context:
%s

Please provide a comprehensive analysis based on this data, including:
1. Key insights about the topic
2. Sentiment patterns across platforms
3. Notable trends or patterns
4. Cultural or societal implications if relevant

If the provided context doesn't contain enough information to fully answer the question, please say so and explain what additional data would be helpful.`, query, contextBlock)
}
