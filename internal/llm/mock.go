// File path: internal/llm/mock.go
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// mockGenerator builds a plausible analyst answer from whatever the context
// block contains. It is the terminal fallback and never fails.
type mockGenerator struct{}

var sentimentPattern = regexp.MustCompile(`Sentiment: (\d+)% positive`)

func (m *mockGenerator) Generate(_ context.Context, query, contextBlock string) (string, error) {
	platforms := extractPlatforms(contextBlock)
	platformText := "multiple platforms"
	if len(platforms) > 0 {
		platformText = strings.Join(platforms, ", ")
	}

	sentimentText := sentimentSummary(contextBlock)
	if sentimentText == "" {
		sentimentText = "The overall sentiment appears mixed, with both positive and negative reactions visible across different platforms."
	}

	themeText := "related themes"
	if terms := keyTerms(query); len(terms) > 0 {
		if len(terms) > 2 {
			terms = terms[:2]
		}
		themeText = strings.Join(terms, " and ")
	}

	return fmt.Sprintf(`Based on the available social media data, here's what I found about %q:

**Cross-Platform Analysis**: The topic appears across %s, indicating widespread discussion and engagement.

**Sentiment Patterns**: %s

**Key Insights**: This topic has generated significant discussion, particularly around %s. The conversation spans different communities and demographics, suggesting broad cultural relevance.

**Trend Implications**: The sustained engagement across platforms indicates this is more than a fleeting trend. The diverse range of perspectives and the cross-platform nature suggest it will likely continue to evolve and generate discussion.

*Note: This analysis is based on available social media data. For more detailed insights, additional data collection and analysis would be beneficial.*`,
		query, platformText, sentimentText, themeText), nil
}

func (m *mockGenerator) Name() string { return "mock" }

// extractPlatforms scans for the platform markers the context builder emits.
func extractPlatforms(contextBlock string) []string {
	var platforms []string
	if strings.Contains(contextBlock, "Platform: HACKERNEWS") {
		platforms = append(platforms, "HackerNews")
	}
	if strings.Contains(contextBlock, "Platform: REDDIT") {
		platforms = append(platforms, "Reddit")
	}
	if strings.Contains(contextBlock, "Platform: YOUTUBE") {
		platforms = append(platforms, "YouTube")
	}
	if strings.Contains(contextBlock, "Platform: RSS") {
		platforms = append(platforms, "RSS")
	}
	return platforms
}

// sentimentSummary averages the percentage markers in the context and maps
// the mean to one of three buckets. Empty string means no markers found.
func sentimentSummary(contextBlock string) string {
	matches := sentimentPattern.FindAllStringSubmatch(contextBlock, -1)
	if len(matches) == 0 {
		return ""
	}
	total := 0
	for _, match := range matches {
		value, err := strconv.Atoi(match[1])
		if err != nil {
			value = 50
		}
		total += value
	}
	avg := float64(total) / float64(len(matches))
	switch {
	case avg > 70:
		return "The overall sentiment is predominantly positive, with users expressing enthusiasm and support."
	case avg > 40:
		return "The sentiment is mixed, with both positive and negative reactions from different user groups."
	default:
		return "The sentiment leans negative, with users expressing concerns or criticism."
	}
}

var promptStopWords = map[string]struct{}{
	"the": {}, "and": {}, "but": {}, "for": {}, "with": {},
}

// keyTerms pulls up to five content words out of the query.
func keyTerms(query string) []string {
	var builder strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == ' ':
			builder.WriteRune(r)
		}
	}
	var terms []string
	for _, word := range strings.Fields(builder.String()) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := promptStopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
		if len(terms) == 5 {
			break
		}
	}
	return terms
}
