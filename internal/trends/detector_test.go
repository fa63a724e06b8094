// File path: internal/trends/detector_test.go
package trends

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
)

func testConfig() config.TrendsConfig {
	return config.TrendsConfig{
		MinMentions:        10,
		TimeWindow:         24 * time.Hour,
		UpdateInterval:     15 * time.Minute,
		CrossPlatformRatio: 0.3,
	}
}

func hashtagPosts(tag string, platform social.Platform, count int, age time.Duration) []social.Post {
	posts := make([]social.Post, count)
	for i := range posts {
		posts[i] = social.Post{
			ID:        fmt.Sprintf("%s-%s-%d", platform, tag, i),
			Platform:  platform,
			Content:   "talking about " + tag,
			Author:    "author",
			Timestamp: time.Now().Add(-age),
			Hashtags:  []string{tag},
			Metrics:   social.Metrics{Likes: i},
		}
	}
	return posts
}

func newDetector(t *testing.T, posts []social.Post) (*Detector, *store.Catalog) {
	t.Helper()
	catalog, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.StorePosts(context.Background(), posts); err != nil {
		t.Fatal(err)
	}
	return NewDetector(catalog, testConfig()), catalog
}

func findTrend(trends []social.TrendingTopic, keyword string) *social.TrendingTopic {
	for i := range trends {
		if trends[i].Keyword == keyword {
			return &trends[i]
		}
	}
	return nil
}

func TestAnalyzeDetectsCrossPlatformTrend(t *testing.T) {
	posts := append(
		hashtagPosts("genai", social.PlatformReddit, 12, time.Hour),
		hashtagPosts("genai", social.PlatformHackerNews, 8, 2*time.Hour)...,
	)
	detector, _ := newDetector(t, posts)
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	trend := findTrend(result.Trends, "genai")
	if trend == nil {
		t.Fatalf("no genai trend in %+v", result.Trends)
	}
	if trend.Mentions != 20 {
		t.Fatalf("mentions = %d, want 20", trend.Mentions)
	}
	// No previous window: growth defaults to 100.
	if trend.Change != 100 {
		t.Fatalf("change = %v, want 100", trend.Change)
	}
	// 8 hackernews mentions exceed 30% of 12 reddit mentions.
	if trend.Platform != social.PlatformAll {
		t.Fatalf("platform = %s, want all", trend.Platform)
	}
	if trend.Category != "Technology" {
		t.Fatalf("category = %s, want Technology", trend.Category)
	}
	if len(result.Insights.CrossPlatformTrends) == 0 {
		t.Fatal("insights missing cross-platform trend")
	}
}

func TestInclusionThresholds(t *testing.T) {
	// 9 mentions: below minMentions even with explosive growth.
	below := hashtagPosts("crypto", social.PlatformReddit, 9, time.Hour)
	detector, _ := newDetector(t, below)
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if trend := findTrend(result.Trends, "crypto"); trend != nil {
		t.Fatalf("trend with %d mentions should be excluded", trend.Mentions)
	}

	// Exactly minMentions with fresh growth: included.
	at := hashtagPosts("blockchain", social.PlatformReddit, 10, time.Hour)
	detector, _ = newDetector(t, at)
	result, err = detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if findTrend(result.Trends, "blockchain") == nil {
		t.Fatal("trend at minMentions with growth should be included")
	}
}

func TestHighVolumeTrendWithoutGrowth(t *testing.T) {
	posts := hashtagPosts("election", social.PlatformReddit, 101, time.Hour)
	detector, _ := newDetector(t, posts)
	ctx := context.Background()

	// First run seeds the previous-window cache.
	if _, err := detector.Analyze(ctx); err != nil {
		t.Fatal(err)
	}
	// Second run over the same posts: zero growth, but volume above 100
	// keeps the trend in.
	result, err := detector.Analyze(ctx)
	if err != nil {
		t.Fatal(err)
	}
	trend := findTrend(result.Trends, "election")
	if trend == nil {
		t.Fatal("high-volume trend dropped despite flat growth")
	}
	if trend.Change != 0 {
		t.Fatalf("change = %v, want 0 on identical windows", trend.Change)
	}
	if trend.Category != "Politics" {
		t.Fatalf("category = %s, want Politics", trend.Category)
	}
}

func TestDominantPlatformSingle(t *testing.T) {
	posts := append(
		hashtagPosts("gamedev", social.PlatformReddit, 20, time.Hour),
		hashtagPosts("gamedev", social.PlatformRSS, 2, time.Hour)...,
	)
	detector, _ := newDetector(t, posts)
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	trend := findTrend(result.Trends, "gamedev")
	if trend == nil {
		t.Fatal("gamedev trend missing")
	}
	// 2 rss mentions are under 30% of 20 reddit mentions.
	if trend.Platform != social.PlatformReddit {
		t.Fatalf("platform = %s, want reddit", trend.Platform)
	}
}

func TestRelatedPostsRankedByEngagement(t *testing.T) {
	posts := hashtagPosts("software", social.PlatformHackerNews, 15, time.Hour)
	detector, _ := newDetector(t, posts)
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	trend := findTrend(result.Trends, "software")
	if trend == nil {
		t.Fatal("software trend missing")
	}
	if len(trend.RelatedPosts) != 10 {
		t.Fatalf("related posts = %d, want 10", len(trend.RelatedPosts))
	}
	// Likes increase with the index, so the last post ranks first.
	if trend.RelatedPosts[0] != "hackernews-software-14" {
		t.Fatalf("top related post = %s", trend.RelatedPosts[0])
	}
}

func TestAnalyzeFallsBackToStoredTrends(t *testing.T) {
	catalog, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	stored := social.TrendingTopic{
		ID: "trend_old", Keyword: "archived", Mentions: 500,
		Platform: social.PlatformReddit, Category: "Other",
		FirstSeen: time.Now().Add(-time.Hour), LastUpdated: time.Now(),
	}
	if err := catalog.StoreTrends(context.Background(), []social.TrendingTopic{stored}); err != nil {
		t.Fatal(err)
	}
	detector := NewDetector(catalog, testConfig())
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if findTrend(result.Trends, "archived") == nil {
		t.Fatalf("stored trends not returned on empty window: %+v", result.Trends)
	}
}

func TestGetTrendingTopicsDemoFallback(t *testing.T) {
	catalog, _ := store.Open("")
	detector := NewDetector(catalog, testConfig())
	topics := detector.GetTrendingTopics(3)
	if len(topics) != 3 {
		t.Fatalf("demo topics = %d, want 3", len(topics))
	}
	if topics[0].Keyword != "AI Revolution" {
		t.Fatalf("first demo topic = %s", topics[0].Keyword)
	}
}

func TestGetTrendDetails(t *testing.T) {
	posts := hashtagPosts("innovation", social.PlatformYouTube, 25, time.Hour)
	detector, _ := newDetector(t, posts)
	result, err := detector.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	trend := findTrend(result.Trends, "innovation")
	if trend == nil {
		t.Fatal("innovation trend missing")
	}
	details := detector.GetTrendDetails(trend.ID)
	if details.Trend == nil {
		t.Fatal("details missing trend")
	}
	if len(details.RelatedPosts) == 0 {
		t.Fatal("details missing related posts")
	}
	if len(details.TimeSeries) == 0 {
		t.Fatal("details missing time series")
	}

	missing := detector.GetTrendDetails("no-such-trend")
	if missing.Trend != nil || len(missing.RelatedPosts) != 0 {
		t.Fatalf("missing trend should yield empty details: %+v", missing)
	}
}

func TestAnalysisStats(t *testing.T) {
	detector, _ := newDetector(t, nil)
	stats := detector.AnalysisStats()
	if stats.LastAnalysis != "Never" {
		t.Fatalf("last analysis = %s, want Never", stats.LastAnalysis)
	}
	if _, err := detector.Analyze(context.Background()); err != nil {
		t.Fatal(err)
	}
	stats = detector.AnalysisStats()
	if stats.LastAnalysis == "Never" {
		t.Fatal("last analysis not recorded")
	}
}

func TestContentKeywordTiesRankByFirstOccurrence(t *testing.T) {
	// Six candidate words, all occurring exactly twice. Only the first five
	// by position in the text survive the top-5 cut, regardless of alphabet.
	content := "zebra yonder xylem walrus violet aardvark " +
		"zebra yonder xylem walrus violet aardvark"
	got := contentKeywords(content)
	want := []string{"zebra", "yonder", "xylem", "walrus", "violet"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keywords = %v, want %v", got, want)
		}
	}
}

func TestContentKeywordsFrequencyOutranksPosition(t *testing.T) {
	got := contentKeywords("omega alpha alpha omega omega")
	if len(got) != 2 || got[0] != "omega" || got[1] != "alpha" {
		t.Fatalf("keywords = %v, want [omega alpha]", got)
	}
}
