// File path: internal/ingest/youtube.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeClient fetches trending videos through the Data API. Without an API
// key it serves mock posts.
type YouTubeClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
}

func NewYouTubeClient(cfg config.PlatformConfig, apiKey string) *YouTubeClient {
	return &YouTubeClient{
		httpClient: newHTTPClient(),
		limiter:    newLimiter(cfg),
		apiKey:     apiKey,
	}
}

func (c *YouTubeClient) Platform() social.Platform { return social.PlatformYouTube }

// Fetch returns trending videos matching the category named by query.
func (c *YouTubeClient) Fetch(ctx context.Context, query string, limit int) ([]social.Post, error) {
	if c.apiKey == "" {
		common.Logger().Warn("ingest: youtube api key not configured, using mock data")
		return mockYouTubePosts(query, limit), nil
	}
	posts, err := c.trendingVideos(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		common.Logger().Warn("ingest: youtube api failed, using mock data",
			"category", query, "error", err)
		return mockYouTubePosts(query, limit), nil
	}
	return posts, nil
}

func (c *YouTubeClient) trendingVideos(ctx context.Context, category string, limit int) ([]social.Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	fetch := limit
	if fetch > 50 {
		fetch = 50
	}
	endpoint := fmt.Sprintf(
		"%s/videos?part=snippet,statistics&chart=mostPopular&maxResults=%d&key=%s",
		youtubeBaseURL, fetch, url.QueryEscape(c.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube api: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string   `json:"title"`
				Description  string   `json:"description"`
				ChannelTitle string   `json:"channelTitle"`
				PublishedAt  string   `json:"publishedAt"`
				Tags         []string `json:"tags"`
			} `json:"snippet"`
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("youtube api: decode: %w", err)
	}

	loweredCategory := strings.ToLower(category)
	posts := make([]social.Post, 0, len(payload.Items))
	for _, item := range payload.Items {
		if category != "All" {
			title := strings.ToLower(item.Snippet.Title)
			description := strings.ToLower(item.Snippet.Description)
			if !strings.Contains(title, loweredCategory) && !strings.Contains(description, loweredCategory) {
				continue
			}
		}
		description := item.Snippet.Description
		if len(description) > 500 {
			description = description[:500] + "..."
		}
		timestamp, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		tags := make([]string, 0, len(item.Snippet.Tags))
		for _, tag := range item.Snippet.Tags {
			tags = append(tags, strings.ToLower(tag))
		}
		posts = append(posts, social.Post{
			ID:        item.ID,
			Platform:  social.PlatformYouTube,
			Content:   item.Snippet.Title + "\n\n" + description,
			Author:    item.Snippet.ChannelTitle,
			Timestamp: timestamp,
			URL:       "https://youtube.com/watch?v=" + item.ID,
			Metrics: social.Metrics{
				Likes:    atoiOrZero(item.Statistics.LikeCount),
				Comments: atoiOrZero(item.Statistics.CommentCount),
				Views:    atoiOrZero(item.Statistics.ViewCount),
			},
			Hashtags: tags,
			Mentions: []string{},
		})
		if len(posts) == limit {
			break
		}
	}
	return posts, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func mockYouTubePosts(category string, limit int) []social.Post {
	now := time.Now()
	lowered := strings.ToLower(category)
	posts := []social.Post{
		{
			ID: "mock-yt-1", Platform: social.PlatformYouTube,
			Content: fmt.Sprintf("%s Revolution: The Future is Here!\n\nIn this video, we explore the latest developments in %s and what it means for the future. Don't miss these incredible insights!", category, lowered),
			Author:  "TechVisionChannel", Timestamp: now.Add(-2 * time.Hour),
			URL:      "https://youtube.com/watch?v=mock-yt-1",
			Metrics:  social.Metrics{Likes: 15420, Comments: 1247, Views: 234567},
			Hashtags: []string{lowered, "future", "innovation"}, Mentions: []string{},
		},
		{
			ID: "mock-yt-2", Platform: social.PlatformYouTube,
			Content: fmt.Sprintf("Breaking Down the %s Trend: What You Need to Know\n\nEveryone's talking about this, but what does it really mean? Let's dive deep into the facts and separate hype from reality.", category),
			Author:  "AnalysisHub", Timestamp: now.Add(-5 * time.Hour),
			URL:      "https://youtube.com/watch?v=mock-yt-2",
			Metrics:  social.Metrics{Likes: 8934, Comments: 567, Views: 123456},
			Hashtags: []string{lowered, "analysis", "explained"}, Mentions: []string{},
		},
		{
			ID: "mock-yt-3", Platform: social.PlatformYouTube,
			Content: fmt.Sprintf("My Honest Opinion on %s\n\nAfter weeks of research, here's what I really think about this trending topic. You might be surprised by my conclusions!", category),
			Author:  "HonestReviewer", Timestamp: now.Add(-8 * time.Hour),
			URL:      "https://youtube.com/watch?v=mock-yt-3",
			Metrics:  social.Metrics{Likes: 5678, Comments: 234, Views: 87654},
			Hashtags: []string{lowered, "review", "opinion"}, Mentions: []string{},
		},
	}
	if limit < len(posts) {
		return posts[:limit]
	}
	return posts
}
