// File path: internal/ingest/hackernews.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

type hackerNewsItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

// HackerNewsClient reads the Firebase item API. There is no search endpoint,
// so queries filter the current top stories client-side.
type HackerNewsClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

func NewHackerNewsClient(cfg config.PlatformConfig) *HackerNewsClient {
	return &HackerNewsClient{
		httpClient: newHTTPClient(),
		limiter:    newLimiter(cfg),
		baseURL:    hackerNewsBaseURL,
	}
}

func (c *HackerNewsClient) Platform() social.Platform { return social.PlatformHackerNews }

func (c *HackerNewsClient) Fetch(ctx context.Context, query string, limit int) ([]social.Post, error) {
	posts, err := c.topStories(ctx, limit*2)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		common.Logger().Warn("ingest: hackernews api failed, using mock data", "error", err)
		return mockHackerNewsPosts(limit), nil
	}
	lowered := strings.ToLower(query)
	matched := make([]social.Post, 0, limit)
	for _, post := range posts {
		if !postMentions(post, lowered) {
			continue
		}
		matched = append(matched, post)
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (c *HackerNewsClient) topStories(ctx context.Context, limit int) ([]social.Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var ids []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("hackernews topstories: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	posts := make([]social.Post, 0, len(ids))
	for _, id := range ids {
		var item hackerNewsItem
		if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &item); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if item.Type != "story" || item.Title == "" {
			continue
		}
		posts = append(posts, transformHackerNewsItem(item))
	}
	return posts, nil
}

func (c *HackerNewsClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hackernews api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func transformHackerNewsItem(item hackerNewsItem) social.Post {
	url := item.URL
	if url == "" {
		url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	}
	return social.Post{
		ID:        strconv.Itoa(item.ID),
		Platform:  social.PlatformHackerNews,
		Content:   item.Title,
		Author:    item.By,
		Timestamp: time.Unix(item.Time, 0),
		URL:       url,
		Metrics: social.Metrics{
			Likes:    item.Score,
			Comments: item.Descendants,
			// Views are estimated; the API does not expose them.
			Views: item.Score * 10,
		},
		Hashtags: techHashtags(item.Title),
		Mentions: []string{},
	}
}

func postMentions(post social.Post, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(post.Content), loweredQuery) {
		return true
	}
	for _, tag := range post.Hashtags {
		if strings.Contains(strings.ToLower(tag), loweredQuery) {
			return true
		}
	}
	return false
}

func mockHackerNewsPosts(limit int) []social.Post {
	now := time.Now()
	posts := []social.Post{
		{
			ID: "mock-hn-1", Platform: social.PlatformHackerNews,
			Content: "Show HN: I built an AI-powered social media trend analyzer using RAG",
			Author:  "tech_builder", Timestamp: now.Add(-30 * time.Minute),
			URL:      "https://news.ycombinator.com/item?id=mock-hn-1",
			Metrics:  social.Metrics{Likes: 156, Comments: 23, Views: 1560},
			Hashtags: []string{"AI", "RAG", "Show HN"}, Mentions: []string{},
		},
		{
			ID: "mock-hn-2", Platform: social.PlatformHackerNews,
			Content: "The future of vector databases: ChromaDB vs Pinecone vs Weaviate",
			Author:  "db_expert", Timestamp: now.Add(-2 * time.Hour),
			URL:      "https://news.ycombinator.com/item?id=mock-hn-2",
			Metrics:  social.Metrics{Likes: 89, Comments: 45, Views: 890},
			Hashtags: []string{"Vector Database", "ChromaDB", "Pinecone"}, Mentions: []string{},
		},
		{
			ID: "mock-hn-3", Platform: social.PlatformHackerNews,
			Content: "How we scaled our Go service to handle 1M+ daily users",
			Author:  "scaling_guru", Timestamp: now.Add(-4 * time.Hour),
			URL:      "https://news.ycombinator.com/item?id=mock-hn-3",
			Metrics:  social.Metrics{Likes: 234, Comments: 67, Views: 2340},
			Hashtags: []string{"Scaling", "Performance"}, Mentions: []string{},
		},
	}
	if limit < len(posts) {
		return posts[:limit]
	}
	return posts
}
