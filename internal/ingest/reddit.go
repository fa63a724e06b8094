// File path: internal/ingest/reddit.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

const (
	redditBaseURL = "https://oauth.reddit.com"
	redditAuthURL = "https://www.reddit.com/api/v1/access_token"
)

var (
	redditHashtagPattern = regexp.MustCompile(`#\w+`)
	redditMentionPattern = regexp.MustCompile(`u/\w+`)
)

// RedditClient fetches hot submissions per subreddit through the OAuth API.
// Without credentials it serves mock posts.
type RedditClient struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	clientID     string
	clientSecret string
	userAgent    string

	mu          sync.Mutex
	accessToken string
}

func NewRedditClient(cfg config.PlatformConfig, clientID, clientSecret, userAgent string) *RedditClient {
	return &RedditClient{
		httpClient:   newHTTPClient(),
		limiter:      newLimiter(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
	}
}

func (c *RedditClient) Platform() social.Platform { return social.PlatformReddit }

// Fetch returns hot posts from the subreddit named by query.
func (c *RedditClient) Fetch(ctx context.Context, query string, limit int) ([]social.Post, error) {
	if c.clientID == "" || c.clientSecret == "" {
		common.Logger().Warn("ingest: reddit credentials not configured, using mock data")
		return mockRedditPosts(query, limit), nil
	}
	posts, err := c.hotPosts(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		common.Logger().Warn("ingest: reddit api failed, using mock data",
			"subreddit", query, "error", err)
		return mockRedditPosts(query, limit), nil
	}
	return posts, nil
}

func (c *RedditClient) hotPosts(ctx context.Context, subreddit string, limit int) ([]social.Post, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if limit > 100 {
		limit = 100
	}
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", redditBaseURL, url.PathEscape(subreddit), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	c.mu.Unlock()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit api: status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID          string  `json:"id"`
					Title       string  `json:"title"`
					Selftext    string  `json:"selftext"`
					Author      string  `json:"author"`
					CreatedUTC  float64 `json:"created_utc"`
					Permalink   string  `json:"permalink"`
					Ups         int     `json:"ups"`
					NumComments int     `json:"num_comments"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("reddit api: decode: %w", err)
	}

	posts := make([]social.Post, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		d := child.Data
		content := d.Title
		if d.Selftext != "" {
			content += "\n\n" + d.Selftext
		}
		text := d.Title + " " + d.Selftext
		posts = append(posts, social.Post{
			ID:        d.ID,
			Platform:  social.PlatformReddit,
			Content:   content,
			Author:    d.Author,
			Timestamp: time.Unix(int64(d.CreatedUTC), 0),
			URL:       "https://reddit.com" + d.Permalink,
			Metrics:   social.Metrics{Likes: d.Ups, Comments: d.NumComments},
			Hashtags:  redditHashtags(text),
			Mentions:  redditMentions(text),
		})
	}
	return posts, nil
}

func (c *RedditClient) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		return nil
	}
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditAuthURL, form)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit auth: status %d", resp.StatusCode)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("reddit auth: decode: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("reddit auth: empty token")
	}
	c.mu.Lock()
	c.accessToken = payload.AccessToken
	c.mu.Unlock()
	return nil
}

func redditHashtags(text string) []string {
	matches := redditHashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tags = append(tags, strings.ToLower(match[1:]))
	}
	return tags
}

func redditMentions(text string) []string {
	matches := redditMentionPattern.FindAllString(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, match := range matches {
		mentions = append(mentions, match[2:])
	}
	return mentions
}

func mockRedditPosts(subreddit string, limit int) []social.Post {
	now := time.Now()
	posts := []social.Post{
		{
			ID: "mock-reddit-1", Platform: social.PlatformReddit,
			Content: "Amazing breakthrough in technology! This could revolutionize how we think about innovation. What do you all think about this development?",
			Author:  "tech_guru_2024", Timestamp: now.Add(-45 * time.Minute),
			URL:      fmt.Sprintf("https://reddit.com/r/%s/comments/mock-reddit-1", subreddit),
			Metrics:  social.Metrics{Likes: 1247, Comments: 156},
			Hashtags: []string{"technology", "innovation"}, Mentions: []string{},
		},
		{
			ID: "mock-reddit-2", Platform: social.PlatformReddit,
			Content: "ELI5: Why is everyone talking about this new trend? I've been seeing it everywhere but don't understand the hype.",
			Author:  "curious_redditor", Timestamp: now.Add(-3 * time.Hour),
			URL:      fmt.Sprintf("https://reddit.com/r/%s/comments/mock-reddit-2", subreddit),
			Metrics:  social.Metrics{Likes: 567, Comments: 89},
			Hashtags: []string{"eli5", "question"}, Mentions: []string{},
		},
		{
			ID: "mock-reddit-3", Platform: social.PlatformReddit,
			Content: "Unpopular opinion: This trending topic is overrated. Here's my detailed analysis of why I think the community is missing the bigger picture...",
			Author:  "contrarian_view", Timestamp: now.Add(-6 * time.Hour),
			URL:      fmt.Sprintf("https://reddit.com/r/%s/comments/mock-reddit-3", subreddit),
			Metrics:  social.Metrics{Likes: 234, Comments: 67},
			Hashtags: []string{"unpopularopinion", "analysis"}, Mentions: []string{},
		},
	}
	if limit < len(posts) {
		return posts[:limit]
	}
	return posts
}
