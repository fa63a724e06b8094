// File path: internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id        TEXT PRIMARY KEY,
	platform  TEXT NOT NULL,
	content   TEXT NOT NULL,
	author    TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	url       TEXT NOT NULL,
	likes     INTEGER NOT NULL DEFAULT 0,
	shares    INTEGER NOT NULL DEFAULT 0,
	comments  INTEGER NOT NULL DEFAULT 0,
	views     INTEGER NOT NULL DEFAULT 0,
	hashtags  TEXT NOT NULL DEFAULT '[]',
	mentions  TEXT NOT NULL DEFAULT '[]',
	sentiment REAL
);
CREATE INDEX IF NOT EXISTS idx_posts_platform ON posts(platform);
CREATE INDEX IF NOT EXISTS idx_posts_timestamp ON posts(timestamp);

CREATE TABLE IF NOT EXISTS trends (
	id            TEXT PRIMARY KEY,
	keyword       TEXT NOT NULL,
	mentions      INTEGER NOT NULL,
	sentiment     REAL NOT NULL,
	change        REAL NOT NULL,
	platform      TEXT NOT NULL,
	category      TEXT NOT NULL,
	related_posts TEXT NOT NULL DEFAULT '[]',
	first_seen    TEXT NOT NULL,
	last_updated  TEXT NOT NULL
);
`

// PostFilters narrow GetPosts. Zero values mean no constraint.
type PostFilters struct {
	Platforms []social.Platform
	DateRange *social.DateRange
	Limit     int
}

// Catalog holds every ingested post and detected trend. Reads always come
// from the in-memory maps; writes go through to SQLite when a database path
// is configured, and existing rows are loaded back at startup. A persistence
// failure is logged and the catalog carries on memory-only.
type Catalog struct {
	mu     sync.RWMutex
	posts  map[string]social.Post
	trends map[string]social.TrendingTopic

	db         *sqlx.DB
	persistent bool
}

// Open builds the catalog. An empty path disables persistence.
func Open(path string) (*Catalog, error) {
	c := &Catalog{
		posts:  make(map[string]social.Post),
		trends: make(map[string]social.TrendingTopic),
	}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	logger := common.Logger()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("store: cannot create database directory, running memory-only",
				"path", path, "error", err)
			return c, nil
		}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		logger.Warn("store: sqlite unavailable, running memory-only", "path", path, "error", err)
		return c, nil
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		logger.Warn("store: schema setup failed, running memory-only", "path", path, "error", err)
		return c, nil
	}
	c.db = db
	c.persistent = true
	if err := c.loadFromDB(); err != nil {
		logger.Warn("store: loading persisted rows failed", "error", err)
	}
	logger.Info("store: sqlite catalog opened",
		"path", path, "posts", len(c.posts), "trends", len(c.trends))
	return c, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Persistent reports whether writes reach SQLite.
func (c *Catalog) Persistent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persistent
}

// StorePosts upserts the posts, superseding any stored copy with the same id.
func (c *Catalog) StorePosts(ctx context.Context, posts []social.Post) error {
	c.mu.Lock()
	for _, post := range posts {
		c.posts[post.ID] = post
	}
	c.mu.Unlock()
	for _, post := range posts {
		c.persistPost(ctx, post)
	}
	return nil
}

// GetPosts returns posts matching the filters, newest first.
func (c *Catalog) GetPosts(filters PostFilters) []social.Post {
	c.mu.RLock()
	out := make([]social.Post, 0, len(c.posts))
	for _, post := range c.posts {
		if len(filters.Platforms) > 0 && !containsPlatform(filters.Platforms, post.Platform) {
			continue
		}
		if filters.DateRange != nil {
			if post.Timestamp.Before(filters.DateRange.Start) || post.Timestamp.After(filters.DateRange.End) {
				continue
			}
		}
		out = append(out, post)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out
}

// GetPostByID resolves one post.
func (c *Catalog) GetPostByID(id string) (social.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	post, ok := c.posts[id]
	return post, ok
}

// TotalPosts reports the number of stored posts.
func (c *Catalog) TotalPosts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posts)
}

// StoreTrends upserts the trend records.
func (c *Catalog) StoreTrends(ctx context.Context, trends []social.TrendingTopic) error {
	c.mu.Lock()
	for _, trend := range trends {
		c.trends[trend.ID] = trend
	}
	c.mu.Unlock()
	for _, trend := range trends {
		c.persistTrend(ctx, trend)
	}
	return nil
}

// GetTrends returns stored trends ordered by mentions, highest first. A
// non-positive limit returns everything.
func (c *Catalog) GetTrends(limit int) []social.TrendingTopic {
	c.mu.RLock()
	out := make([]social.TrendingTopic, 0, len(c.trends))
	for _, trend := range c.trends {
		out = append(out, trend)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Mentions > out[j].Mentions
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SearchPosts runs a substring search over content, hashtags and author,
// ranked by a simple relevance score.
func (c *Catalog) SearchPosts(query string, limit int) []social.Post {
	if limit <= 0 {
		limit = 10
	}
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return nil
	}
	c.mu.RLock()
	type scored struct {
		post  social.Post
		score int
	}
	matches := make([]scored, 0)
	for _, post := range c.posts {
		if !postMatches(post, lowered) {
			continue
		}
		matches = append(matches, scored{post: post, score: relevanceScore(post, lowered)})
	}
	c.mu.RUnlock()
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]social.Post, len(matches))
	for i, m := range matches {
		out[i] = m.post
	}
	return out
}

// ClearAll drops every post and trend, in memory and on disk.
func (c *Catalog) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	c.posts = make(map[string]social.Post)
	c.trends = make(map[string]social.TrendingTopic)
	persistent := c.persistent
	c.mu.Unlock()
	if !persistent {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM trends`); err != nil {
		return fmt.Errorf("clear trends: %w", err)
	}
	return nil
}

func postMatches(post social.Post, query string) bool {
	if strings.Contains(strings.ToLower(post.Content), query) {
		return true
	}
	for _, tag := range post.Hashtags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(post.Author), query)
}

// relevanceScore weights content occurrences double, hashtag hits triple,
// an author hit once, and adds one for posts under a day old.
func relevanceScore(post social.Post, query string) int {
	score := strings.Count(strings.ToLower(post.Content), query) * 2
	for _, tag := range post.Hashtags {
		if strings.Contains(strings.ToLower(tag), query) {
			score += 3
		}
	}
	if strings.Contains(strings.ToLower(post.Author), query) {
		score++
	}
	if time.Since(post.Timestamp) < 24*time.Hour {
		score++
	}
	return score
}

func containsPlatform(platforms []social.Platform, p social.Platform) bool {
	for _, candidate := range platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

type postRow struct {
	ID        string          `db:"id"`
	Platform  string          `db:"platform"`
	Content   string          `db:"content"`
	Author    string          `db:"author"`
	Timestamp string          `db:"timestamp"`
	URL       string          `db:"url"`
	Likes     int             `db:"likes"`
	Shares    int             `db:"shares"`
	Comments  int             `db:"comments"`
	Views     int             `db:"views"`
	Hashtags  string          `db:"hashtags"`
	Mentions  string          `db:"mentions"`
	Sentiment sql.NullFloat64 `db:"sentiment"`
}

type trendRow struct {
	ID           string  `db:"id"`
	Keyword      string  `db:"keyword"`
	Mentions     int     `db:"mentions"`
	Sentiment    float64 `db:"sentiment"`
	Change       float64 `db:"change"`
	Platform     string  `db:"platform"`
	Category     string  `db:"category"`
	RelatedPosts string  `db:"related_posts"`
	FirstSeen    string  `db:"first_seen"`
	LastUpdated  string  `db:"last_updated"`
}

func (c *Catalog) persistPost(ctx context.Context, post social.Post) {
	c.mu.RLock()
	persistent := c.persistent
	c.mu.RUnlock()
	if !persistent {
		return
	}
	row := postRow{
		ID:        post.ID,
		Platform:  string(post.Platform),
		Content:   post.Content,
		Author:    post.Author,
		Timestamp: post.Timestamp.UTC().Format(time.RFC3339Nano),
		URL:       post.URL,
		Likes:     post.Metrics.Likes,
		Shares:    post.Metrics.Shares,
		Comments:  post.Metrics.Comments,
		Views:     post.Metrics.Views,
		Hashtags:  marshalStrings(post.Hashtags),
		Mentions:  marshalStrings(post.Mentions),
	}
	if post.Sentiment != nil {
		row.Sentiment = sql.NullFloat64{Float64: *post.Sentiment, Valid: true}
	}
	const query = `INSERT OR REPLACE INTO posts
		(id, platform, content, author, timestamp, url, likes, shares, comments, views, hashtags, mentions, sentiment)
		VALUES (:id, :platform, :content, :author, :timestamp, :url, :likes, :shares, :comments, :views, :hashtags, :mentions, :sentiment)`
	if _, err := c.db.NamedExecContext(ctx, query, row); err != nil {
		common.Logger().Error("store: persisting post failed", "post", post.ID, "error", err)
	}
}

func (c *Catalog) persistTrend(ctx context.Context, trend social.TrendingTopic) {
	c.mu.RLock()
	persistent := c.persistent
	c.mu.RUnlock()
	if !persistent {
		return
	}
	row := trendRow{
		ID:           trend.ID,
		Keyword:      trend.Keyword,
		Mentions:     trend.Mentions,
		Sentiment:    trend.Sentiment,
		Change:       trend.Change,
		Platform:     string(trend.Platform),
		Category:     trend.Category,
		RelatedPosts: marshalStrings(trend.RelatedPosts),
		FirstSeen:    trend.FirstSeen.UTC().Format(time.RFC3339Nano),
		LastUpdated:  trend.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
	const query = `INSERT OR REPLACE INTO trends
		(id, keyword, mentions, sentiment, change, platform, category, related_posts, first_seen, last_updated)
		VALUES (:id, :keyword, :mentions, :sentiment, :change, :platform, :category, :related_posts, :first_seen, :last_updated)`
	if _, err := c.db.NamedExecContext(ctx, query, row); err != nil {
		common.Logger().Error("store: persisting trend failed", "trend", trend.ID, "error", err)
	}
}

func (c *Catalog) loadFromDB() error {
	var postRows []postRow
	if err := c.db.Select(&postRows, `SELECT * FROM posts`); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load posts: %w", err)
	}
	var trendRows []trendRow
	if err := c.db.Select(&trendRows, `SELECT * FROM trends`); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load trends: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range postRows {
		post := social.Post{
			ID:       row.ID,
			Platform: social.Platform(row.Platform),
			Content:  row.Content,
			Author:   row.Author,
			URL:      row.URL,
			Metrics: social.Metrics{
				Likes:    row.Likes,
				Shares:   row.Shares,
				Comments: row.Comments,
				Views:    row.Views,
			},
			Hashtags: unmarshalStrings(row.Hashtags),
			Mentions: unmarshalStrings(row.Mentions),
		}
		if ts, err := time.Parse(time.RFC3339Nano, row.Timestamp); err == nil {
			post.Timestamp = ts
		}
		if row.Sentiment.Valid {
			v := row.Sentiment.Float64
			post.Sentiment = &v
		}
		c.posts[post.ID] = post
	}
	for _, row := range trendRows {
		trend := social.TrendingTopic{
			ID:           row.ID,
			Keyword:      row.Keyword,
			Mentions:     row.Mentions,
			Sentiment:    row.Sentiment,
			Change:       row.Change,
			Platform:     social.Platform(row.Platform),
			Category:     row.Category,
			RelatedPosts: unmarshalStrings(row.RelatedPosts),
		}
		if ts, err := time.Parse(time.RFC3339Nano, row.FirstSeen); err == nil {
			trend.FirstSeen = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, row.LastUpdated); err == nil {
			trend.LastUpdated = ts
		}
		c.trends[trend.ID] = trend
	}
	return nil
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalStrings(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil
	}
	return out
}
