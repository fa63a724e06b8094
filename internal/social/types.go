// File path: internal/social/types.go
package social

import "time"

// Platform identifies the source a post was ingested from.
type Platform string

const (
	PlatformReddit     Platform = "reddit"
	PlatformYouTube    Platform = "youtube"
	PlatformHackerNews Platform = "hackernews"
	PlatformRSS        Platform = "rss"

	// PlatformAll is the cross-platform sentinel used by trend records when
	// no single platform holds a clear majority of mentions.
	PlatformAll Platform = "all"
)

// Platforms lists every ingestable source, in ingestion order.
func Platforms() []Platform {
	return []Platform{PlatformReddit, PlatformYouTube, PlatformHackerNews, PlatformRSS}
}

// Metrics carries per-post engagement counts.
type Metrics struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
	Views    int `json:"views,omitempty"`
}

// Post is a normalized content item from any source platform. Posts are
// created by a source client, mutated once by the preprocessor and then
// treated as immutable; a later ingestion run with the same ID supersedes the
// stored copy wholesale.
type Post struct {
	ID        string    `json:"id" db:"id"`
	Platform  Platform  `json:"platform" db:"platform"`
	Content   string    `json:"content" db:"content"`
	Author    string    `json:"author" db:"author"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	URL       string    `json:"url" db:"url"`
	Metrics   Metrics   `json:"metrics"`
	Hashtags  []string  `json:"hashtags"`
	Mentions  []string  `json:"mentions"`

	// Sentiment is in [0,1]; nil means the preprocessor has not scored the
	// post yet.
	Sentiment *float64 `json:"sentiment,omitempty"`
}

// SentimentOrNeutral returns the post sentiment, defaulting to 0.5 when the
// post has not been scored.
func (p Post) SentimentOrNeutral() float64 {
	if p.Sentiment == nil {
		return 0.5
	}
	return *p.Sentiment
}

// Engagement is the ranking signal used when selecting related posts for a
// trend.
func (p Post) Engagement() int {
	return p.Metrics.Likes + p.Metrics.Shares
}

// DocumentMetadata is the post state denormalized onto a chunk at indexing
// time.
type DocumentMetadata struct {
	PostID    string    `json:"postId"`
	Platform  Platform  `json:"platform"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Hashtags  []string  `json:"hashtags"`
	Sentiment float64   `json:"sentiment"`
}

// Document is an indexable chunk of a post. One post may yield several
// documents; IDs follow the "<postID>_chunk_<n>" convention. Documents are
// never mutated after creation, only replaced wholesale on re-indexing.
type Document struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Metadata  DocumentMetadata `json:"metadata"`
	Embedding []float32        `json:"embedding"`
}

// TrendingTopic is a detected trending keyword over a rolling window.
type TrendingTopic struct {
	ID           string    `json:"id" db:"id"`
	Keyword      string    `json:"keyword" db:"keyword"`
	Mentions     int       `json:"mentions" db:"mentions"`
	Sentiment    float64   `json:"sentiment" db:"sentiment"`
	Change       float64   `json:"change" db:"change"`
	Platform     Platform  `json:"platform" db:"platform"`
	Category     string    `json:"category" db:"category"`
	RelatedPosts []string  `json:"relatedPosts"`
	FirstSeen    time.Time `json:"firstSeen" db:"first_seen"`
	LastUpdated  time.Time `json:"lastUpdated" db:"last_updated"`
}

// RAGQuery is the request contract of the query pipeline.
type RAGQuery struct {
	Query   string        `json:"query"`
	Filters *QueryFilters `json:"filters,omitempty"`
	Limit   int           `json:"limit,omitempty"`
}

// QueryFilters narrow retrieval; all provided filters are AND-combined.
type QueryFilters struct {
	Platforms []Platform `json:"platform,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
	Sentiment *Range     `json:"sentiment,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Source attributes one retrieved document in a RAG answer.
type Source struct {
	PostID         string   `json:"postId"`
	Platform       Platform `json:"platform"`
	Content        string   `json:"content"`
	URL            string   `json:"url"`
	RelevanceScore float64  `json:"relevanceScore"`
}

// RAGResponse is the answer contract of the query pipeline. A query always
// yields a response; failures surface as low-confidence answers, never as
// errors.
type RAGResponse struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// SourceState describes one platform's most recent ingestion outcome.
type SourceState string

const (
	SourceActive   SourceState = "active"
	SourceInactive SourceState = "inactive"
	SourceError    SourceState = "error"
)

// IngestionStatus aggregates the per-platform outcome of an ingestion run.
type IngestionStatus struct {
	Platforms  map[Platform]SourceState `json:"platforms"`
	LastUpdate string                   `json:"lastUpdate"`
	TotalPosts int                      `json:"totalPosts"`
	Errors     []string                 `json:"errors"`
}

// TrendInsights summarizes a trend analysis run.
type TrendInsights struct {
	TotalTrends         int      `json:"totalTrends"`
	FastestGrowing      string   `json:"fastestGrowing"`
	MostDiscussed       string   `json:"mostDiscussed"`
	SentimentLeader     string   `json:"sentimentLeader"`
	CrossPlatformTrends []string `json:"crossPlatformTrends"`
}

// TrendPoint is one bucket of the hourly series attached to trend details.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Mentions  int       `json:"mentions"`
	Sentiment float64   `json:"sentiment"`
}
