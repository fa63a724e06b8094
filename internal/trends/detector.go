// File path: internal/trends/detector.go
package trends

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
)

const (
	maxTrends        = 50
	maxRelatedPosts  = 10
	analysisPostCap  = 5000
	growthInclusion  = 20.0
	volumeInclusion  = 100
	relatedKeywordCo = 0.3
)

// keywordMetrics accumulates per-keyword counters over one analysis window.
type keywordMetrics struct {
	keyword          string
	currentMentions  int
	previousMentions int
	growthRate       float64
	platforms        map[social.Platform]int
	avgSentiment     float64
	hourCounts       [24]int
	category         string
	relatedKeywords  []string
}

func (m *keywordMetrics) peakHour() int {
	best := 0
	for hour, count := range m.hourCounts {
		if count > m.hourCounts[best] {
			best = hour
		}
	}
	return best
}

// Result is the outcome of one analysis run.
type Result struct {
	Trends   []social.TrendingTopic `json:"trends"`
	Insights social.TrendInsights   `json:"insights"`
}

// Details bundles everything the trend detail endpoint returns.
type Details struct {
	Trend        *social.TrendingTopic `json:"trend"`
	RelatedPosts []social.Post         `json:"relatedPosts"`
	TimeSeries   []social.TrendPoint   `json:"timeSeriesData"`
}

// Stats describes the detector's run history.
type Stats struct {
	LastAnalysis     string        `json:"lastAnalysis"`
	CachedTrends     int           `json:"cachedTrends"`
	AnalysisInterval time.Duration `json:"analysisInterval"`
}

// Detector finds trending keywords over a rolling window. Previous-window
// mention counts are cached between runs so growth rates compare consecutive
// windows.
type Detector struct {
	catalog *store.Catalog
	cfg     config.TrendsConfig

	mu           sync.Mutex
	prevMentions map[string]int
	lastAnalysis time.Time

	now func() time.Time
}

func NewDetector(catalog *store.Catalog, cfg config.TrendsConfig) *Detector {
	return &Detector{
		catalog:      catalog,
		cfg:          cfg,
		prevMentions: make(map[string]int),
		now:          time.Now,
	}
}

// Analyze runs trend detection over the posts of the configured window.
// When nothing qualifies, previously stored trends are returned so callers
// never see an empty dashboard right after a restart.
func (d *Detector) Analyze(ctx context.Context) (Result, error) {
	logger := common.Logger()
	now := d.now()
	windowStart := now.Add(-d.cfg.TimeWindow)
	posts := d.catalog.GetPosts(store.PostFilters{
		DateRange: &social.DateRange{Start: windowStart, End: now},
		Limit:     analysisPostCap,
	})
	logger.Info("trends: analyzing recent posts", "posts", len(posts))

	metrics := d.extractKeywordMetrics(posts)
	detected := d.detectTrendingTopics(metrics, posts, windowStart, now)

	if len(detected) == 0 {
		logger.Info("trends: no new trends detected, returning stored trends")
		detected = d.GetTrendingTopics(maxTrends)
	}

	insights := generateInsights(detected)

	if len(detected) > 0 {
		if err := d.catalog.StoreTrends(ctx, detected); err != nil {
			return Result{}, fmt.Errorf("store trends: %w", err)
		}
	}

	d.mu.Lock()
	d.lastAnalysis = now
	d.prevMentions = make(map[string]int, len(metrics))
	for keyword, m := range metrics {
		d.prevMentions[keyword] = m.currentMentions
	}
	d.mu.Unlock()

	logger.Info("trends: analysis completed", "trends", len(detected))
	return Result{Trends: detected, Insights: insights}, nil
}

// GetTrendingTopics returns stored trends by mentions, falling back to a
// small demo set when the catalog is empty.
func (d *Detector) GetTrendingTopics(limit int) []social.TrendingTopic {
	if limit <= 0 {
		limit = 10
	}
	trends := d.catalog.GetTrends(limit)
	if len(trends) == 0 {
		common.Logger().Info("trends: catalog empty, returning demo trends")
		return demoTrends(limit, d.now())
	}
	return trends
}

// GetTrendDetails resolves one trend with its related posts and an hourly
// mention series. A missing trend yields empty details, not an error.
func (d *Detector) GetTrendDetails(trendID string) Details {
	var found *social.TrendingTopic
	for _, trend := range d.catalog.GetTrends(0) {
		if trend.ID == trendID {
			t := trend
			found = &t
			break
		}
	}
	if found == nil {
		return Details{RelatedPosts: []social.Post{}, TimeSeries: []social.TrendPoint{}}
	}
	posts := make([]social.Post, 0, len(found.RelatedPosts))
	for _, postID := range found.RelatedPosts {
		if post, ok := d.catalog.GetPostByID(postID); ok {
			posts = append(posts, post)
		}
	}
	return Details{
		Trend:        found,
		RelatedPosts: posts,
		TimeSeries:   timeSeries(posts),
	}
}

// AnalysisStats reports run history for the status endpoint.
func (d *Detector) AnalysisStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	last := "Never"
	if !d.lastAnalysis.IsZero() {
		last = d.lastAnalysis.UTC().Format(time.RFC3339)
	}
	return Stats{
		LastAnalysis:     last,
		CachedTrends:     len(d.prevMentions),
		AnalysisInterval: d.cfg.UpdateInterval,
	}
}

func (d *Detector) extractKeywordMetrics(posts []social.Post) map[string]*keywordMetrics {
	d.mu.Lock()
	prev := d.prevMentions
	d.mu.Unlock()

	out := make(map[string]*keywordMetrics)
	for _, post := range posts {
		for _, keyword := range postKeywords(post) {
			m, ok := out[keyword]
			if !ok {
				m = &keywordMetrics{
					keyword:          keyword,
					previousMentions: prev[keyword],
					platforms:        make(map[social.Platform]int),
					category:         categorize(keyword),
				}
				out[keyword] = m
			}
			m.currentMentions++
			m.platforms[post.Platform]++
			sentiment := post.SentimentOrNeutral()
			m.avgSentiment = (m.avgSentiment*float64(m.currentMentions-1) + sentiment) / float64(m.currentMentions)
			m.hourCounts[post.Timestamp.Hour()]++
		}
	}
	for _, m := range out {
		if m.previousMentions > 0 {
			m.growthRate = float64(m.currentMentions-m.previousMentions) / float64(m.previousMentions) * 100
		} else if m.currentMentions > 0 {
			m.growthRate = 100
		}
		m.relatedKeywords = relatedKeywords(m.keyword, out)
	}
	return out
}

func (d *Detector) detectTrendingTopics(metrics map[string]*keywordMetrics, posts []social.Post, windowStart, now time.Time) []social.TrendingTopic {
	trends := make([]social.TrendingTopic, 0)
	for keyword, m := range metrics {
		if m.currentMentions < d.cfg.MinMentions {
			continue
		}
		// Trending means either growing fast or carrying high volume.
		if m.growthRate <= growthInclusion && m.currentMentions <= volumeInclusion {
			continue
		}
		trends = append(trends, social.TrendingTopic{
			ID:           fmt.Sprintf("trend_%s_%d", strings.ReplaceAll(keyword, " ", "_"), now.UnixMilli()),
			Keyword:      keyword,
			Mentions:     m.currentMentions,
			Sentiment:    m.avgSentiment,
			Change:       m.growthRate,
			Platform:     dominantPlatform(m.platforms, d.cfg.CrossPlatformRatio),
			Category:     m.category,
			RelatedPosts: relatedPostIDs(posts, keyword),
			FirstSeen:    windowStart,
			LastUpdated:  now,
		})
	}
	sort.SliceStable(trends, func(i, j int) bool {
		return trendScore(trends[i]) > trendScore(trends[j])
	})
	if len(trends) > maxTrends {
		trends = trends[:maxTrends]
	}
	return trends
}

// postKeywords unions hashtags, frequent content words and mentions,
// keeping only terms longer than two characters.
func postKeywords(post social.Post) []string {
	seen := make(map[string]struct{})
	ordered := make([]string, 0)
	add := func(keyword string) {
		keyword = strings.ToLower(keyword)
		if len(keyword) <= 2 {
			return
		}
		if _, ok := seen[keyword]; ok {
			return
		}
		seen[keyword] = struct{}{}
		ordered = append(ordered, keyword)
	}
	for _, tag := range post.Hashtags {
		add(tag)
	}
	for _, keyword := range contentKeywords(post.Content) {
		add(keyword)
	}
	for _, mention := range post.Mentions {
		add(mention)
	}
	return ordered
}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {}, "from": {},
	"they": {}, "know": {}, "want": {}, "been": {}, "good": {}, "much": {},
	"some": {}, "time": {}, "very": {}, "when": {}, "come": {}, "here": {},
	"just": {}, "like": {}, "long": {}, "make": {}, "many": {}, "over": {},
	"such": {}, "take": {}, "than": {}, "them": {}, "well": {}, "were": {},
}

// contentKeywords returns the top five words of length four or more that
// occur at least twice, stop words excluded.
func contentKeywords(content string) []string {
	var builder strings.Builder
	for _, r := range strings.ToLower(content) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune(' ')
		}
	}
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for pos, word := range strings.Fields(builder.String()) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, ok := counts[word]; !ok {
			firstSeen[word] = pos
		}
		counts[word]++
	}
	type wordCount struct {
		word  string
		count int
		first int
	}
	frequent := make([]wordCount, 0, len(counts))
	for word, count := range counts {
		if count >= 2 {
			frequent = append(frequent, wordCount{word, count, firstSeen[word]})
		}
	}
	// Equal frequencies rank by first occurrence in the text.
	sort.Slice(frequent, func(i, j int) bool {
		if frequent[i].count != frequent[j].count {
			return frequent[i].count > frequent[j].count
		}
		return frequent[i].first < frequent[j].first
	})
	if len(frequent) > 5 {
		frequent = frequent[:5]
	}
	out := make([]string, len(frequent))
	for i, wc := range frequent {
		out[i] = wc.word
	}
	return out
}

// categoryEntry keeps the table ordered; the first matching category wins.
type categoryEntry struct {
	name  string
	terms []string
}

var categoryTable = []categoryEntry{
	{"Technology", []string{"ai", "tech", "software", "app", "digital", "crypto", "blockchain", "innovation"}},
	{"Politics", []string{"election", "vote", "government", "policy", "political", "congress", "senate"}},
	{"Entertainment", []string{"movie", "music", "celebrity", "show", "film", "actor", "singer", "entertainment"}},
	{"Sports", []string{"game", "team", "player", "sport", "match", "championship", "league", "tournament"}},
	{"Business", []string{"market", "stock", "company", "business", "economy", "finance", "investment"}},
	{"Science", []string{"research", "study", "science", "discovery", "experiment", "medical", "health"}},
	{"Environment", []string{"climate", "environment", "green", "sustainability", "carbon", "renewable"}},
}

func categorize(keyword string) string {
	lowered := strings.ToLower(keyword)
	for _, entry := range categoryTable {
		for _, term := range entry.terms {
			if strings.Contains(lowered, term) {
				return entry.name
			}
		}
	}
	return "Other"
}

// relatedKeywords returns up to five other keywords whose character sets
// overlap the given one with Jaccard similarity above the threshold. Only
// keywords with more than five mentions qualify.
func relatedKeywords(keyword string, metrics map[string]*keywordMetrics) []string {
	candidates := make([]string, 0)
	for other, m := range metrics {
		if other == keyword || m.currentMentions <= 5 {
			continue
		}
		if charJaccard(keyword, other) > relatedKeywordCo {
			candidates = append(candidates, other)
		}
	}
	sort.Strings(candidates)
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return candidates
}

func charJaccard(a, b string) float64 {
	setA := make(map[rune]struct{})
	for _, r := range strings.ToLower(a) {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range strings.ToLower(b) {
		setB[r] = struct{}{}
	}
	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func postContainsKeyword(post social.Post, keyword string) bool {
	if strings.Contains(strings.ToLower(post.Content), keyword) {
		return true
	}
	for _, tag := range post.Hashtags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	for _, mention := range post.Mentions {
		if strings.Contains(strings.ToLower(mention), keyword) {
			return true
		}
	}
	return false
}

// relatedPostIDs picks the ten posts mentioning the keyword with the most
// engagement.
func relatedPostIDs(posts []social.Post, keyword string) []string {
	matching := make([]social.Post, 0)
	for _, post := range posts {
		if postContainsKeyword(post, keyword) {
			matching = append(matching, post)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Engagement() > matching[j].Engagement()
	})
	if len(matching) > maxRelatedPosts {
		matching = matching[:maxRelatedPosts]
	}
	ids := make([]string, len(matching))
	for i, post := range matching {
		ids[i] = post.ID
	}
	return ids
}

// dominantPlatform picks the platform with the most mentions, or the
// cross-platform sentinel when the runner-up exceeds the given share of the
// leader.
func dominantPlatform(platforms map[social.Platform]int, crossRatio float64) social.Platform {
	if len(platforms) == 0 {
		return social.PlatformAll
	}
	type entry struct {
		platform social.Platform
		count    int
	}
	entries := make([]entry, 0, len(platforms))
	for platform, count := range platforms {
		entries = append(entries, entry{platform, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].platform < entries[j].platform
	})
	if len(entries) > 1 && float64(entries[1].count) > float64(entries[0].count)*crossRatio {
		return social.PlatformAll
	}
	return entries[0].platform
}

// trendScore weighs volume logarithmically, growth and sentiment linearly,
// with a bonus for cross-platform reach.
func trendScore(trend social.TrendingTopic) float64 {
	score := math.Log(float64(trend.Mentions)+1) * 10
	score += math.Max(trend.Change, 0) * 2
	score += trend.Sentiment * 20
	if trend.Platform == social.PlatformAll {
		score += 10
	} else {
		score += 5
	}
	return score
}

// timeSeries buckets the posts by hour, averaging sentiment per bucket.
func timeSeries(posts []social.Post) []social.TrendPoint {
	type bucket struct {
		mentions  int
		sentiment float64
	}
	buckets := make(map[time.Time]*bucket)
	for _, post := range posts {
		hour := post.Timestamp.Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{}
			buckets[hour] = b
		}
		b.mentions++
		b.sentiment += post.SentimentOrNeutral()
	}
	out := make([]social.TrendPoint, 0, len(buckets))
	for hour, b := range buckets {
		out = append(out, social.TrendPoint{
			Timestamp: hour,
			Mentions:  b.mentions,
			Sentiment: b.sentiment / float64(b.mentions),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func generateInsights(trends []social.TrendingTopic) social.TrendInsights {
	insights := social.TrendInsights{
		TotalTrends:         len(trends),
		FastestGrowing:      "None",
		MostDiscussed:       "None",
		SentimentLeader:     "None",
		CrossPlatformTrends: []string{},
	}
	if len(trends) == 0 {
		return insights
	}
	fastest, discussed, positive := trends[0], trends[0], trends[0]
	for _, trend := range trends[1:] {
		if trend.Change > fastest.Change {
			fastest = trend
		}
		if trend.Mentions > discussed.Mentions {
			discussed = trend
		}
		if trend.Sentiment > positive.Sentiment {
			positive = trend
		}
	}
	insights.FastestGrowing = fastest.Keyword
	insights.MostDiscussed = discussed.Keyword
	insights.SentimentLeader = positive.Keyword
	for _, trend := range trends {
		if trend.Platform == social.PlatformAll {
			insights.CrossPlatformTrends = append(insights.CrossPlatformTrends, trend.Keyword)
			if len(insights.CrossPlatformTrends) == 5 {
				break
			}
		}
	}
	return insights
}

// demoTrends seeds the dashboard before any real analysis has run.
func demoTrends(limit int, now time.Time) []social.TrendingTopic {
	all := []social.TrendingTopic{
		{
			ID: "trend-ai-revolution", Keyword: "AI Revolution", Mentions: 15420,
			Sentiment: 0.82, Change: 234.5, Platform: social.PlatformAll,
			Category: "Technology", RelatedPosts: []string{"demo-hackernews-1", "demo-reddit-1"},
			FirstSeen: now.Add(-24 * time.Hour), LastUpdated: now,
		},
		{
			ID: "trend-climate-action", Keyword: "Climate Action", Mentions: 8934,
			Sentiment: 0.45, Change: -12.3, Platform: social.PlatformAll,
			Category: "Environment", RelatedPosts: []string{"demo-youtube-1", "demo-rss-2"},
			FirstSeen: now.Add(-48 * time.Hour), LastUpdated: now,
		},
		{
			ID: "trend-new-iphone", Keyword: "New iPhone", Mentions: 12567,
			Sentiment: 0.78, Change: 45.7, Platform: social.PlatformRSS,
			Category: "Technology", RelatedPosts: []string{"demo-rss-1"},
			FirstSeen: now.Add(-12 * time.Hour), LastUpdated: now,
		},
		{
			ID: "trend-remote-work", Keyword: "Remote Work", Mentions: 6789,
			Sentiment: 0.68, Change: 23.1, Platform: social.PlatformAll,
			Category: "Business", RelatedPosts: []string{"demo-youtube-2"},
			FirstSeen: now.Add(-36 * time.Hour), LastUpdated: now,
		},
		{
			ID: "trend-cryptocurrency", Keyword: "Cryptocurrency", Mentions: 4523,
			Sentiment: 0.62, Change: 8.9, Platform: social.PlatformReddit,
			Category: "Business", RelatedPosts: []string{"demo-reddit-2"},
			FirstSeen: now.Add(-72 * time.Hour), LastUpdated: now,
		},
	}
	if limit < len(all) {
		return all[:limit]
	}
	return all
}
