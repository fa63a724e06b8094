// File path: internal/ingest/client.go
package ingest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

// Client fetches posts for one query from a source platform. Implementations
// degrade to canned mock posts when the upstream API is unreachable or not
// configured, so a fetch only fails on context cancellation.
type Client interface {
	Platform() social.Platform
	Fetch(ctx context.Context, query string, limit int) ([]social.Post, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// newLimiter builds a limiter from the platform quota, defaulting to one
// request per second when the config leaves the quota unset.
func newLimiter(cfg config.PlatformConfig) *rate.Limiter {
	if cfg.RateRequests <= 0 || cfg.RateWindow <= 0 {
		return rate.NewLimiter(rate.Limit(1), 1)
	}
	perSecond := float64(cfg.RateRequests) / cfg.RateWindow.Seconds()
	return rate.NewLimiter(rate.Limit(perSecond), cfg.RateRequests)
}

// techTerms are matched case-insensitively against titles to synthesize
// hashtags for sources that have no native tagging.
var techTerms = []string{
	"AI", "ML", "JavaScript", "Python", "React", "Vue", "Angular",
	"Node.js", "Docker", "Kubernetes", "AWS", "Azure", "GCP",
	"Blockchain", "Cryptocurrency", "Web3", "API", "Database",
	"Security", "Privacy", "Open Source", "Startup", "Venture Capital",
}

func techHashtags(text string) []string {
	lowered := strings.ToLower(text)
	var tags []string
	for _, term := range techTerms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			tags = append(tags, term)
		}
	}
	return tags
}
