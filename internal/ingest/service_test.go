// File path: internal/ingest/service_test.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
)

func platformConfigForTest() config.PlatformConfig {
	return config.PlatformConfig{
		Enabled:      true,
		Queries:      []string{"technology"},
		MaxResults:   2,
		RateRequests: 60,
		RateWindow:   time.Minute,
	}
}

type fakeClient struct {
	platform social.Platform
	fail     bool
	panics   bool
}

func (f *fakeClient) Platform() social.Platform { return f.platform }

func (f *fakeClient) Fetch(_ context.Context, query string, limit int) ([]social.Post, error) {
	if f.panics {
		panic("client blew up")
	}
	if f.fail {
		return nil, errors.New("upstream unavailable")
	}
	posts := make([]social.Post, 0, limit)
	for i := 0; i < limit; i++ {
		posts = append(posts, social.Post{
			ID:        fmt.Sprintf("%s-%s-%d", f.platform, query, i),
			Platform:  f.platform,
			Content:   "fetched content about " + query,
			Author:    "fetcher",
			Timestamp: time.Now(),
		})
	}
	return posts, nil
}

func runner(client Client, enabled bool) platformRunner {
	return platformRunner{client: client, enabled: enabled, queries: []string{"topic"}, limit: 2}
}

func TestTriggerIsolatesPlatformFailures(t *testing.T) {
	catalog, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	svc := newServiceWithClients(catalog, []platformRunner{
		runner(&fakeClient{platform: social.PlatformReddit}, true),
		runner(&fakeClient{platform: social.PlatformYouTube, fail: true}, true),
		runner(&fakeClient{platform: social.PlatformHackerNews, panics: true}, true),
		runner(&fakeClient{platform: social.PlatformRSS}, true),
	})

	status := svc.Trigger(context.Background())

	if status.Platforms[social.PlatformReddit] != social.SourceActive {
		t.Fatalf("reddit = %s, want active", status.Platforms[social.PlatformReddit])
	}
	if status.Platforms[social.PlatformRSS] != social.SourceActive {
		t.Fatalf("rss = %s, want active", status.Platforms[social.PlatformRSS])
	}
	if status.Platforms[social.PlatformYouTube] != social.SourceError {
		t.Fatalf("youtube = %s, want error", status.Platforms[social.PlatformYouTube])
	}
	if status.Platforms[social.PlatformHackerNews] != social.SourceError {
		t.Fatalf("hackernews = %s, want error", status.Platforms[social.PlatformHackerNews])
	}
	if len(status.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 entries", status.Errors)
	}
	// Healthy platforms stored their posts despite the failures.
	if status.TotalPosts != 4 {
		t.Fatalf("total posts = %d, want 4", status.TotalPosts)
	}
	if status.LastUpdate == "Never" {
		t.Fatal("last update not recorded")
	}
}

func TestDisabledPlatformReportsError(t *testing.T) {
	catalog, _ := store.Open("")
	svc := newServiceWithClients(catalog, []platformRunner{
		runner(&fakeClient{platform: social.PlatformReddit}, false),
	})
	status := svc.Trigger(context.Background())
	if status.Platforms[social.PlatformReddit] != social.SourceError {
		t.Fatalf("disabled platform = %s, want error", status.Platforms[social.PlatformReddit])
	}
}

func TestTriggerPreprocessesPosts(t *testing.T) {
	catalog, _ := store.Open("")
	svc := newServiceWithClients(catalog, []platformRunner{
		runner(&fakeClient{platform: social.PlatformReddit}, true),
	})
	svc.Trigger(context.Background())
	post, ok := catalog.GetPostByID("reddit-topic-0")
	if !ok {
		t.Fatal("post not stored")
	}
	if post.Sentiment == nil {
		t.Fatal("ingested post not preprocessed")
	}
}

func TestStatusBeforeAnyRun(t *testing.T) {
	catalog, _ := store.Open("")
	svc := newServiceWithClients(catalog, []platformRunner{
		runner(&fakeClient{platform: social.PlatformReddit}, true),
	})
	status := svc.Status()
	if status.LastUpdate != "Never" {
		t.Fatalf("lastUpdate = %s, want Never", status.LastUpdate)
	}
	if status.Platforms[social.PlatformReddit] != social.SourceInactive {
		t.Fatalf("initial state = %s, want inactive", status.Platforms[social.PlatformReddit])
	}
}

func TestMockFallbackWithoutCredentials(t *testing.T) {
	client := NewRedditClient(platformConfigForTest(), "", "", "test-agent")
	posts, err := client.Fetch(context.Background(), "technology", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("mock posts = %d, want 2", len(posts))
	}
	for _, post := range posts {
		if post.Platform != social.PlatformReddit {
			t.Fatalf("platform = %s", post.Platform)
		}
	}
}
