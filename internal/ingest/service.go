// File path: internal/ingest/service.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/preprocess"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
)

// platformRunner binds one client to its configuration.
type platformRunner struct {
	client  Client
	enabled bool
	queries []string
	limit   int
}

// Service fans ingestion out across every configured platform. Platform
// failures are isolated: one source erroring never blocks the others, it
// only shows up in the status report.
type Service struct {
	catalog *store.Catalog
	runners []platformRunner

	mu         sync.Mutex
	states     map[social.Platform]social.SourceState
	lastUpdate string
	errs       []string
}

// NewService wires the four platform clients from the configuration.
func NewService(catalog *store.Catalog, cfg config.IngestionConfig) *Service {
	svc := &Service{
		catalog:    catalog,
		states:     make(map[social.Platform]social.SourceState, 4),
		lastUpdate: "Never",
	}
	svc.runners = []platformRunner{
		{
			client:  NewRedditClient(cfg.Reddit, cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent),
			enabled: cfg.Reddit.Enabled,
			queries: cfg.Reddit.Queries,
			limit:   cfg.Reddit.MaxResults,
		},
		{
			client:  NewYouTubeClient(cfg.YouTube, cfg.YouTubeAPIKey),
			enabled: cfg.YouTube.Enabled,
			queries: cfg.YouTube.Queries,
			limit:   cfg.YouTube.MaxResults,
		},
		{
			client:  NewHackerNewsClient(cfg.HackerNews),
			enabled: cfg.HackerNews.Enabled,
			queries: cfg.HackerNews.Queries,
			limit:   cfg.HackerNews.MaxResults,
		},
		{
			client:  NewRSSClient(cfg.RSS),
			enabled: cfg.RSS.Enabled,
			queries: cfg.RSS.Queries,
			limit:   cfg.RSS.MaxResults,
		},
	}
	for _, runner := range svc.runners {
		svc.states[runner.client.Platform()] = social.SourceInactive
	}
	return svc
}

// newServiceWithClients is the test seam: same fan-out, caller-provided
// clients.
func newServiceWithClients(catalog *store.Catalog, runners []platformRunner) *Service {
	svc := &Service{
		catalog:    catalog,
		runners:    runners,
		states:     make(map[social.Platform]social.SourceState, len(runners)),
		lastUpdate: "Never",
	}
	for _, runner := range runners {
		svc.states[runner.client.Platform()] = social.SourceInactive
	}
	return svc
}

// Trigger runs one ingestion pass over every platform concurrently and
// returns the resulting status.
func (s *Service) Trigger(ctx context.Context) social.IngestionStatus {
	logger := common.Logger()
	logger.Info("ingest: starting ingestion across all platforms")

	type outcome struct {
		platform social.Platform
		err      error
	}
	outcomes := make([]outcome, len(s.runners))
	var wg sync.WaitGroup
	for i, runner := range s.runners {
		wg.Add(1)
		go func(i int, runner platformRunner) {
			defer wg.Done()
			err := s.ingestPlatform(ctx, runner)
			outcomes[i] = outcome{platform: runner.client.Platform(), err: err}
		}(i, runner)
	}
	wg.Wait()

	s.mu.Lock()
	s.errs = s.errs[:0]
	for _, o := range outcomes {
		if o.err != nil {
			s.states[o.platform] = social.SourceError
			s.errs = append(s.errs, fmt.Sprintf("%s: %v", o.platform, o.err))
		} else {
			s.states[o.platform] = social.SourceActive
		}
	}
	sort.Strings(s.errs)
	s.lastUpdate = time.Now().UTC().Format(time.RFC3339)
	s.mu.Unlock()

	logger.Info("ingest: ingestion completed", "errors", len(s.errs))
	return s.Status()
}

// Status reports the per-platform outcome of the most recent run.
func (s *Service) Status() social.IngestionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	platforms := make(map[social.Platform]social.SourceState, len(s.states))
	for platform, state := range s.states {
		platforms[platform] = state
	}
	errs := append([]string(nil), s.errs...)
	if errs == nil {
		errs = []string{}
	}
	return social.IngestionStatus{
		Platforms:  platforms,
		LastUpdate: s.lastUpdate,
		TotalPosts: s.catalog.TotalPosts(),
		Errors:     errs,
	}
}

func (s *Service) ingestPlatform(ctx context.Context, runner platformRunner) (err error) {
	platform := runner.client.Platform()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if !runner.enabled {
		return errors.New("ingestion is disabled")
	}
	logger := common.Logger()
	var posts []social.Post
	for _, query := range runner.queries {
		fetched, ferr := runner.client.Fetch(ctx, query, runner.limit)
		if ferr != nil {
			return fmt.Errorf("fetch %q: %w", query, ferr)
		}
		posts = append(posts, fetched...)
	}
	processed := preprocess.ProcessAll(posts)
	if err := s.catalog.StorePosts(ctx, processed); err != nil {
		return fmt.Errorf("store posts: %w", err)
	}
	logger.Info("ingest: platform ingested", "platform", platform, "posts", len(processed))
	return nil
}
