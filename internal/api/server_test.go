// File path: internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/indexer"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/ingest"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/llm"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/rag"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/trends"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/vector"
)

func newTestServer(t *testing.T) (*Server, *store.Catalog) {
	t.Helper()
	catalog, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	embedCfg := config.EmbeddingConfig{Dimensions: 32, ChunkSize: 512, ChunkOverlap: 50}
	index := vector.NewIndex(embedding.NewLocalService(embedCfg.Dimensions), nil)
	ix := indexer.New(index, embedCfg)
	generator := llm.NewService("", config.GenerationConfig{Model: "gpt-4o-mini", MaxTokens: 500, Temperature: 0.7})
	ragSvc := rag.NewService(index, catalog, ix, generator, config.RetrievalConfig{TopK: 5, SimilarityThreshold: 0.3})
	detector := trends.NewDetector(catalog, config.TrendsConfig{
		MinMentions: 2, TimeWindow: 24 * time.Hour, UpdateInterval: 15 * time.Minute, CrossPlatformRatio: 0.3,
	})
	ingestCfg := config.IngestionConfig{
		Reddit:     config.PlatformConfig{Enabled: true, Queries: []string{"technology"}, MaxResults: 2},
		YouTube:    config.PlatformConfig{Enabled: true, Queries: []string{"Technology"}, MaxResults: 2},
		HackerNews: config.PlatformConfig{Enabled: false},
		RSS:        config.PlatformConfig{Enabled: false},
	}
	ingestSvc := ingest.NewService(catalog, ingestCfg)
	return NewServer(ragSvc, detector, ingestSvc, catalog), catalog
}

func seedPost(t *testing.T, catalog *store.Catalog, id, content string) {
	t.Helper()
	post := social.Post{
		ID: id, Platform: social.PlatformReddit, Content: content,
		Author: "seeder", Timestamp: time.Now(), URL: "https://example.com/" + id,
		Hashtags: []string{"seeded"},
	}
	if err := catalog.StorePosts(context.Background(), []social.Post{post}); err != nil {
		t.Fatal(err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRAGQueryValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/rag/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/rag/query", strings.NewReader(`{"query":"  "}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank query status = %d, want 400", rec.Code)
	}
}

func TestRAGQueryRoundTrip(t *testing.T) {
	srv, catalog := newTestServer(t)
	seedPost(t, catalog, "p1", "a detailed post about observability tooling")

	req := httptest.NewRequest(http.MethodPost, "/api/rag/index", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d: %s", rec.Code, rec.Body.String())
	}

	body := `{"query":"a detailed post about observability tooling"}`
	req = httptest.NewRequest(http.MethodPost, "/api/rag/query", strings.NewReader(body))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp social.RAGResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) == 0 || resp.Sources[0].PostID != "p1" {
		t.Fatalf("sources = %+v", resp.Sources)
	}
}

func TestRAGStats(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/rag/stats", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats rag.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocuments != 0 {
		t.Fatalf("documents = %d, want 0", stats.TotalDocuments)
	}
}

func TestTrendsEndpoints(t *testing.T) {
	srv, catalog := newTestServer(t)
	for i := 0; i < 5; i++ {
		seedPost(t, catalog, fmt.Sprintf("tr-%d", i), "everyone discussing quantum computing breakthroughs #quantum")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/trends/analyze", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body.String())
	}
	var result trends.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Trends) == 0 {
		t.Fatal("no trends detected")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/trends?limit=5", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("trends status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/trends/"+result.Trends[0].ID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("details status = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/trends/does-not-exist", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing trend status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/trends?limit=bogus", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestPostSearch(t *testing.T) {
	srv, catalog := newTestServer(t)
	seedPost(t, catalog, "s1", "kubernetes operators deep dive")

	req := httptest.NewRequest(http.MethodGet, "/api/posts/search?q=kubernetes", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Posts []social.Post `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Posts) != 1 || payload.Posts[0].ID != "s1" {
		t.Fatalf("posts = %+v", payload.Posts)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/posts/search", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing q status = %d, want 400", rec.Code)
	}
}

func TestIngestEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ingest/status", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", rec.Code)
	}
	var before social.IngestionStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &before); err != nil {
		t.Fatal(err)
	}
	if before.LastUpdate != "Never" {
		t.Fatalf("lastUpdate = %s, want Never", before.LastUpdate)
	}

	// No credentials configured: reddit and youtube fall back to mock data,
	// disabled platforms report errors.
	req = httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("trigger = %d", rec.Code)
	}
	var after social.IngestionStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatal(err)
	}
	if after.Platforms[social.PlatformReddit] != social.SourceActive {
		t.Fatalf("reddit = %s, want active", after.Platforms[social.PlatformReddit])
	}
	if after.Platforms[social.PlatformHackerNews] != social.SourceError {
		t.Fatalf("disabled hackernews = %s, want error", after.Platforms[social.PlatformHackerNews])
	}
	if after.TotalPosts == 0 {
		t.Fatal("mock ingestion stored no posts")
	}
}

func TestLogsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content type = %s", rec.Header().Get("Content-Type"))
	}
}
