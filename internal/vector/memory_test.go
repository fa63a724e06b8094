// File path: internal/vector/memory_test.go
package vector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

func seedDocs(t *testing.T, store *MemoryStore, embedder *embedding.Service, contents map[string]string) {
	t.Helper()
	ctx := context.Background()
	docs := make([]social.Document, 0, len(contents))
	i := 0
	for id, content := range contents {
		docs = append(docs, social.Document{
			ID:      id,
			Content: content,
			Metadata: social.DocumentMetadata{
				PostID:    id,
				Platform:  social.PlatformReddit,
				Timestamp: time.Now().Add(-time.Duration(i) * time.Hour),
				Sentiment: 0.5,
			},
			Embedding: embedder.Embed(ctx, content),
		})
		i++
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStoreRejectsMissingEmbedding(t *testing.T) {
	store := NewMemoryStore()
	err := store.Add(context.Background(), []social.Document{{ID: "bare", Content: "no vector"}})
	if err == nil {
		t.Fatal("expected error for document without embedding")
	}
}

func TestSearchRankingContract(t *testing.T) {
	store := NewMemoryStore()
	embedder := embedding.NewLocalService(64)
	ctx := context.Background()

	docs := make([]social.Document, 0, 20)
	for i := 0; i < 20; i++ {
		content := fmt.Sprintf("post number %d about assorted topics", i)
		docs = append(docs, social.Document{
			ID:        fmt.Sprintf("doc-%d", i),
			Content:   content,
			Metadata:  social.DocumentMetadata{Platform: social.PlatformReddit, Timestamp: time.Now()},
			Embedding: embedder.Embed(ctx, content),
		})
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}

	query := embedder.Embed(ctx, "post number 7 about assorted topics")
	const topK = 5
	const threshold = 0.1
	matches, err := store.Search(ctx, query, topK, threshold, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if len(matches) > topK {
		t.Fatalf("got %d matches, want at most %d", len(matches), topK)
	}
	for i, m := range matches {
		if m.Similarity < threshold {
			t.Fatalf("match %d similarity %v below threshold", i, m.Similarity)
		}
		if i > 0 && matches[i-1].Similarity < m.Similarity {
			t.Fatalf("matches not sorted descending at %d: %v < %v", i, matches[i-1].Similarity, m.Similarity)
		}
	}
	if matches[0].Document.ID != "doc-7" {
		t.Fatalf("best match = %s, want doc-7 (identical text)", matches[0].Document.ID)
	}
}

func TestSearchPlatformFilter(t *testing.T) {
	store := NewMemoryStore()
	embedder := embedding.NewLocalService(32)
	ctx := context.Background()
	now := time.Now()
	docs := []social.Document{
		{
			ID: "r1", Content: "golang generics discussion",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformReddit, Timestamp: now},
			Embedding: embedder.Embed(ctx, "golang generics discussion"),
		},
		{
			ID: "h1", Content: "golang generics discussion",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformHackerNews, Timestamp: now},
			Embedding: embedder.Embed(ctx, "golang generics discussion"),
		},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}
	query := embedder.Embed(ctx, "golang generics discussion")
	matches, err := store.Search(ctx, query, 10, 0, &social.QueryFilters{
		Platforms: []social.Platform{social.PlatformHackerNews},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Document.ID != "h1" {
		t.Fatalf("platform filter returned %+v, want only h1", matches)
	}
}

func TestSearchDateAndSentimentFilters(t *testing.T) {
	store := NewMemoryStore()
	embedder := embedding.NewLocalService(32)
	ctx := context.Background()
	now := time.Now()
	docs := []social.Document{
		{
			ID: "old", Content: "climate policy update",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformRSS, Timestamp: now.Add(-72 * time.Hour), Sentiment: 0.8},
			Embedding: embedder.Embed(ctx, "climate policy update"),
		},
		{
			ID: "fresh-negative", Content: "climate policy update",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformRSS, Timestamp: now, Sentiment: 0.1},
			Embedding: embedder.Embed(ctx, "climate policy update"),
		},
		{
			ID: "fresh-positive", Content: "climate policy update",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformRSS, Timestamp: now, Sentiment: 0.9},
			Embedding: embedder.Embed(ctx, "climate policy update"),
		},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}
	query := embedder.Embed(ctx, "climate policy update")
	matches, err := store.Search(ctx, query, 10, 0, &social.QueryFilters{
		DateRange: &social.DateRange{Start: now.Add(-24 * time.Hour), End: now.Add(time.Hour)},
		Sentiment: &social.Range{Min: 0.5, Max: 1.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Document.ID != "fresh-positive" {
		t.Fatalf("combined filters returned %+v, want only fresh-positive", matches)
	}
}

func TestSearchKeywordFilter(t *testing.T) {
	store := NewMemoryStore()
	embedder := embedding.NewLocalService(32)
	seedDocs(t, store, embedder, map[string]string{
		"a": "new GPU benchmarks released",
		"b": "city council votes on transit plan",
	})
	query := embedder.Embed(context.Background(), "hardware news")
	matches, err := store.Search(context.Background(), query, 10, -1, &social.QueryFilters{Keywords: []string{"gpu"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Document.ID != "a" {
		t.Fatalf("keyword filter returned %+v, want only a", matches)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	store := NewMemoryStore()
	embedder := embedding.NewLocalService(16)
	ctx := context.Background()
	docs := []social.Document{
		{
			ID: "1", Content: "x",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformReddit, Sentiment: 0.2},
			Embedding: embedder.Embed(ctx, "x"),
		},
		{
			ID: "2", Content: "y",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformReddit, Sentiment: 0.6},
			Embedding: embedder.Embed(ctx, "y"),
		},
		{
			ID: "3", Content: "z",
			Metadata:  social.DocumentMetadata{Platform: social.PlatformYouTube, Sentiment: 1.0},
			Embedding: embedder.Embed(ctx, "z"),
		},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}
	stats := store.Stats()
	if stats.TotalDocuments != 3 {
		t.Fatalf("total = %d, want 3", stats.TotalDocuments)
	}
	if stats.PlatformBreakdown[social.PlatformReddit] != 2 {
		t.Fatalf("reddit count = %d, want 2", stats.PlatformBreakdown[social.PlatformReddit])
	}
	if diff := stats.AvgSentiment - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("avg sentiment = %v, want 0.6", stats.AvgSentiment)
	}
}

func TestIndexEmbedsAndMirrors(t *testing.T) {
	idx := NewIndex(embedding.NewLocalService(48), nil)
	if !idx.Degraded() {
		t.Fatal("index without chromadb should run degraded")
	}
	ctx := context.Background()
	docs := []social.Document{{
		ID:       "p1_chunk_0",
		Content:  "open source release announcement",
		Metadata: social.DocumentMetadata{PostID: "p1", Platform: social.PlatformHackerNews, Timestamp: time.Now()},
	}}
	if err := idx.Add(ctx, docs); err != nil {
		t.Fatal(err)
	}
	stored, ok := idx.GetByID("p1_chunk_0")
	if !ok {
		t.Fatal("document not mirrored")
	}
	if len(stored.Embedding) != 48 {
		t.Fatalf("embedding dims = %d, want 48", len(stored.Embedding))
	}
	matches, err := idx.SearchText(ctx, "open source release announcement", 5, 0.3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Document.ID != "p1_chunk_0" {
		t.Fatalf("search returned %+v", matches)
	}
	count, err := idx.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count = %d err = %v, want 1", count, err)
	}
}
