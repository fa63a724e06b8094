// File path: internal/vector/memory.go
package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

// MemoryStore is the local linear-scan index. It is the permanent fallback
// when no external vector database is reachable and the reference semantics
// for the ranking contract: cosine similarity, threshold-filtered, descending,
// topK-limited.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]social.Document
	// order records insertion sequence so ties in similarity rank
	// deterministically within a call.
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]social.Document)}
}

// Add stores the documents, overwriting by id. Documents without an embedding
// are rejected; embedding population happens upstream.
func (m *MemoryStore) Add(_ context.Context, docs []social.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		if _, exists := m.docs[doc.ID]; !exists {
			m.order = append(m.order, doc.ID)
		}
		m.docs[doc.ID] = doc
	}
	return nil
}

// Search scans every stored document, keeps those passing the filters with
// similarity >= threshold, and returns at most topK matches sorted by
// descending similarity.
func (m *MemoryStore) Search(_ context.Context, query []float32, topK int, threshold float64, filters *social.QueryFilters) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	matches := make([]Match, 0, len(m.order))
	for _, id := range m.order {
		doc := m.docs[id]
		if !passesFilters(doc, filters) {
			continue
		}
		similarity, err := embedding.CosineSimilarity(query, doc.Embedding)
		if err != nil {
			if errors.Is(err, embedding.ErrDimensionMismatch) {
				return nil, err
			}
			continue
		}
		if similarity >= threshold {
			matches = append(matches, Match{Document: doc, Similarity: similarity})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// GetByID returns the stored document, if any.
func (m *MemoryStore) GetByID(id string) (social.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	return doc, ok
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]social.Document)
	m.order = nil
	return nil
}

// Stats aggregates platform counts and mean sentiment over the local
// documents.
func (m *MemoryStore) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{PlatformBreakdown: make(map[social.Platform]int)}
	var totalSentiment float64
	for _, doc := range m.docs {
		stats.TotalDocuments++
		stats.PlatformBreakdown[doc.Metadata.Platform]++
		totalSentiment += doc.Metadata.Sentiment
	}
	if stats.TotalDocuments > 0 {
		stats.AvgSentiment = totalSentiment / float64(stats.TotalDocuments)
	}
	return stats
}

// passesFilters applies the AND-combined metadata predicates.
func passesFilters(doc social.Document, filters *social.QueryFilters) bool {
	if filters == nil {
		return true
	}
	if len(filters.Platforms) > 0 {
		found := false
		for _, p := range filters.Platforms {
			if doc.Metadata.Platform == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.DateRange != nil {
		ts := doc.Metadata.Timestamp
		if ts.Before(filters.DateRange.Start) || ts.After(filters.DateRange.End) {
			return false
		}
	}
	if filters.Sentiment != nil {
		s := doc.Metadata.Sentiment
		if s < filters.Sentiment.Min || s > filters.Sentiment.Max {
			return false
		}
	}
	if len(filters.Keywords) > 0 {
		content := strings.ToLower(doc.Content)
		found := false
		for _, keyword := range filters.Keywords {
			if strings.Contains(content, strings.ToLower(keyword)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
