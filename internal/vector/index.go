// File path: internal/vector/index.go
package vector

import (
	"context"
	"sync/atomic"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

// Index is the vector store facade the rest of the service uses. It embeds
// documents that arrive without vectors, writes through ChromaDB when that is
// reachable, and mirrors every document into the in-memory store so lookups
// by id and degraded reads keep working. Once a ChromaDB call fails the index
// stays on the in-memory store for the life of the process.
type Index struct {
	embedder *embedding.Service
	chroma   *ChromaClient
	memory   *MemoryStore
	degraded atomic.Bool
}

// NewIndex wires the facade. chroma may be nil or unavailable; the index then
// runs memory-only from the start.
func NewIndex(embedder *embedding.Service, chroma *ChromaClient) *Index {
	idx := &Index{
		embedder: embedder,
		chroma:   chroma,
		memory:   NewMemoryStore(),
	}
	if !chroma.Available() {
		idx.degraded.Store(true)
	}
	return idx
}

// Degraded reports whether the index has fallen back to the in-memory store.
func (x *Index) Degraded() bool { return x.degraded.Load() }

// Add embeds any document lacking a vector, then writes to the active store.
// The in-memory mirror is always updated first.
func (x *Index) Add(ctx context.Context, docs []social.Document) error {
	for i := range docs {
		if len(docs[i].Embedding) == 0 {
			docs[i].Embedding = x.embedder.Embed(ctx, docs[i].Content)
		}
	}
	if err := x.memory.Add(ctx, docs); err != nil {
		return err
	}
	if x.degraded.Load() {
		return nil
	}
	if err := x.chroma.Add(ctx, docs); err != nil {
		x.fallback("add", err)
	}
	return nil
}

// Search queries the active store. A ChromaDB failure degrades to the
// in-memory mirror and retries there.
func (x *Index) Search(ctx context.Context, query []float32, topK int, threshold float64, filters *social.QueryFilters) ([]Match, error) {
	if !x.degraded.Load() {
		matches, err := x.chroma.Search(ctx, query, topK, threshold, filters)
		if err == nil {
			return matches, nil
		}
		x.fallback("search", err)
	}
	return x.memory.Search(ctx, query, topK, threshold, filters)
}

// SearchText embeds the query text and searches.
func (x *Index) SearchText(ctx context.Context, query string, topK int, threshold float64, filters *social.QueryFilters) ([]Match, error) {
	return x.Search(ctx, x.embedder.Embed(ctx, query), topK, threshold, filters)
}

// Count reports the number of indexed documents.
func (x *Index) Count(ctx context.Context) (int, error) {
	if !x.degraded.Load() {
		count, err := x.chroma.Count(ctx)
		if err == nil {
			return count, nil
		}
		x.fallback("count", err)
	}
	return x.memory.Count(ctx)
}

// GetByID resolves a document from the in-memory mirror.
func (x *Index) GetByID(id string) (social.Document, bool) {
	return x.memory.GetByID(id)
}

// Stats aggregates over the in-memory mirror, which holds every document
// added during this process regardless of backend.
func (x *Index) Stats() Stats {
	return x.memory.Stats()
}

// Clear empties both stores.
func (x *Index) Clear(ctx context.Context) error {
	if err := x.memory.Clear(ctx); err != nil {
		return err
	}
	if x.degraded.Load() {
		return nil
	}
	if err := x.chroma.Clear(ctx); err != nil {
		x.fallback("clear", err)
	}
	return nil
}

// Embedder exposes the embedding service for callers that need raw vectors.
func (x *Index) Embedder() *embedding.Service { return x.embedder }

func (x *Index) fallback(op string, err error) {
	if x.degraded.CompareAndSwap(false, true) {
		common.Logger().Warn("vector: chromadb failed, degrading to in-memory store",
			"op", op, "error", err)
	}
}
