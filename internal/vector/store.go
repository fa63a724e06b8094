// File path: internal/vector/store.go
package vector

import (
	"context"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

// Match pairs a stored document with its similarity to a query vector.
type Match struct {
	Document   social.Document `json:"document"`
	Similarity float64         `json:"similarity"`
}

// Store is the vector index contract. Every added document must carry a
// non-empty embedding; populating it is the caller's responsibility (the
// Index wrapper does this before delegating).
type Store interface {
	Add(ctx context.Context, docs []social.Document) error
	Search(ctx context.Context, query []float32, topK int, threshold float64, filters *social.QueryFilters) ([]Match, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Stats summarizes the locally held documents.
type Stats struct {
	TotalDocuments    int                     `json:"totalDocuments"`
	PlatformBreakdown map[social.Platform]int `json:"platformBreakdown"`
	AvgSentiment      float64                 `json:"avgSentiment"`
}
