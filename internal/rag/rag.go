// File path: internal/rag/rag.go
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/indexer"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/llm"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/vector"
)

const (
	noResultsAnswer = "I couldn't find any relevant information about that topic in the current social media data. Please try a different query or check back later as new data is continuously being ingested."
	errorAnswer     = "I encountered an error while processing your query. Please try again or rephrase your question."

	sourcePreviewLen = 200
	indexingPostCap  = 1000
)

// Stats summarizes the retrieval corpus.
type Stats struct {
	TotalDocuments int    `json:"totalDocuments"`
	TotalPosts     int    `json:"totalPosts"`
	LastIndexed    string `json:"lastIndexed"`
}

// Service orchestrates the query pipeline: embed, retrieve, resolve posts,
// build context, generate, attribute. A query always produces a response;
// pipeline failures surface as a low-confidence answer.
type Service struct {
	index     *vector.Index
	catalog   *store.Catalog
	indexer   *indexer.Indexer
	generator *llm.Service
	retrieval config.RetrievalConfig
}

func NewService(index *vector.Index, catalog *store.Catalog, ix *indexer.Indexer, generator *llm.Service, retrieval config.RetrievalConfig) *Service {
	return &Service{
		index:     index,
		catalog:   catalog,
		indexer:   ix,
		generator: generator,
		retrieval: retrieval,
	}
}

// Query answers a question over the indexed social media corpus.
func (s *Service) Query(ctx context.Context, query social.RAGQuery) (response social.RAGResponse) {
	logger := common.Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("rag: query panicked", "panic", r)
			response = social.RAGResponse{Answer: errorAnswer, Sources: []social.Source{}, Confidence: 0.0}
		}
	}()
	logger.Info("rag: processing query", "query", query.Query)

	topK := query.Limit
	if topK <= 0 {
		topK = s.retrieval.TopK
	}
	matches, err := s.index.SearchText(ctx, query.Query, topK, s.retrieval.SimilarityThreshold, query.Filters)
	if err != nil {
		logger.Error("rag: retrieval failed", "error", err)
		return social.RAGResponse{Answer: errorAnswer, Sources: []social.Source{}, Confidence: 0.0}
	}
	logger.Info("rag: documents retrieved", "count", len(matches))

	if len(matches) == 0 {
		return social.RAGResponse{Answer: noResultsAnswer, Sources: []social.Source{}, Confidence: 0.1}
	}

	// Resolve the originating posts; matches whose post has been purged are
	// dropped from context and attribution but still count toward confidence.
	type resolved struct {
		match vector.Match
		post  social.Post
	}
	resolvedMatches := make([]resolved, 0, len(matches))
	for _, match := range matches {
		post, ok := s.catalog.GetPostByID(match.Document.Metadata.PostID)
		if !ok {
			continue
		}
		resolvedMatches = append(resolvedMatches, resolved{match: match, post: post})
	}

	contextParts := make([]string, 0, len(resolvedMatches))
	sources := make([]social.Source, 0, len(resolvedMatches))
	for i, rm := range resolvedMatches {
		contextParts = append(contextParts, formatSource(i+1, rm.post, rm.match.Document.Content))
		sources = append(sources, social.Source{
			PostID:         rm.post.ID,
			Platform:       rm.post.Platform,
			Content:        preview(rm.post.Content),
			URL:            rm.post.URL,
			RelevanceScore: rm.match.Similarity,
		})
	}

	answer := s.generator.GenerateAnswer(ctx, query.Query, strings.Join(contextParts, "\n\n"))

	var totalSimilarity float64
	for _, match := range matches {
		totalSimilarity += match.Similarity
	}
	confidence := totalSimilarity / float64(len(matches)) * 1.2
	if confidence > 1.0 {
		confidence = 1.0
	}

	logger.Info("rag: query completed", "sources", len(sources), "confidence", fmt.Sprintf("%.2f", confidence))
	return social.RAGResponse{Answer: answer, Sources: sources, Confidence: confidence}
}

// IndexPosts chunks and indexes the most recent posts from the catalog.
func (s *Service) IndexPosts(ctx context.Context) (int, error) {
	posts := s.catalog.GetPosts(store.PostFilters{Limit: indexingPostCap})
	common.Logger().Info("rag: indexing posts", "posts", len(posts))
	return s.indexer.IndexPosts(ctx, posts)
}

// Stats reports corpus size for the status endpoint.
func (s *Service) Stats(ctx context.Context) Stats {
	count, err := s.index.Count(ctx)
	if err != nil {
		common.Logger().Error("rag: stats failed", "error", err)
		return Stats{LastIndexed: "Error"}
	}
	return Stats{
		TotalDocuments: count,
		TotalPosts:     s.catalog.TotalPosts(),
		LastIndexed:    time.Now().UTC().Format(time.RFC3339),
	}
}

// formatSource renders one retrieved chunk with its post context in the
// layout the generator's prompt expects.
func formatSource(n int, post social.Post, chunk string) string {
	sentiment := "neutral"
	if post.Sentiment != nil {
		sentiment = fmt.Sprintf("%.0f%% positive", *post.Sentiment*100)
	}
	return fmt.Sprintf(`[Source %d] Platform: %s
Author: %s
Timestamp: %s
Content: %s
Hashtags: %s
Sentiment: %s
URL: %s
---`,
		n,
		strings.ToUpper(string(post.Platform)),
		post.Author,
		post.Timestamp.UTC().Format(time.RFC3339),
		chunk,
		strings.Join(post.Hashtags, ", "),
		sentiment,
		post.URL,
	)
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= sourcePreviewLen {
		return content
	}
	return string(runes[:sourcePreviewLen]) + "..."
}
