// File path: internal/indexer/indexer.go
package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/vector"
)

// Indexer turns posts into embedded chunk documents and loads them into the
// vector index.
type Indexer struct {
	index        *vector.Index
	chunkSize    int
	chunkOverlap int
}

func New(index *vector.Index, cfg config.EmbeddingConfig) *Indexer {
	return &Indexer{
		index:        index,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

// IndexPosts chunks and indexes every post, returning the number of documents
// written. Posts with empty content are skipped.
func (ix *Indexer) IndexPosts(ctx context.Context, posts []social.Post) (int, error) {
	var docs []social.Document
	for _, post := range posts {
		docs = append(docs, ix.documentsFor(post)...)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := ix.index.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("index %d documents: %w", len(docs), err)
	}
	common.Logger().Info("indexer: posts indexed", "posts", len(posts), "documents", len(docs))
	return len(docs), nil
}

func (ix *Indexer) documentsFor(post social.Post) []social.Document {
	chunks := chunkText(post.Content, ix.chunkSize, ix.chunkOverlap)
	docs := make([]social.Document, 0, len(chunks))
	for n, chunk := range chunks {
		docs = append(docs, social.Document{
			ID:      fmt.Sprintf("%s_chunk_%d", post.ID, n),
			Content: chunk,
			Metadata: social.DocumentMetadata{
				PostID:    post.ID,
				Platform:  post.Platform,
				Timestamp: post.Timestamp,
				Author:    post.Author,
				URL:       post.URL,
				Hashtags:  post.Hashtags,
				Sentiment: post.SentimentOrNeutral(),
			},
		})
	}
	return docs
}

// chunkText splits text into windows of at most size characters with the
// given overlap. Windows prefer to break on the last space, provided the
// break lands past the midpoint of the window; otherwise the cut is hard.
// Blank chunks are dropped.
func chunkText(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		size = 512
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) <= size {
		return []string{strings.TrimSpace(text)}
	}
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		} else {
			window := string(runes[start:end])
			// LastIndex yields a byte offset; the midpoint rule compares
			// rune counts, so convert before deciding to back off.
			if cut := strings.LastIndex(window, " "); cut >= 0 {
				if runeCut := len([]rune(window[:cut])); runeCut > size/2 {
					end = start + runeCut
				}
			}
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
