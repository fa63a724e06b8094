// File path: internal/vector/chroma.go
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

var (
	errNotFound = errors.New("resource not found")
	errConflict = errors.New("resource conflict")
)

// ChromaClient talks to a ChromaDB instance over its v1 HTTP API. Startup
// failures leave the client constructed but unavailable; callers fall back to
// the in-memory store.
type ChromaClient struct {
	httpClient *http.Client
	transport  *http.Transport

	baseURL    string
	collection string

	mu           sync.RWMutex
	collectionID string
	available    bool
}

// NewChromaClient probes the configured ChromaDB instance and resolves the
// collection. A probe failure is logged, not returned; the client simply
// reports unavailable.
func NewChromaClient(ctx context.Context, cfg config.VectorConfig) *ChromaClient {
	logger := common.Logger()
	logger.Info("vector: initializing chromadb client",
		"host", cfg.Host, "port", cfg.Port, "collection", cfg.Collection)

	transport := &http.Transport{
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	client := &ChromaClient{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		transport:  transport,
		baseURL:    fmt.Sprintf("%s://%s:%s/api/v1", cfg.Scheme, cfg.Host, cfg.Port),
		collection: cfg.Collection,
	}
	if err := client.ensureReady(ctx); err != nil {
		logger.Warn("vector: chromadb unavailable, using in-memory store",
			"collection", cfg.Collection, "error", err)
		return client
	}
	logger.Info("vector: chromadb connection established")
	return client
}

func (c *ChromaClient) Available() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

func (c *ChromaClient) ensureReady(ctx context.Context) error {
	if c == nil {
		return errors.New("chromadb client not configured")
	}
	c.mu.RLock()
	ready := c.available && c.collectionID != ""
	c.mu.RUnlock()
	if ready {
		return nil
	}
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = c.heartbeat(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 250 * time.Millisecond):
		}
	}
	if err != nil {
		c.setAvailable(false)
		return err
	}
	if err = c.ensureCollectionID(ctx); err != nil {
		c.setAvailable(false)
		return err
	}
	c.setAvailable(true)
	return nil
}

func (c *ChromaClient) setAvailable(v bool) {
	c.mu.Lock()
	c.available = v
	c.mu.Unlock()
}

// Add upserts the documents with their embeddings and flattened metadata.
// Older ChromaDB builds lack the upsert endpoint, so a not-found answer
// retries against add.
func (c *ChromaClient) Add(ctx context.Context, docs []social.Document) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	embeddings := make([][]float32, 0, len(docs))
	contents := make([]string, 0, len(docs))
	metadatas := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		ids = append(ids, doc.ID)
		embeddings = append(embeddings, doc.Embedding)
		contents = append(contents, doc.Content)
		metadatas = append(metadatas, metadataFromDocument(doc.Metadata))
	}
	payload := map[string]interface{}{
		"ids":        ids,
		"documents":  contents,
		"metadatas":  metadatas,
		"embeddings": embeddings,
	}
	endpoint := fmt.Sprintf("%s/collections/%s/upsert", c.baseURL, url.PathEscape(c.collectionIDLocked()))
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, nil); err != nil {
		if errors.Is(err, errNotFound) {
			fallback := fmt.Sprintf("%s/collections/%s/add", c.baseURL, url.PathEscape(c.collectionIDLocked()))
			return c.doRequest(ctx, http.MethodPost, fallback, payload, nil)
		}
		return err
	}
	return nil
}

// Search runs a nearest-neighbor query, converts distances to similarities
// with 1/(1+distance), and applies the similarity threshold client-side.
// Platform, date and sentiment filters translate to a where clause; keyword
// filtering happens on the returned contents.
func (c *ChromaClient) Search(ctx context.Context, query []float32, topK int, threshold float64, filters *social.QueryFilters) ([]Match, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}
	body := map[string]interface{}{
		"query_embeddings": [][]float32{query},
		"n_results":        topK,
	}
	if where := whereFromFilters(filters); where != nil {
		body["where"] = where
	}
	endpoint := fmt.Sprintf("%s/collections/%s/query", c.baseURL, url.PathEscape(c.collectionIDLocked()))
	var resp struct {
		IDs       [][]string                 `json:"ids"`
		Distances [][]float64                `json:"distances"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Documents [][]string                 `json:"documents"`
	}
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	matches := make([]Match, 0, len(resp.IDs[0]))
	for idx, id := range resp.IDs[0] {
		doc := social.Document{ID: id}
		if len(resp.Documents) > 0 && idx < len(resp.Documents[0]) {
			doc.Content = resp.Documents[0][idx]
		}
		if len(resp.Metadatas) > 0 && idx < len(resp.Metadatas[0]) {
			doc.Metadata = documentMetadata(resp.Metadatas[0][idx])
		}
		similarity := 0.0
		if len(resp.Distances) > 0 && idx < len(resp.Distances[0]) {
			similarity = 1.0 / (1.0 + resp.Distances[0][idx])
		}
		if similarity < threshold {
			continue
		}
		if !matchesKeywords(doc.Content, filters) {
			continue
		}
		matches = append(matches, Match{Document: doc, Similarity: similarity})
	}
	return matches, nil
}

func (c *ChromaClient) Count(ctx context.Context) (int, error) {
	if err := c.ensureReady(ctx); err != nil {
		return 0, err
	}
	endpoint := fmt.Sprintf("%s/collections/%s/count", c.baseURL, url.PathEscape(c.collectionIDLocked()))
	var count int
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Clear deletes and recreates the collection.
func (c *ChromaClient) Clear(ctx context.Context) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/collections/%s", c.baseURL, url.PathEscape(c.collection))
	if err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil && !errors.Is(err, errNotFound) {
		return err
	}
	c.mu.Lock()
	c.collectionID = ""
	c.mu.Unlock()
	return c.ensureCollectionID(ctx)
}

// Close releases pooled connections.
func (c *ChromaClient) Close() error {
	if c == nil {
		return nil
	}
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}

func (c *ChromaClient) collectionIDLocked() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collectionID
}

func (c *ChromaClient) ensureCollectionID(ctx context.Context) error {
	c.mu.RLock()
	id := c.collectionID
	c.mu.RUnlock()
	if id != "" {
		return nil
	}
	id, err := c.findCollection(ctx, c.collection)
	if err != nil {
		return err
	}
	if id == "" {
		id, err = c.createCollection(ctx, c.collection)
		if err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.collectionID = id
	c.mu.Unlock()
	return nil
}

func (c *ChromaClient) findCollection(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/collections?name=%s", c.baseURL, url.QueryEscape(name))
	var resp struct {
		Collections []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return "", nil
		}
		// Some builds reject the name filter; enumerate instead.
		endpoint = fmt.Sprintf("%s/collections", c.baseURL)
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
			return "", err
		}
	}
	for _, col := range resp.Collections {
		if strings.EqualFold(col.Name, name) {
			return col.ID, nil
		}
	}
	return "", nil
}

func (c *ChromaClient) createCollection(ctx context.Context, name string) (string, error) {
	payload := map[string]interface{}{
		"name":     name,
		"metadata": map[string]interface{}{"hnsw:space": "cosine"},
	}
	endpoint := fmt.Sprintf("%s/collections", c.baseURL)
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		if errors.Is(err, errConflict) {
			return c.findCollection(ctx, name)
		}
		return "", err
	}
	return resp.ID, nil
}

func (c *ChromaClient) heartbeat(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/heartbeat", c.baseURL), nil, nil)
}

func (c *ChromaClient) doRequest(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if c == nil {
		return errors.New("chromadb client not configured")
	}
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode == http.StatusConflict {
		return errConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chromadb %s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// metadataFromDocument flattens chunk metadata to the scalar map ChromaDB
// accepts. Hashtags are joined with commas; timestamps stored as RFC 3339
// strings so range filters compare lexicographically.
func metadataFromDocument(meta social.DocumentMetadata) map[string]interface{} {
	out := map[string]interface{}{
		"postId":    meta.PostID,
		"platform":  string(meta.Platform),
		"timestamp": meta.Timestamp.UTC().Format(time.RFC3339),
		"author":    meta.Author,
		"url":       meta.URL,
		"sentiment": meta.Sentiment,
	}
	if len(meta.Hashtags) > 0 {
		out["hashtags"] = strings.Join(meta.Hashtags, ",")
	}
	return out
}

func documentMetadata(payload map[string]interface{}) social.DocumentMetadata {
	meta := social.DocumentMetadata{}
	if v, ok := payload["postId"].(string); ok {
		meta.PostID = v
	}
	if v, ok := payload["platform"].(string); ok {
		meta.Platform = social.Platform(v)
	}
	if v, ok := payload["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			meta.Timestamp = ts
		}
	}
	if v, ok := payload["author"].(string); ok {
		meta.Author = v
	}
	if v, ok := payload["url"].(string); ok {
		meta.URL = v
	}
	if v, ok := payload["hashtags"].(string); ok && v != "" {
		meta.Hashtags = strings.Split(v, ",")
	}
	if v, ok := payload["sentiment"].(float64); ok {
		meta.Sentiment = v
	}
	return meta
}

// whereFromFilters translates the structured filters to a ChromaDB where
// clause. Keywords are excluded; they filter on content after retrieval.
func whereFromFilters(filters *social.QueryFilters) map[string]interface{} {
	if filters == nil {
		return nil
	}
	var clauses []map[string]interface{}
	if len(filters.Platforms) > 0 {
		platforms := make([]string, 0, len(filters.Platforms))
		for _, p := range filters.Platforms {
			platforms = append(platforms, string(p))
		}
		clauses = append(clauses, map[string]interface{}{
			"platform": map[string]interface{}{"$in": platforms},
		})
	}
	if filters.DateRange != nil {
		clauses = append(clauses, map[string]interface{}{
			"timestamp": map[string]interface{}{"$gte": filters.DateRange.Start.UTC().Format(time.RFC3339)},
		})
		clauses = append(clauses, map[string]interface{}{
			"timestamp": map[string]interface{}{"$lte": filters.DateRange.End.UTC().Format(time.RFC3339)},
		})
	}
	if filters.Sentiment != nil {
		clauses = append(clauses, map[string]interface{}{
			"sentiment": map[string]interface{}{"$gte": filters.Sentiment.Min},
		})
		clauses = append(clauses, map[string]interface{}{
			"sentiment": map[string]interface{}{"$lte": filters.Sentiment.Max},
		})
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return map[string]interface{}{"$and": clauses}
	}
}

func matchesKeywords(content string, filters *social.QueryFilters) bool {
	if filters == nil || len(filters.Keywords) == 0 {
		return true
	}
	lowered := strings.ToLower(content)
	for _, keyword := range filters.Keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

var _ Store = (*ChromaClient)(nil)
