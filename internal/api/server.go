// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/ingest"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/rag"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/trends"
)

// Server exposes the RAG, trend and ingestion services over HTTP.
type Server struct {
	router   chi.Router
	rag      *rag.Service
	detector *trends.Detector
	ingest   *ingest.Service
	catalog  *store.Catalog
}

func NewServer(ragSvc *rag.Service, detector *trends.Detector, ingestSvc *ingest.Service, catalog *store.Catalog) *Server {
	srv := &Server{
		router:   chi.NewRouter(),
		rag:      ragSvc,
		detector: detector,
		ingest:   ingestSvc,
		catalog:  catalog,
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/api/rag/query", s.handleRAGQuery)
	s.router.Post("/api/rag/index", s.handleRAGIndex)
	s.router.Get("/api/rag/stats", s.handleRAGStats)
	s.router.Get("/api/trends", s.handleTrends)
	s.router.Post("/api/trends/analyze", s.handleTrendsAnalyze)
	s.router.Get("/api/trends/{id}", s.handleTrendDetails)
	s.router.Get("/api/posts/search", s.handlePostSearch)
	s.router.Post("/api/ingest", s.handleIngestTrigger)
	s.router.Get("/api/ingest/status", s.handleIngestStatus)
	s.router.Get("/api/logs", s.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
