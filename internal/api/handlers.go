// File path: internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

func (s *Server) handleRAGQuery(w http.ResponseWriter, r *http.Request) {
	var query social.RAGQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(query.Query) == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.rag.Query(r.Context(), query))
}

func (s *Server) handleRAGIndex(w http.ResponseWriter, r *http.Request) {
	indexed, err := s.rag.IndexPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"indexedDocuments": indexed,
	})
}

func (s *Server) handleRAGStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rag.Stats(r.Context()))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trends": s.detector.GetTrendingTopics(limit),
	})
}

func (s *Server) handleTrendsAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := s.detector.Analyze(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrendDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	details := s.detector.GetTrendDetails(id)
	if details.Trend == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("trend %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handlePostSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("q is required"))
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts": s.catalog.SearchPosts(query, limit),
	})
}

func (s *Server) handleIngestTrigger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ingest.Trigger(r.Context()))
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ingest.Status())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": common.LogEntries(),
	})
}
