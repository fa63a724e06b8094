// File path: cmd/socialrag/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/api"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/indexer"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/ingest"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/llm"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/rag"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/scheduler"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/trends"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Warn("socialrag: .env file not loaded", "error", err)
	} else {
		logger.Info("socialrag: environment loaded from .env")
	}

	addr := flag.String("addr", "", "listen address (overrides configuration)")
	dbPath := flag.String("db", "", "path to the SQLite catalog (overrides configuration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("socialrag: configuration load failed", "error", err)
		fmt.Println("configuration error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*addr); trimmed != "" {
		cfg.Server.Addr = trimmed
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		cfg.Database.Path = trimmed
	}

	logger.Info("socialrag: startup initiated", "addr", cfg.Server.Addr, "db", cfg.Database.Path)

	catalog, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("socialrag: catalog initialization failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer catalog.Close()
	if catalog.Persistent() {
		logger.Info("socialrag: sqlite catalog ready", "path", cfg.Database.Path)
	} else {
		logger.Warn("socialrag: catalog running memory-only")
	}

	chroma := vector.NewChromaClient(ctx, cfg.Vector)
	if chroma.Available() {
		logger.Info("socialrag: chromadb available", "collection", cfg.Vector.Collection)
	} else {
		logger.Warn("socialrag: chromadb unreachable, retrieval runs in-memory", "collection", cfg.Vector.Collection)
	}

	embedder := embedding.NewService(cfg.Embedding)
	index := vector.NewIndex(embedder, chroma)
	ix := indexer.New(index, cfg.Embedding)
	generator := llm.NewService(cfg.Embedding.OpenAIKey, cfg.Generation)
	ragSvc := rag.NewService(index, catalog, ix, generator, cfg.Retrieval)
	detector := trends.NewDetector(catalog, cfg.Trends)
	ingestSvc := ingest.NewService(catalog, cfg.Ingestion)

	sched := scheduler.New(ingestSvc, ragSvc, detector, cfg.Ingestion.Interval, cfg.Trends.UpdateInterval)
	sched.Start(ctx)
	defer sched.Stop()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(ragSvc, detector, ingestSvc, catalog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("socialrag: server listening", "addr", cfg.Server.Addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", cfg.Server.Addr)
	reachable := cfg.Server.Addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("socialrag: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))

	select {
	case <-ctx.Done():
		logger.Info("socialrag: shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("socialrag: shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("socialrag: server stopped", "error", err)
			fmt.Println("server stopped:", err)
		}
	}
}
