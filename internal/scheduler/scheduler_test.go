// File path: internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/config"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/embedding"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/indexer"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/ingest"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/llm"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/rag"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/store"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/trends"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/vector"
)

func newScheduler(t *testing.T, ingestInterval, trendsInterval time.Duration) (*Scheduler, *ingest.Service) {
	t.Helper()
	catalog, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	embedCfg := config.EmbeddingConfig{Dimensions: 16, ChunkSize: 512, ChunkOverlap: 50}
	index := vector.NewIndex(embedding.NewLocalService(embedCfg.Dimensions), nil)
	generator := llm.NewService("", config.GenerationConfig{Model: "gpt-4o-mini", MaxTokens: 500, Temperature: 0.7})
	ragSvc := rag.NewService(index, catalog, indexer.New(index, embedCfg), generator,
		config.RetrievalConfig{TopK: 5, SimilarityThreshold: 0.3})
	detector := trends.NewDetector(catalog, config.TrendsConfig{
		MinMentions: 2, TimeWindow: 24 * time.Hour, UpdateInterval: time.Minute, CrossPlatformRatio: 0.3,
	})
	// All platforms disabled: cycles run without touching the network.
	ingestSvc := ingest.NewService(catalog, config.IngestionConfig{})
	return New(ingestSvc, ragSvc, detector, ingestInterval, trendsInterval), ingestSvc
}

func TestSchedulerRunsCycles(t *testing.T) {
	sched, ingestSvc := newScheduler(t, 10*time.Millisecond, 10*time.Millisecond)
	sched.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ingestSvc.Status().LastUpdate != "Never" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	sched.Stop()

	if ingestSvc.Status().LastUpdate == "Never" {
		t.Fatal("no ingestion cycle ran before the deadline")
	}
}

func TestSchedulerDisabledLoops(t *testing.T) {
	sched, ingestSvc := newScheduler(t, 0, 0)
	sched.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	sched.Stop()

	if ingestSvc.Status().LastUpdate != "Never" {
		t.Fatal("disabled scheduler still ran a cycle")
	}
}

func TestSchedulerStopIsIdempotentBeforeStart(t *testing.T) {
	sched, _ := newScheduler(t, time.Hour, time.Hour)
	sched.Stop()
}
