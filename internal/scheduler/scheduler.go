// File path: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/common"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/ingest"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/rag"
	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/trends"
)

// Scheduler drives the periodic background work: ingesting fresh posts,
// re-indexing them for retrieval, and refreshing trend analysis. A cycle
// that is still running when its next tick fires is skipped, not queued.
type Scheduler struct {
	ingest   *ingest.Service
	rag      *rag.Service
	detector *trends.Detector

	ingestInterval time.Duration
	trendsInterval time.Duration

	ingestBusy atomic.Bool
	trendsBusy atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(ingestSvc *ingest.Service, ragSvc *rag.Service, detector *trends.Detector, ingestInterval, trendsInterval time.Duration) *Scheduler {
	return &Scheduler{
		ingest:         ingestSvc,
		rag:            ragSvc,
		detector:       detector,
		ingestInterval: ingestInterval,
		trendsInterval: trendsInterval,
	}
}

// Start launches the background loops. An interval of zero or less disables
// the corresponding loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	logger := common.Logger()
	if s.ingestInterval > 0 {
		s.wg.Add(1)
		go s.loop(ctx, "ingestion", s.ingestInterval, s.runIngestion)
		logger.Info("scheduler: ingestion loop started", "interval", s.ingestInterval)
	}
	if s.trendsInterval > 0 {
		s.wg.Add(1)
		go s.loop(ctx, "trends", s.trendsInterval, s.runTrends)
		logger.Info("scheduler: trend analysis loop started", "interval", s.trendsInterval)
	}
}

// Stop cancels the loops and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, run func(ctx context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *Scheduler) runIngestion(ctx context.Context) {
	if !s.ingestBusy.CompareAndSwap(false, true) {
		common.Logger().Warn("scheduler: ingestion cycle still running, skipping tick")
		return
	}
	defer s.ingestBusy.Store(false)

	runID := uuid.NewString()
	logger := common.Logger()
	logger.Info("scheduler: ingestion cycle starting", "run", runID)
	start := time.Now()

	status := s.ingest.Trigger(ctx)
	indexed, err := s.rag.IndexPosts(ctx)
	if err != nil {
		logger.Error("scheduler: re-indexing failed", "run", runID, "error", err)
	}
	logger.Info("scheduler: ingestion cycle finished",
		"run", runID, "posts", status.TotalPosts, "indexed", indexed,
		"errors", len(status.Errors), "dur", time.Since(start))
}

func (s *Scheduler) runTrends(ctx context.Context) {
	if !s.trendsBusy.CompareAndSwap(false, true) {
		common.Logger().Warn("scheduler: trend analysis still running, skipping tick")
		return
	}
	defer s.trendsBusy.Store(false)

	runID := uuid.NewString()
	logger := common.Logger()
	start := time.Now()

	result, err := s.detector.Analyze(ctx)
	if err != nil {
		logger.Error("scheduler: trend analysis failed", "run", runID, "error", err)
		return
	}
	logger.Info("scheduler: trend analysis finished",
		"run", runID, "trends", len(result.Trends), "dur", time.Since(start))
}
