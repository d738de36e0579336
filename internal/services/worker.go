package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(applicationID uuid.UUID)
}

type worker struct {
	appRepo      repositories.ApplicationRepository
	pipeline     PipelineService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	pollBatch    int
	wg           sync.WaitGroup
	stopOnce     sync.Once
	stopChan     chan struct{}
}

func NewWorker(
	appRepo repositories.ApplicationRepository,
	pipeline PipelineService,
	cfg config.WorkerConfig,
) Worker {
	return &worker{
		appRepo:      appRepo,
		pipeline:     pipeline,
		jobQueue:     make(chan uuid.UUID, cfg.QueueSize),
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		pollBatch:    cfg.PollBatch,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker. Pipelines run detached from ctx's cancellation so
// a shutdown signal cannot fail them halfway; Stop is what ends the workers.
func (w *worker) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	slog.InfoContext(ctx, "🚀 Starting worker", "concurrency", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollSubmitted(ctx)
	}

	slog.InfoContext(ctx, "✅ Worker started successfully")
}

// Stop implements Worker. In-flight pipelines finish before it returns.
func (w *worker) Stop() {
	slog.Info("🛑 Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	slog.Info("✅ Worker stopped")
}

// EnqueueJob implements Worker. A full queue drops the ID; the poller picks
// the application up again while it is still submitted.
func (w *worker) EnqueueJob(applicationID uuid.UUID) {
	select {
	case <-w.stopChan:
		slog.Warn("⚠️ Worker stopped, cannot enqueue application", "application_id", applicationID)
	case w.jobQueue <- applicationID:
		slog.Debug("📥 Application enqueued", "application_id", applicationID)
	default:
		slog.Warn("⚠️ Job queue full, leaving application for the poller", "application_id", applicationID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			slog.Debug("👷 Worker stopped", "worker", workerID)
			return
		case applicationID := <-w.jobQueue:
			slog.DebugContext(ctx, "👷 Worker picked up application", "worker", workerID, "application_id", applicationID)
			if err := w.pipeline.ProcessSubmitted(ctx, applicationID); err != nil {
				slog.ErrorContext(ctx, "❌ Worker failed to process application",
					"worker", workerID,
					"application_id", applicationID,
					"error", err,
				)
			}
		}
	}
}

func (w *worker) pollSubmitted(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			apps, err := w.appRepo.FindSubmitted(ctx, w.pollBatch)
			if err != nil {
				slog.WarnContext(ctx, "⚠️ Failed to fetch submitted applications", "error", err)
				continue
			}

			if len(apps) > 0 {
				slog.InfoContext(ctx, "📋 Found submitted applications", "count", len(apps))
			}

			for _, app := range apps {
				w.EnqueueJob(app.ID)
			}
		}
	}
}
