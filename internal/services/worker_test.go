package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/repositories"
	"alfredoptarigan/screenly/internal/testutil"
)

type recordingPipeline struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (p *recordingPipeline) Process(ctx context.Context, id uuid.UUID) error {
	return p.ProcessSubmitted(ctx, id)
}

func (p *recordingPipeline) ProcessSubmitted(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return nil
}

func (p *recordingPipeline) seen(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, got := range p.ids {
		if got == id {
			return true
		}
	}
	return false
}

func TestWorkerProcessesQueue(t *testing.T) {
	db := testutil.NewDB(t)
	pipeline := &recordingPipeline{}
	w := NewWorker(repositories.NewApplicationRepository(db), pipeline, config.WorkerConfig{
		Concurrency: 2,
		QueueSize:   4,
		PollBatch:   10,
	})

	w.Start(context.Background())
	defer w.Stop()

	id := uuid.New()
	w.EnqueueJob(id)

	assert.Eventually(t, func() bool { return pipeline.seen(id) }, time.Second, 5*time.Millisecond)
}

func TestWorkerPollsSubmitted(t *testing.T) {
	db := testutil.NewDB(t)
	app := testutil.SeedApplication(t, db, "Analyst")
	pipeline := &recordingPipeline{}
	w := NewWorker(repositories.NewApplicationRepository(db), pipeline, config.WorkerConfig{
		Concurrency:  1,
		QueueSize:    4,
		PollInterval: 10 * time.Millisecond,
		PollBatch:    10,
	})

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool { return pipeline.seen(app.ID) }, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	w := NewWorker(nil, &recordingPipeline{}, config.WorkerConfig{Concurrency: 1, QueueSize: 1, PollBatch: 1})
	w.Start(context.Background())

	w.Stop()
	w.Stop()
	w.EnqueueJob(uuid.New())
}

// blockingPipeline holds each run open until release is closed and records
// the context error seen when the run finishes.
type blockingPipeline struct {
	started chan uuid.UUID
	release chan struct{}
	mu      sync.Mutex
	errs    []error
}

func (p *blockingPipeline) Process(ctx context.Context, id uuid.UUID) error {
	return p.ProcessSubmitted(ctx, id)
}

func (p *blockingPipeline) ProcessSubmitted(ctx context.Context, id uuid.UUID) error {
	p.started <- id
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, ctx.Err())
	return nil
}

func TestWorkerRunsSurviveStartContextCancel(t *testing.T) {
	pipeline := &blockingPipeline{started: make(chan uuid.UUID, 1), release: make(chan struct{})}
	w := NewWorker(nil, pipeline, config.WorkerConfig{Concurrency: 1, QueueSize: 1, PollBatch: 1})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	id := uuid.New()
	w.EnqueueJob(id)
	assert.Equal(t, id, <-pipeline.started)

	cancel()

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight run finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(pipeline.release)
	<-stopped

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	assert.Equal(t, []error{nil}, pipeline.errs)
}
