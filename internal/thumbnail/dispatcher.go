package thumbnail

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"assetvault/internal/logging"
)

// Recorder persists a generated thumbnail path against an asset.
type Recorder interface {
	SetThumbnailPath(ctx context.Context, id int64, path string) error
}

// Job asks for a preview of one asset's stored file.
type Job struct {
	AssetID    int64
	SourcePath string
	MimeType   string
}

// Dispatcher runs thumbnail jobs on a fixed worker pool and records each
// result. Enqueue never blocks the caller; a full queue drops the job, which
// a later regenerate pass picks up.
type Dispatcher struct {
	gen      *Generator
	recorder Recorder
	logger   *slog.Logger
	workers  int

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup
	once   sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher starts workers goroutines pulling from a queue of queueSize.
func NewDispatcher(gen *Generator, recorder Recorder, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		gen:      gen,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "thumbnail-dispatcher"),
		workers:  workers,
		jobs:     make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		if d.ctx.Err() != nil {
			continue
		}
		d.Process(d.ctx, job)
	}
	d.logger.Debug("thumbnail worker stopped", logging.Int("worker", id))
}

// Enqueue hands a job to the pool. It reports false when the queue is full or
// the dispatcher has shut down.
func (d *Dispatcher) Enqueue(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		d.logger.Warn("thumbnail queue full, job dropped",
			logging.Int64(logging.FieldAssetID, job.AssetID),
			logging.Int("queue_size", cap(d.jobs)),
		)
		return false
	}
}

// Process generates a preview for job and records it. It returns the stored
// thumbnail path, or "" when nothing was produced or recorded.
func (d *Dispatcher) Process(ctx context.Context, job Job) string {
	path := d.gen.Generate(ctx, job.SourcePath, job.MimeType, job.AssetID)
	if path == "" {
		return ""
	}
	if err := d.recorder.SetThumbnailPath(ctx, job.AssetID, path); err != nil {
		d.logger.Warn("record thumbnail path failed",
			logging.Int64(logging.FieldAssetID, job.AssetID),
			logging.Error(err),
		)
		_ = d.gen.Remove(job.AssetID)
		return ""
	}
	return path
}

// RegenerateResult counts the outcome of a Regenerate pass.
type RegenerateResult struct {
	Generated int
	Failed    int
}

// Regenerate processes jobs synchronously with at most the pool's worker
// count running at once. Only context cancellation is returned as an error;
// per-asset failures are counted.
func (d *Dispatcher) Regenerate(ctx context.Context, jobs []Job) (RegenerateResult, error) {
	var generated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if d.Process(gctx, job) == "" {
				failed.Add(1)
			} else {
				generated.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	result := RegenerateResult{Generated: int(generated.Load()), Failed: int(failed.Load())}
	d.logger.Info("thumbnail regeneration finished",
		logging.Int("requested", len(jobs)),
		logging.Int("generated", result.Generated),
		logging.Int("failed", result.Failed),
	)
	return result, err
}

// Shutdown stops accepting jobs, lets queued jobs drain, and waits for the
// workers. Canceling ctx abandons the remaining queue.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			d.cancel()
			<-done
		}
		d.cancel()
	})
}
