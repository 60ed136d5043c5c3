package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of background work. All work in this service is file
// driven, so a task names the file it operates on rather than carrying an
// opaque payload.
type Task struct {
	ID        string
	Kind      string
	FilePath  string
	Attempt   int
	Submitted time.Time
}

// HandlerFunc executes one task. Returning an error schedules a retry until
// the attempt budget runs out.
type HandlerFunc func(context.Context, Task) error

// Options tunes the worker pool.
type Options struct {
	Workers     int
	QueueDepth  int
	MaxAttempts int
	Backoff     time.Duration
	Logger      *zap.Logger
}

// Runner dispatches submitted tasks across a fixed pool of goroutines.
type Runner struct {
	name    string
	handle  HandlerFunc
	workers int
	retries int
	backoff time.Duration
	logger  *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewRunner builds a runner around the handler. Zero options fall back to a
// single worker with three attempts per task.
func NewRunner(name string, handle HandlerFunc, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = opts.Workers * 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		name:    name,
		handle:  handle,
		workers: opts.Workers,
		retries: opts.MaxAttempts,
		backoff: opts.Backoff,
		logger:  opts.Logger,
		tasks:   make(chan Task, opts.QueueDepth),
	}
}

// Start spins up the worker pool. Calling Start twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	r.running = true
	r.logger.Info("task runner started",
		zap.String("runner", r.name), zap.Int("workers", r.workers))
}

// Shutdown stops the pool and blocks until in-flight tasks return.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Info("task runner stopped", zap.String("runner", r.name))
}

// Submit hands a task to the pool. It blocks while the queue is full and
// fails once the runner has been shut down or never started.
func (r *Runner) Submit(task Task) error {
	r.mu.Lock()
	ctx := r.ctx
	running := r.running
	r.mu.Unlock()

	if !running {
		return fmt.Errorf("runner %s is not running", r.name)
	}
	if task.Submitted.IsZero() {
		task.Submitted = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("runner %s shut down: %w", r.name, ctx.Err())
	case r.tasks <- task:
		return nil
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case task := <-r.tasks:
			if err := r.handle(r.ctx, task); err != nil {
				r.retry(task, err)
			}
		}
	}
}

// retry re-submits a failed task after a linear backoff, off the worker
// goroutine so a failing task never stalls its siblings.
func (r *Runner) retry(task Task, cause error) {
	task.Attempt++
	if task.Attempt >= r.retries {
		r.logger.Error("task exhausted its attempts",
			zap.String("runner", r.name), zap.String("task_id", task.ID),
			zap.String("kind", task.Kind), zap.Error(cause))
		return
	}
	r.logger.Warn("task failed, scheduling retry",
		zap.String("runner", r.name), zap.String("task_id", task.ID),
		zap.String("kind", task.Kind), zap.Int("attempt", task.Attempt), zap.Error(cause))

	delay := time.Duration(task.Attempt) * r.backoff
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
		case <-timer.C:
			if err := r.Submit(task); err != nil {
				r.logger.Error("failed to requeue task",
					zap.String("runner", r.name), zap.String("task_id", task.ID), zap.Error(err))
			}
		}
	}()
}
