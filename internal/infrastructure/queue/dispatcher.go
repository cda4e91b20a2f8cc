package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/pkg/metrics"
)

const (
	defaultWorkers     = 8
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
	channelBuffer      = 256
)

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
	// DrainTimeout bounds how long Stop waits for buffered tasks.
	DrainTimeout time.Duration
}

// Dispatcher runs best-effort background tasks on a fixed set of workers.
// Tasks are routed by consistent hashing on their key, so tasks that share a
// key run one after another in enqueue order.
type Dispatcher struct {
	workers []chan ports.Task
	opts    Options
	log     zerolog.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher. Call Start before enqueueing.
func NewDispatcher(opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		workers: make([]chan ports.Task, opts.Workers),
		opts:    opts,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Tasks run with ctx; cancelling it
// aborts in-flight retries.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands t to the worker owning its key. It never blocks: when the
// worker's buffer is full or the dispatcher is stopped the task is dropped.
func (d *Dispatcher) Enqueue(t ports.Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.TasksTotal.WithLabelValues(t.Name, "dropped").Inc()
		return false
	}

	idx := d.shardIndex(t.Key)
	select {
	case d.workers[idx] <- t:
		metrics.TaskQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.TasksTotal.WithLabelValues(t.Name, "dropped").Inc()
		d.log.Warn().Str("task", t.Name).Str("key", t.Key).Int("worker_id", idx).Msg("task queue full, dropping task")
		return false
	}
}

// Stop refuses new tasks and waits for workers to drain their buffers, up
// to DrainTimeout.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d.opts.DrainTimeout):
		d.log.Warn().Dur("timeout", d.opts.DrainTimeout).Msg("dispatcher drain timed out")
	}
}

// shardIndex maps a task key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Task) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for t := range ch {
		metrics.TaskQueueDepth.WithLabelValues(label).Dec()
		d.run(ctx, id, t)
	}
}

func (d *Dispatcher) run(ctx context.Context, worker int, t ports.Task) {
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		start := time.Now()
		err := t.Run(ctx)
		metrics.TaskDuration.WithLabelValues(t.Name).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.TasksTotal.WithLabelValues(t.Name, "ok").Inc()
			return
		}

		if attempt == d.opts.MaxAttempts || ctx.Err() != nil {
			metrics.TasksTotal.WithLabelValues(t.Name, "failed").Inc()
			d.log.Warn().Err(err).
				Str("task", t.Name).
				Str("key", t.Key).
				Int("worker_id", worker).
				Int("attempts", attempt).
				Msg("task failed")
			return
		}

		metrics.TasksTotal.WithLabelValues(t.Name, "retry").Inc()
		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(attempt) * d.opts.Backoff):
		}
	}
}

// Inline runs every task synchronously in the caller's goroutine with a
// single attempt. It is used where no background workers are running, such
// as one-shot CLI commands.
type Inline struct {
	Log zerolog.Logger
}

func (q Inline) Enqueue(t ports.Task) bool {
	if err := t.Run(context.Background()); err != nil {
		q.Log.Warn().Err(err).Str("task", t.Name).Msg("inline task failed")
	}
	return true
}
