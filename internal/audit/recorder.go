package audit

import (
	"context"
	"sync/atomic"
)

// defaultQueueSize bounds entries waiting for the writer.
const defaultQueueSize = 256

// Logger is the logging interface used by the recorder.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder queues entries and writes them serially from Run, so callers on
// the controller loop never wait on SQLite. Entries beyond the queue size
// are dropped.
type Recorder struct {
	repo    Repository
	queue   chan *Entry
	logger  Logger
	dropped atomic.Uint64
}

// NewRecorder wraps repo. A queueSize of zero uses the default.
func NewRecorder(repo Repository, queueSize int, logger Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{
		repo:   repo,
		queue:  make(chan *Entry, queueSize),
		logger: logger,
	}
}

// Record enqueues e. It never blocks and only fails on an invalid entry.
func (r *Recorder) Record(_ context.Context, e *Entry) error {
	if e.Action == "" || e.Subject == "" {
		return ErrInvalidEntry
	}
	select {
	case r.queue <- e:
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit queue full, dropping entry", "action", e.Action, "subject", e.Subject)
	}
	return nil
}

// Dropped returns how many entries were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run writes queued entries until ctx is cancelled, then drains what is
// left before returning.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case e := <-r.queue:
			r.write(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-r.queue:
					r.write(e)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(e *Entry) {
	// The caller's context may be gone by the time we get here.
	if err := r.repo.Record(context.Background(), e); err != nil {
		r.logger.Error("audit write failed", "action", e.Action, "subject", e.Subject, "error", err)
	}
}

// List reads through to the repository.
func (r *Recorder) List(ctx context.Context, filter Filter) (*ListResult, error) {
	return r.repo.List(ctx, filter)
}
