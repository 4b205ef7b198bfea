// Package export runs spreadsheet exports of the catalog on a small
// in-process job queue.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// State is the lifecycle position of a job.
type State string

const (
	StatePending State = "PENDING"
	StateStarted State = "STARTED"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
)

var (
	ErrQueueFull = errors.New("export: queue full")
	ErrClosed    = errors.New("export: queue closed")
	ErrNotFound  = errors.New("export: job not found")
	ErrBadFile   = errors.New("export: invalid file name")
)

// FileExt is appended to the job id to name the produced workbook.
const FileExt = ".xlsx"

// Status describes a job. File is set once the job succeeded.
type Status struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
	// FinishedAt is set when the job reaches SUCCESS or FAILURE.
	FinishedAt time.Time `json:"-"`
}

// Ready reports whether the workbook can be downloaded.
func (s Status) Ready() bool {
	return s.State == StateSuccess
}

func (s Status) terminal() bool {
	return s.State == StateSuccess || s.State == StateFailure
}

// Config controls where workbooks go and how many run at once.
type Config struct {
	DataDir   string
	Workers   int
	QueueSize int
	// Retention is how long a finished job stays pollable. Workbooks on
	// disk are not removed.
	Retention time.Duration
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{DataDir: "data", Workers: 2, QueueSize: 64, Retention: time.Hour}
}

type job struct {
	id      string
	payload []byte
}

// RenderFunc writes the workbook for payload to path.
type RenderFunc func(path string, payload []byte) error

// Option configures a Queue.
type Option func(*Queue)

func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithClock replaces the time source used for retention.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithRenderer replaces the workbook writer.
func WithRenderer(render RenderFunc) Option {
	return func(q *Queue) {
		if render != nil {
			q.render = render
		}
	}
}

// Queue accepts export jobs and runs them on a fixed set of workers.
// Pending and running jobs are tracked until they finish; finished jobs are
// forgotten once Config.Retention has passed.
type Queue struct {
	cfg      Config
	logger   *zap.Logger
	render   RenderFunc
	now      func() time.Time
	jobs     chan job
	statuses *xsync.MapOf[string, Status]

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewQueue creates a stopped queue. Call Start to run workers.
func NewQueue(cfg Config, opts ...Option) *Queue {
	def := DefaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}

	q := &Queue{
		cfg:      cfg,
		logger:   zap.NewNop(),
		render:   renderCatalog,
		now:      time.Now,
		jobs:     make(chan job, cfg.QueueSize),
		statuses: xsync.NewMapOf[string, Status](),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start creates the data directory and launches the workers. Workers stop
// when ctx is done or the queue is closed.
func (q *Queue) Start(ctx context.Context) error {
	if err := os.MkdirAll(q.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("export: create data dir: %w", err)
	}

	q.startOnce.Do(func() {
		for i := 0; i < q.cfg.Workers; i++ {
			q.wg.Add(1)
			go q.worker(ctx)
		}
	})
	return nil
}

// Submit enqueues payload and returns the job id without waiting.
func (q *Queue) Submit(ctx context.Context, payload []byte) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return "", ErrClosed
	}
	q.prune()

	id := uuid.NewString()
	q.statuses.Store(id, Status{ID: id, State: StatePending})

	select {
	case q.jobs <- job{id: id, payload: payload}:
		return id, nil
	case <-ctx.Done():
		q.statuses.Delete(id)
		return "", ctx.Err()
	default:
		q.statuses.Delete(id)
		return "", ErrQueueFull
	}
}

// Poll returns the current status of a job.
func (q *Queue) Poll(ctx context.Context, id string) (Status, error) {
	st, ok := q.statuses.Load(id)
	if !ok {
		return Status{}, ErrNotFound
	}
	if q.expired(st) {
		q.statuses.Delete(id)
		return Status{}, ErrNotFound
	}
	return st, nil
}

func (q *Queue) expired(st Status) bool {
	return st.terminal() && q.now().Sub(st.FinishedAt) >= q.cfg.Retention
}

// prune drops finished jobs older than the retention period.
func (q *Queue) prune() {
	q.statuses.Range(func(id string, st Status) bool {
		if q.expired(st) {
			q.statuses.Delete(id)
		}
		return true
	})
}

// Len reports how many jobs are currently tracked.
func (q *Queue) Len() int {
	return q.statuses.Size()
}

// FilePath resolves a workbook name inside the data directory. Names that
// would escape it are rejected.
func (q *Queue) FilePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") || !strings.HasSuffix(name, FileExt) {
		return "", ErrBadFile
	}
	return filepath.Join(q.cfg.DataDir, name), nil
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			q.run(j)
		}
	}
}

func (q *Queue) run(j job) {
	q.statuses.Store(j.id, Status{ID: j.id, State: StateStarted})

	name := j.id + FileExt
	path := filepath.Join(q.cfg.DataDir, name)

	if err := q.render(path, j.payload); err != nil {
		q.logger.Error("export job failed", zap.String("job_id", j.id), zap.Error(err))
		q.statuses.Store(j.id, Status{ID: j.id, State: StateFailure, Error: err.Error(), FinishedAt: q.now()})
		return
	}

	q.logger.Info("export job finished", zap.String("job_id", j.id), zap.String("file", path))
	q.statuses.Store(j.id, Status{ID: j.id, State: StateSuccess, File: name, FinishedAt: q.now()})
}

func renderCatalog(path string, payload []byte) error {
	menus, err := DecodeCatalog(payload)
	if err != nil {
		return err
	}
	return WriteWorkbook(path, menus)
}
