package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/localnerve/livros/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler executes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload models.JSON) error

// ErrUnknownKind marks jobs that have no registered handler
var ErrUnknownKind = errors.New("no handler registered for job kind")

// Options tune a Worker. A running job whose reservation is older than
// VisibilityTimeout is taken to be abandoned and is reserved again; zero
// disables reclaiming.
type Options struct {
	Queue             string
	Concurrency       int
	Backoff           time.Duration
	PollInterval      time.Duration
	VisibilityTimeout time.Duration
}

// Worker reserves and runs jobs from one queue
type Worker struct {
	db       *gorm.DB
	opts     Options
	mu       sync.RWMutex
	handlers map[string]Handler
	now      func() time.Time
}

// NewWorker returns a worker for opts.Queue with defaults filled in
func NewWorker(db *gorm.DB, opts Options) *Worker {
	if opts.Queue == "" {
		opts.Queue = DefaultQueue
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Worker{
		db:       db,
		opts:     opts,
		handlers: make(map[string]Handler),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle registers h for jobs of kind
func (w *Worker) Handle(kind string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = h
}

// Run polls the queue with opts.Concurrency goroutines until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.Concurrency; i++ {
		id := i
		g.Go(func() error {
			return w.loop(ctx, id)
		})
	}
	return g.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) error {
	logger := zerolog.Ctx(ctx).With().Str("queue", w.opts.Queue).Int("worker", id).Logger()
	ctx = logger.WithContext(ctx)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	logger.Info().Msg("worker started")
	for {
		processed, err := w.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error().Err(err).Msg("run job")
		}
		if processed && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopped")
			return nil
		case <-ticker.C:
		}
	}
	logger.Info().Msg("worker stopped")
	return nil
}

// RunOnce reserves at most one ready job and runs it. It reports whether a
// job was processed. Handler failures are recorded on the job, not returned.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.reserve(ctx)
	if err != nil || job == nil {
		return false, err
	}

	logger := zerolog.Ctx(ctx).With().
		Uint64("job_id", job.ID).
		Str("kind", job.Kind).
		Int("attempt", job.Attempts).
		Logger()

	started := time.Now()
	runErr := w.execute(logger.WithContext(ctx), job)
	jobDuration.WithLabelValues(job.Queue, job.Kind).Observe(time.Since(started).Seconds())

	return true, w.finish(ctx, &logger, job, runErr)
}

// Drain runs ready jobs one after another until none is left
func (w *Worker) Drain(ctx context.Context) (int, error) {
	count := 0
	for {
		processed, err := w.RunOnce(ctx)
		if err != nil {
			return count, err
		}
		if !processed {
			return count, nil
		}
		count++
	}
}

// reserve claims the oldest ready job inside a transaction. Ready means
// pending and due, or running with an expired reservation.
func (w *Worker) reserve(ctx context.Context) (*models.Job, error) {
	var job *models.Job
	now := w.now()

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Job
		query := tx
		// the attempts guard on the claiming update keeps a job single-owner where
		// the dialect has no FOR UPDATE
		if tx.Dialector.Name() != "sqlserver" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if w.opts.VisibilityTimeout > 0 {
			query = query.Where("queue = ? AND ((status = ? AND available_at <= ?) OR (status = ? AND reserved_at <= ?))",
				w.opts.Queue, models.JobPending, now, models.JobRunning, now.Add(-w.opts.VisibilityTimeout))
		} else {
			query = query.Where("queue = ? AND status = ? AND available_at <= ?", w.opts.Queue, models.JobPending, now)
		}
		err := query.
			Order("available_at").
			Order("id").
			First(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		result := tx.Model(&models.Job{}).
			Where("id = ? AND status = ? AND attempts = ?", candidate.ID, candidate.Status, candidate.Attempts).
			Updates(map[string]interface{}{
				"status":      models.JobRunning,
				"attempts":    gorm.Expr("attempts + 1"),
				"reserved_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if candidate.Status == models.JobRunning {
			zerolog.Ctx(ctx).Warn().Uint64("job_id", candidate.ID).Msg("reclaimed job with expired reservation")
			jobsReclaimed.WithLabelValues(candidate.Queue, candidate.Kind).Inc()
		}
		candidate.Status = models.JobRunning
		candidate.Attempts++
		candidate.ReservedAt = &now
		job = &candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reserve job: %w", err)
	}
	return job, nil
}

func (w *Worker) execute(ctx context.Context, job *models.Job) (err error) {
	w.mu.RLock()
	handler, ok := w.handlers[job.Kind]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", job.Kind, ErrUnknownKind)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, job.Payload)
}

// finish records the outcome. Failed jobs go back to pending after
// attempts*Backoff, or to failed once attempts reach MaxAttempts. A job cut
// short by shutdown goes back to pending without spending the attempt.
func (w *Worker) finish(ctx context.Context, logger *zerolog.Logger, job *models.Job, runErr error) error {
	updates := map[string]interface{}{"reserved_at": nil}
	outcome := "done"

	switch {
	case runErr == nil:
		updates["status"] = models.JobDone
		updates["last_error"] = ""
	case ctx.Err() != nil:
		outcome = "interrupted"
		updates["status"] = models.JobPending
		updates["last_error"] = runErr.Error()
		updates["attempts"] = gorm.Expr("attempts - 1")
		updates["available_at"] = w.now()
	case job.Attempts >= job.MaxAttempts || errors.Is(runErr, ErrUnknownKind):
		outcome = models.JobFailed
		updates["status"] = models.JobFailed
		updates["last_error"] = runErr.Error()
	default:
		outcome = "retry"
		updates["status"] = models.JobPending
		updates["last_error"] = runErr.Error()
		updates["available_at"] = w.now().Add(time.Duration(job.Attempts) * w.opts.Backoff)
	}

	// outcome is recorded even when ctx is cancelled; a reservation that was
	// reclaimed by another worker is left to that worker
	result := w.db.WithContext(context.WithoutCancel(ctx)).
		Model(&models.Job{}).
		Where("id = ? AND status = ? AND attempts = ?", job.ID, models.JobRunning, job.Attempts).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("record job %d outcome: %w", job.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Warn().Msg("job reservation lost, outcome discarded")
		return nil
	}

	jobsProcessed.WithLabelValues(job.Queue, job.Kind, outcome).Inc()

	switch outcome {
	case "done":
		logger.Info().Msg("job done")
	case "retry":
		logger.Warn().Err(runErr).Interface("available_at", updates["available_at"]).Msg("job failed, retry scheduled")
	case "interrupted":
		logger.Warn().Err(runErr).Msg("job interrupted, returned to the queue")
	default:
		logger.Error().Err(runErr).Msg("job failed permanently")
	}
	return nil
}
