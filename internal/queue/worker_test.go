package queue

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/livros/internal/models"
	"github.com/localnerve/livros/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type greeting struct {
	Name string `json:"name"`
}

func loadJob(t *testing.T, db *gorm.DB, id uint64) models.Job {
	t.Helper()
	var job models.Job
	require.NoError(t, db.First(&job, id).Error)
	return job
}

func TestEnqueueAndRunOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	q := New(db, "", 3)
	job, err := q.Enqueue(ctx, "greet", greeting{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, DefaultQueue, job.Queue)
	assert.Equal(t, models.JobPending, job.Status)
	assert.Equal(t, 3, job.MaxAttempts)

	var got greeting
	w := NewWorker(db, Options{})
	w.Handle("greet", func(ctx context.Context, payload models.JSON) error {
		return payload.Decode(&got)
	})

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, "Ana", got.Name)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobDone, stored.Status)
	assert.Equal(t, 1, stored.Attempts)

	processed, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRetryUntilDeadLetter(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "imports", 3).Enqueue(ctx, "flaky", greeting{})
	require.NoError(t, err)

	var calls atomic.Int32
	w := NewWorker(db, Options{Queue: "imports"})
	w.Handle("flaky", func(context.Context, models.JSON) error {
		calls.Add(1)
		return errors.New("storage unavailable")
	})

	count, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.EqualValues(t, 3, calls.Load())

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobFailed, stored.Status)
	assert.Equal(t, 3, stored.Attempts)
	assert.Equal(t, "storage unavailable", stored.LastError)
}

func TestRetryWaitsForBackoff(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "", 2).Enqueue(ctx, "flaky", greeting{})
	require.NoError(t, err)

	fail := true
	w := NewWorker(db, Options{Backoff: time.Minute})
	w.Handle("flaky", func(context.Context, models.JSON) error {
		if fail {
			fail = false
			return errors.New("try again")
		}
		return nil
	})

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobPending, stored.Status)
	assert.Equal(t, "try again", stored.LastError)

	processed, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "job must not run before its backoff elapses")

	w.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	processed, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored = loadJob(t, db, job.ID)
	assert.Equal(t, models.JobDone, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.Empty(t, stored.LastError)
}

func TestUnknownKindFailsImmediately(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "", 5).Enqueue(ctx, "missing", greeting{})
	require.NoError(t, err)

	processed, err := NewWorker(db, Options{}).RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobFailed, stored.Status)
	assert.Contains(t, stored.LastError, "no handler registered")
}

func TestPanicIsRecordedAsFailure(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "", 1).Enqueue(ctx, "boom", greeting{})
	require.NoError(t, err)

	w := NewWorker(db, Options{})
	w.Handle("boom", func(context.Context, models.JSON) error {
		panic("nil map")
	})

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobFailed, stored.Status)
	assert.Contains(t, stored.LastError, "nil map")
}

func TestQueuesAreIsolated(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := New(db, "other", 1).Enqueue(ctx, "greet", greeting{})
	require.NoError(t, err)

	w := NewWorker(db, Options{Queue: "imports"})
	w.Handle("greet", func(context.Context, models.JSON) error { return nil })

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRunProcessesUntilCancelled(t *testing.T) {
	db := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(db, Options{PollInterval: 10 * time.Millisecond})
	var done atomic.Int32
	w.Handle("greet", func(context.Context, models.JSON) error {
		done.Add(1)
		return nil
	})

	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	q := New(db, "", 1)
	for i := 0; i < 3; i++ {
		_, err := q.Enqueue(context.Background(), "greet", greeting{})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return done.Load() == 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRetryDeadLetter(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	q := New(db, "", 1)
	job, err := q.Enqueue(ctx, "flaky", greeting{})
	require.NoError(t, err)

	assert.ErrorIs(t, q.Retry(ctx, job.ID), ErrNotFailed)

	fail := true
	w := NewWorker(db, Options{})
	w.Handle("flaky", func(context.Context, models.JSON) error {
		if fail {
			fail = false
			return errors.New("down")
		}
		return nil
	})

	_, err = w.Drain(ctx)
	require.NoError(t, err)

	failed, err := q.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, job.ID, failed[0].ID)

	require.NoError(t, q.Retry(ctx, job.ID))
	count, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobDone, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
}

func TestReclaimsExpiredReservation(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "", 3).Enqueue(ctx, "greet", greeting{Name: "Ana"})
	require.NoError(t, err)

	// a worker that reserved the job and died before recording the outcome
	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":      models.JobRunning,
		"attempts":    1,
		"reserved_at": stale,
	}).Error)

	var runs atomic.Int32
	handler := func(context.Context, models.JSON) error {
		runs.Add(1)
		return nil
	}

	noReclaim := NewWorker(db, Options{})
	noReclaim.Handle("greet", handler)
	processed, err := noReclaim.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "reclaiming is off without a visibility timeout")

	fresh := NewWorker(db, Options{VisibilityTimeout: 2 * time.Hour})
	fresh.Handle("greet", handler)
	processed, err = fresh.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "reservation has not expired yet")

	w := NewWorker(db, Options{VisibilityTimeout: 10 * time.Minute})
	w.Handle("greet", handler)
	processed, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.EqualValues(t, 1, runs.Load())

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobDone, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.Nil(t, stored.ReservedAt)
}

func TestLostReservationDoesNotOverwriteOutcome(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	job, err := New(db, "", 3).Enqueue(ctx, "slow", greeting{})
	require.NoError(t, err)

	w := NewWorker(db, Options{VisibilityTimeout: time.Minute})
	w.Handle("slow", func(context.Context, models.JSON) error {
		// another worker reclaims and finishes the job meanwhile
		return db.Model(&models.Job{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":   models.JobDone,
			"attempts": 2,
		}).Error
	})

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobDone, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
}

func TestShutdownDoesNotSpendAttempt(t *testing.T) {
	db := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job, err := New(db, "", 1).Enqueue(ctx, "long", greeting{})
	require.NoError(t, err)

	w := NewWorker(db, Options{Backoff: time.Hour})
	w.Handle("long", func(ctx context.Context, _ models.JSON) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	processed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored := loadJob(t, db, job.ID)
	assert.Equal(t, models.JobPending, stored.Status, "last attempt is not dead-lettered")
	assert.Equal(t, 0, stored.Attempts)
	assert.Nil(t, stored.ReservedAt)
	assert.False(t, stored.AvailableAt.After(time.Now().UTC()), "no backoff after shutdown")
	assert.Contains(t, stored.LastError, "context canceled")
}

func TestRunLogsStepErrors(t *testing.T) {
	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var logs bytes.Buffer
	ctx, cancel := context.WithCancel(zerolog.New(&logs).WithContext(context.Background()))

	w := NewWorker(db, Options{PollInterval: 10 * time.Millisecond})
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-errc)

	assert.Contains(t, logs.String(), `"message":"run job"`)
	assert.Contains(t, logs.String(), "reserve job: ")
}
