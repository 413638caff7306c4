// queue.go
//
// Book outline service: books with nested index trees, JSON and XML import
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of livros.
// livros is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// livros is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with livros.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package queue is a database backed job queue. Jobs are rows in the jobs
// table; workers reserve them with row locks, run the registered handler and
// record the outcome, retrying with a linear backoff until max attempts.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/livros/internal/models"
	"gorm.io/gorm"
)

// DefaultQueue is the queue name used when none is configured
const DefaultQueue = "default"

// ErrNotFailed is returned when retrying a job that is not dead-lettered
var ErrNotFailed = errors.New("job is not in the failed state")

// Queue enqueues jobs onto one named queue
type Queue struct {
	DB          *gorm.DB
	Name        string
	MaxAttempts int
}

// New returns a queue named name
func New(db *gorm.DB, name string, maxAttempts int) *Queue {
	if name == "" {
		name = DefaultQueue
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{DB: db, Name: name, MaxAttempts: maxAttempts}
}

// Enqueue stores a pending job of kind with payload marshalled as JSON
func (q *Queue) Enqueue(ctx context.Context, kind string, payload interface{}) (*models.Job, error) {
	body, err := models.NewJSON(payload)
	if err != nil {
		return nil, err
	}

	job := models.Job{
		Queue:       q.Name,
		Kind:        kind,
		Payload:     body,
		Status:      models.JobPending,
		MaxAttempts: q.MaxAttempts,
		AvailableAt: time.Now().UTC(),
	}
	if err := q.DB.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}

	jobsEnqueued.WithLabelValues(q.Name, kind).Inc()
	return &job, nil
}

// Failed lists dead-lettered jobs, oldest first
func (q *Queue) Failed(ctx context.Context) ([]models.Job, error) {
	var failed []models.Job
	err := q.DB.WithContext(ctx).
		Where("queue = ? AND status = ?", q.Name, models.JobFailed).
		Order("id").
		Find(&failed).Error
	return failed, err
}

// Retry puts a failed job back on the queue with a fresh attempt budget
func (q *Queue) Retry(ctx context.Context, id uint64) error {
	result := q.DB.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND queue = ? AND status = ?", id, q.Name, models.JobFailed).
		Updates(map[string]interface{}{
			"status":       models.JobPending,
			"attempts":     0,
			"available_at": time.Now().UTC(),
			"reserved_at":  nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFailed)
	}
	return nil
}
