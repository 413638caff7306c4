package services

import (
	"context"
	"fmt"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Queue        string            `json:"queue"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every check passed
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck pings the database and reports the import backlog
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	logger := zerolog.Ctx(ctx)
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		logger.Error().Err(err).Msg("health check failed: database connection")
		return result
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		logger.Error().Err(err).Msg("health check failed: database ping")
		return result
	}
	result.Database = "ok"
	result.Details["database_type"] = cfg.DBType
	result.Details["database_name"] = cfg.DBDatabase

	var pending, failed int64
	err = db.WithContext(ctx).Model(&models.Job{}).Where("status = ?", models.JobPending).Count(&pending).Error
	if err == nil {
		err = db.WithContext(ctx).Model(&models.Job{}).Where("status = ?", models.JobFailed).Count(&failed).Error
	}
	if err != nil {
		result.Status = "unhealthy"
		result.Queue = "error"
		result.Details["queue_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Queue inspection failed: %v", err)
		logger.Error().Err(err).Msg("health check failed: queue")
		return result
	}
	result.Queue = "ok"
	result.Details["jobs_pending"] = fmt.Sprintf("%d", pending)
	result.Details["jobs_failed"] = fmt.Sprintf("%d", failed)

	logger.Debug().Int64("pending", pending).Int64("failed", failed).Msg("health check passed")
	return result
}
