// internal/repository/job_repository.go
package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// PrintJobRepository stores the print-job history
type PrintJobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	ListRecent(ctx context.Context, limit int) ([]*model.PrintJob, error)
	CountByOutcome(ctx context.Context) (succeeded, failed int64, err error)
}

// printJobRepository implements PrintJobRepository
type printJobRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPrintJobRepository creates a new print job repository
func NewPrintJobRepository(db *database.DB, logger *zap.Logger) PrintJobRepository {
	return &printJobRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a print attempt
func (r *printJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	query := `
		INSERT INTO print_jobs (
			id, order_number, connection_type, byte_count,
			success, message, error_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.OrderNumber, job.ConnectionType, job.ByteCount,
		job.Success, job.Message, job.ErrorCode, job.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to record print job", zap.Error(err))
		return fmt.Errorf("failed to record print job: %w", err)
	}

	return nil
}

// ListRecent returns the newest jobs first
func (r *printJobRepository) ListRecent(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, order_number, connection_type, byte_count,
			   success, message, error_code, created_at
		FROM print_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.PrintJob
	for rows.Next() {
		job := &model.PrintJob{}
		err := rows.Scan(
			&job.ID, &job.OrderNumber, &job.ConnectionType, &job.ByteCount,
			&job.Success, &job.Message, &job.ErrorCode, &job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate print jobs: %w", err)
	}

	return jobs, nil
}

// CountByOutcome returns totals for the health view
func (r *printJobRepository) CountByOutcome(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE NOT success)
		FROM print_jobs
	`

	var succeeded, failed int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&succeeded, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count print jobs: %w", err)
	}

	return succeeded, failed, nil
}
