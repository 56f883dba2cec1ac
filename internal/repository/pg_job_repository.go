package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

const (
	createJobSQL = `
		INSERT INTO generation_jobs (id, criteria_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	getJobByIDSQL = `
		SELECT id, criteria_id, user_id, story_id, status, result_payload, failure_reason, created_at, updated_at
		FROM generation_jobs
		WHERE id = $1
	`

	listJobsByUserSQL = `
		SELECT id, criteria_id, user_id, story_id, status, result_payload, failure_reason, created_at, updated_at
		FROM generation_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	listJobsByStatusSQL = `
		SELECT id, criteria_id, user_id, story_id, status, result_payload, failure_reason, created_at, updated_at
		FROM generation_jobs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	nextPendingJobSQL = `
		SELECT id, criteria_id, user_id, story_id, status, result_payload, failure_reason, created_at, updated_at
		FROM generation_jobs
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT 1
	`

	claimJobSQL = `
		UPDATE generation_jobs
		SET status = 'running', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	completeJobSQL = `
		UPDATE generation_jobs
		SET status = 'completed', story_id = $2, failure_reason = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	failJobSQL = `
		UPDATE generation_jobs
		SET status = 'failed', failure_reason = $2, result_payload = COALESCE($3, result_payload), updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	requeueStaleJobsSQL = `
		UPDATE generation_jobs
		SET status = 'pending', updated_at = NOW()
		WHERE status = 'running' AND updated_at < $1
	`
)

type postgresJobRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresJobRepository(db *pgxpool.Pool, logger *zap.Logger) JobRepository {
	return &postgresJobRepository{
		db:     db,
		logger: logger.Named("job_repo"),
	}
}

func (r *postgresJobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	_, err := r.db.Exec(ctx, createJobSQL,
		job.ID,
		job.CriteriaID,
		job.UserID,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("Job created",
		zap.String("job_id", job.ID.String()),
		zap.String("criteria_id", job.CriteriaID.String()))
	return nil
}

func (r *postgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	job, err := scanJob(r.db.QueryRow(ctx, getJobByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

func (r *postgresJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationJob, error) {
	rows, err := r.db.Query(ctx, listJobsByUserSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for user %s: %w", userID, err)
	}
	return collectJobs(rows)
}

func (r *postgresJobRepository) ListByStatus(ctx context.Context, status models.JobStatus, limit int) ([]models.GenerationJob, error) {
	rows, err := r.db.Query(ctx, listJobsByStatusSQL, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs with status %s: %w", status, err)
	}
	return collectJobs(rows)
}

func (r *postgresJobRepository) NextPending(ctx context.Context) (*models.GenerationJob, error) {
	job, err := scanJob(r.db.QueryRow(ctx, nextPendingJobSQL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch next pending job: %w", err)
	}
	return job, nil
}

func (r *postgresJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, claimJobSQL, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim job %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, storyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, completeJobSQL, id, storyID)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrJobNotRunning
	}

	r.logger.Info("Job completed",
		zap.String("job_id", id.String()),
		zap.String("story_id", storyID.String()))
	return nil
}

func (r *postgresJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, rawPayload *string) error {
	tag, err := r.db.Exec(ctx, failJobSQL, id, reason, rawPayload)
	if err != nil {
		return fmt.Errorf("failed to fail job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrJobNotRunning
	}

	r.logger.Warn("Job failed",
		zap.String("job_id", id.String()),
		zap.String("reason", reason))
	return nil
}

func (r *postgresJobRepository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, requeueStaleJobsSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectJobs(rows pgx.Rows) ([]models.GenerationJob, error) {
	defer rows.Close()

	var jobs []models.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*models.GenerationJob, error) {
	job := &models.GenerationJob{}
	err := row.Scan(
		&job.ID,
		&job.CriteriaID,
		&job.UserID,
		&job.StoryID,
		&job.Status,
		&job.ResultPayload,
		&job.FailureReason,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
