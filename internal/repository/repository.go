package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lingo-server/internal/models"
)

// DBTX abstracts the subset of pgx used by repositories so that methods can
// run either on the pool or inside an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LanguageRepository resolves languages by code.
type LanguageRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Language, error)
}

// WordRepository reads vocabulary from the catalog.
type WordRepository interface {
	Find(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
	// FindByTexts returns words of the given language whose text matches one
	// of the provided strings exactly. Unmatched texts are simply absent from
	// the result.
	FindByTexts(ctx context.Context, tx DBTX, texts []string, languageID uuid.UUID) ([]models.Word, error)
}

// CriteriaRepository stores generation criteria.
type CriteriaRepository interface {
	Create(ctx context.Context, criteria *models.GenerationCriteria) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationCriteria, error)
	List(ctx context.Context, creatorID uuid.UUID) ([]models.GenerationCriteria, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobRepository manages generation job rows and their status transitions.
type JobRepository interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationJob, error)
	ListByStatus(ctx context.Context, status models.JobStatus, limit int) ([]models.GenerationJob, error)
	// NextPending returns the oldest pending job, or models.ErrNotFound.
	NextPending(ctx context.Context) (*models.GenerationJob, error)
	// Claim atomically moves a pending job to running. It returns false when
	// the job was no longer pending, which means another worker got there
	// first.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkCompleted finishes a running job. models.ErrJobNotRunning is
	// returned when the row is not in the running state anymore.
	MarkCompleted(ctx context.Context, id uuid.UUID, storyID uuid.UUID) error
	// MarkFailed finishes a running job with a failure reason. rawPayload, if
	// non-nil, is preserved in result_payload for later inspection.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, rawPayload *string) error
	// RequeueStale resets running jobs whose updated_at is older than the
	// cutoff back to pending and returns how many rows were reset.
	RequeueStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// StoryRepository persists stories and their word usages. Write methods take
// a DBTX so the persister can compose them inside one transaction.
type StoryRepository interface {
	Create(ctx context.Context, tx DBTX, story *models.Story) error
	CreateWordUsages(ctx context.Context, tx DBTX, usages []models.StoryWordUsage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	GetWithUsages(ctx context.Context, id uuid.UUID) (*models.StoryWithUsages, error)
}
