package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/models"
	"lingo-server/internal/repository"
)

const maxWordCount = 50

// GenerationService is the API-facing facade over criteria, jobs and
// stories.
type GenerationService struct {
	criteria  repository.CriteriaRepository
	jobs      repository.JobRepository
	stories   repository.StoryRepository
	languages repository.LanguageRepository
	selector  WordSelector
	logger    *zap.Logger
}

func NewGenerationService(
	criteria repository.CriteriaRepository,
	jobs repository.JobRepository,
	stories repository.StoryRepository,
	languages repository.LanguageRepository,
	selector WordSelector,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		criteria:  criteria,
		jobs:      jobs,
		stories:   stories,
		languages: languages,
		selector:  selector,
		logger:    logger.Named("generation_service"),
	}
}

func validateCriteriaParams(params models.CriteriaParams) error {
	if strings.TrimSpace(params.LanguageCode) == "" {
		return fmt.Errorf("%w: language is required", models.ErrValidation)
	}
	if strings.TrimSpace(params.DifficultyLevel) == "" {
		return fmt.Errorf("%w: difficultyLevel is required", models.ErrValidation)
	}
	if params.WordCount < 1 {
		return fmt.Errorf("%w: wordCount must be at least 1", models.ErrValidation)
	}
	if params.WordCount > maxWordCount {
		return fmt.Errorf("%w: wordCount must not exceed %d", models.ErrValidation, maxWordCount)
	}
	return nil
}

// CreateCriteria validates and stores new generation criteria.
func (s *GenerationService) CreateCriteria(ctx context.Context, name string, description *string, params models.CriteriaParams, creatorID uuid.UUID) (*models.GenerationCriteria, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if err := validateCriteriaParams(params); err != nil {
		return nil, err
	}
	if _, err := s.languages.GetByCode(ctx, params.LanguageCode); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown language %q", models.ErrValidation, params.LanguageCode)
		}
		return nil, err
	}

	criteria := &models.GenerationCriteria{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Params:      params,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.criteria.Create(ctx, criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

func (s *GenerationService) GetCriteria(ctx context.Context, id uuid.UUID) (*models.GenerationCriteria, error) {
	return s.criteria.GetByID(ctx, id)
}

func (s *GenerationService) ListCriteria(ctx context.Context, creatorID uuid.UUID) ([]models.GenerationCriteria, error) {
	return s.criteria.List(ctx, creatorID)
}

func (s *GenerationService) DeleteCriteria(ctx context.Context, id uuid.UUID) error {
	return s.criteria.Delete(ctx, id)
}

// EnqueueJob creates a pending job for existing criteria. The worker pool
// picks it up asynchronously.
func (s *GenerationService) EnqueueJob(ctx context.Context, criteriaID uuid.UUID, userID uuid.UUID) (*models.GenerationJob, error) {
	if _, err := s.criteria.GetByID(ctx, criteriaID); err != nil {
		return nil, err
	}

	job := &models.GenerationJob{
		ID:         uuid.New(),
		CriteriaID: criteriaID,
		UserID:     userID,
		Status:     models.JobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("criteria_id", criteriaID.String()),
		zap.String("user_id", userID.String()))
	return job, nil
}

func (s *GenerationService) GetJob(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *GenerationService) ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationJob, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.jobs.ListByUser(ctx, userID, limit)
}

// ListJobsByStatus serves operational views that inspect the queue as a
// whole rather than a single user's history.
func (s *GenerationService) ListJobsByStatus(ctx context.Context, status models.JobStatus, limit int) ([]models.GenerationJob, error) {
	switch status {
	case models.JobStatusPending, models.JobStatusRunning, models.JobStatusCompleted, models.JobStatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.jobs.ListByStatus(ctx, status, limit)
}

func (s *GenerationService) GetStory(ctx context.Context, id uuid.UUID) (*models.StoryWithUsages, error) {
	return s.stories.GetWithUsages(ctx, id)
}

// SampleWords serves practice modes that need a random vocabulary subset.
func (s *GenerationService) SampleWords(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	if strings.TrimSpace(filter.LanguageCode) == "" {
		return nil, fmt.Errorf("%w: language is required", models.ErrValidation)
	}
	if strings.TrimSpace(filter.DifficultyLevel) == "" {
		return nil, fmt.Errorf("%w: difficultyLevel is required", models.ErrValidation)
	}
	if filter.Limit < 1 || filter.Limit > maxWordCount {
		filter.Limit = 10
	}
	return s.selector.Sample(ctx, filter)
}
