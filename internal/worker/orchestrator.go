package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/config"
	"lingo-server/internal/models"
	"lingo-server/internal/repository"
	"lingo-server/internal/service"
)

// Orchestrator drives a single job through the generation pipeline: claim,
// select words, call the provider, parse, persist and finish.
type Orchestrator struct {
	cfg       *config.Config
	jobs      repository.JobRepository
	criteria  repository.CriteriaRepository
	languages repository.LanguageRepository
	selector  service.WordSelector
	aiClient  service.AIClient
	persister service.StoryPersister
	notifier  service.Notifier
	logger    *zap.Logger
}

func NewOrchestrator(
	cfg *config.Config,
	jobs repository.JobRepository,
	criteria repository.CriteriaRepository,
	languages repository.LanguageRepository,
	selector service.WordSelector,
	aiClient service.AIClient,
	persister service.StoryPersister,
	notifier service.Notifier,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		jobs:      jobs,
		criteria:  criteria,
		languages: languages,
		selector:  selector,
		aiClient:  aiClient,
		persister: persister,
		notifier:  notifier,
		logger:    logger.Named("orchestrator"),
	}
}

// ProcessNext claims and executes the oldest pending job. It returns false
// when the queue was empty, which tells the poller to back off.
func (o *Orchestrator) ProcessNext(ctx context.Context) (bool, error) {
	job, err := o.jobs.NextPending(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	claimed, err := o.jobs.Claim(ctx, job.ID)
	if err != nil {
		return true, err
	}
	if !claimed {
		// Another worker got there first. There may be more pending rows.
		jobsLost.Inc()
		o.logger.Debug("Job claimed by another worker", zap.String("job_id", job.ID.String()))
		return true, nil
	}

	jobsClaimed.Inc()
	o.Execute(ctx, job)
	return true, nil
}

// Execute runs the pipeline for an already claimed job. All terminal
// outcomes are written to the job row; the returned control flow never
// bubbles pipeline errors to the poller.
func (o *Orchestrator) Execute(ctx context.Context, job *models.GenerationJob) {
	startTime := time.Now()
	logger := o.logger.With(zap.String("job_id", job.ID.String()))
	logger.Info("Processing job", zap.String("criteria_id", job.CriteriaID.String()))

	criteria, err := o.criteria.GetByID(ctx, job.CriteriaID)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("failed to load criteria: %v", err), nil)
		return
	}

	language, err := o.languages.GetByCode(ctx, criteria.Params.LanguageCode)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("failed to resolve language %q: %v", criteria.Params.LanguageCode, err), nil)
		return
	}

	words, err := o.selector.Select(ctx, criteria.Params)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientWords) {
			o.failJob(ctx, job, models.FailureReasonNoVocabulary, nil)
			return
		}
		o.failJob(ctx, job, fmt.Sprintf("word selection failed: %v", err), nil)
		return
	}

	prompt := service.BuildStoryPrompt(criteria.Params, words)

	raw, usage, err := o.generateWithRetry(ctx, job.ID.String(), prompt)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("generation failed: %v", err), nil)
		return
	}
	logger.Debug("Generation finished",
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Float64("estimated_cost_usd", usage.EstimatedCostUSD))

	parsed, err := service.ParseStoryResponse(raw)
	if err != nil {
		o.failJob(ctx, job, models.FailureReasonMalformedResponse, &raw)
		return
	}

	story, err := o.persistWithRetry(ctx, criteria, parsed, language.ID, job.UserID)
	if err != nil {
		o.failJob(ctx, job, fmt.Sprintf("persistence failed: %v", err), &raw)
		return
	}

	if err := o.jobs.MarkCompleted(ctx, job.ID, story.ID); err != nil {
		if errors.Is(err, models.ErrJobNotRunning) {
			// The sweep requeued the job while we were working. The story is
			// already committed; the rerun will produce another one. Abandon
			// this run rather than fight over the row.
			jobsAbandoned.Inc()
			logger.Warn("Job left running state mid-flight, abandoning result",
				zap.String("story_id", story.ID.String()))
			return
		}
		logger.Error("Failed to mark job completed", zap.Error(err))
		return
	}

	jobsSucceeded.Inc()
	jobDuration.Observe(time.Since(startTime).Seconds())
	logger.Info("Job completed",
		zap.String("story_id", story.ID.String()),
		zap.Duration("duration", time.Since(startTime)))

	o.notify(ctx, service.JobUpdate{
		JobID:   job.ID,
		UserID:  job.UserID,
		Status:  models.JobStatusCompleted,
		StoryID: &story.ID,
	})
}

// generateWithRetry calls the provider with bounded retries. Unavailable and
// rejected responses back off exponentially with jitter; malformed responses
// are not retried because repeating the same prompt will not fix them.
func (o *Orchestrator) generateWithRetry(ctx context.Context, jobID string, prompt string) (string, service.UsageInfo, error) {
	baseDelay := o.cfg.AIBaseRetryDelay
	var lastErr error

	for attempt := 1; attempt <= o.cfg.AIMaxAttempts; attempt++ {
		raw, usage, err := o.aiClient.GenerateText(ctx, prompt)
		if err == nil {
			return raw, usage, nil
		}
		lastErr = err

		if errors.Is(err, service.ErrProviderMalformed) {
			return "", service.UsageInfo{}, err
		}
		if ctx.Err() != nil {
			return "", service.UsageInfo{}, ctx.Err()
		}

		o.logger.Warn("Provider call failed",
			zap.String("job_id", jobID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.cfg.AIMaxAttempts),
			zap.Error(err))

		if attempt == o.cfg.AIMaxAttempts {
			break
		}

		delay := float64(baseDelay) * math.Pow(2, float64(attempt-1))
		jitter := delay * 0.1
		delay += jitter * (rand.Float64()*2 - 1)
		waitDuration := time.Duration(delay)
		if waitDuration < baseDelay {
			waitDuration = baseDelay
		}

		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			return "", service.UsageInfo{}, ctx.Err()
		}
	}

	return "", service.UsageInfo{}, lastErr
}

// persistWithRetry retries the transaction once. A second failure is
// terminal for this run.
func (o *Orchestrator) persistWithRetry(
	ctx context.Context,
	criteria *models.GenerationCriteria,
	parsed *service.ParsedStory,
	languageID, authorID uuid.UUID,
) (*models.Story, error) {
	story, err := o.persister.Persist(ctx, criteria, parsed, languageID, authorID)
	if err == nil {
		return story, nil
	}

	o.logger.Warn("Persist failed, retrying once", zap.Error(err))
	select {
	case <-time.After(o.cfg.PersistRetryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return o.persister.Persist(ctx, criteria, parsed, languageID, authorID)
}

func (o *Orchestrator) failJob(ctx context.Context, job *models.GenerationJob, reason string, rawPayload *string) {
	jobsFailed.WithLabelValues(failureLabel(reason)).Inc()

	if err := o.jobs.MarkFailed(ctx, job.ID, reason, rawPayload); err != nil {
		if errors.Is(err, models.ErrJobNotRunning) {
			jobsAbandoned.Inc()
			o.logger.Warn("Job left running state before failure could be recorded",
				zap.String("job_id", job.ID.String()),
				zap.String("reason", reason))
			return
		}
		o.logger.Error("Failed to mark job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}

	o.notify(ctx, service.JobUpdate{
		JobID:         job.ID,
		UserID:        job.UserID,
		Status:        models.JobStatusFailed,
		FailureReason: &reason,
	})
}

// failureLabel keeps metric cardinality bounded: known reasons pass through,
// everything else collapses to "internal_error".
func failureLabel(reason string) string {
	switch reason {
	case models.FailureReasonNoVocabulary:
		return "no_vocabulary"
	case models.FailureReasonMalformedResponse:
		return "malformed_response"
	default:
		return "internal_error"
	}
}

func (o *Orchestrator) notify(ctx context.Context, update service.JobUpdate) {
	if err := o.notifier.NotifyJobUpdate(ctx, update); err != nil {
		// Notification is best effort; the job row is the source of truth.
		o.logger.Warn("Failed to publish job update",
			zap.String("job_id", update.JobID.String()),
			zap.Error(err))
	}
}
