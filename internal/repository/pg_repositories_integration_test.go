//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"lingo-server/internal/database"
	"lingo-server/internal/models"
	"lingo-server/internal/repository"
)

// Seeded by migrations/002_seed.sql.
var (
	seedEnglishID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	seedSystemUser = uuid.MustParse("00000000-0000-0000-0002-000000000001")
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	logger      *zap.Logger

	languages repository.LanguageRepository
	words     repository.WordRepository
	criteria  repository.CriteriaRepository
	jobs      repository.JobRepository
	stories   repository.StoryRepository
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	require.NoError(s.T(), database.RunMigrations(s.ctx, s.pool, "../../migrations", s.logger))

	s.languages = repository.NewPostgresLanguageRepository(s.pool)
	s.words = repository.NewPostgresWordRepository(s.pool, s.logger)
	s.criteria = repository.NewPostgresCriteriaRepository(s.pool, s.logger)
	s.jobs = repository.NewPostgresJobRepository(s.pool, s.logger)
	s.stories = repository.NewPostgresStoryRepository(s.pool, s.logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *RepositoryTestSuite) createCriteria() *models.GenerationCriteria {
	criteria := &models.GenerationCriteria{
		ID:   uuid.New(),
		Name: "test criteria",
		Params: models.CriteriaParams{
			LanguageCode:    "en",
			DifficultyLevel: "A1",
			WordCount:       3,
		},
		CreatorID: seedSystemUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.criteria.Create(s.ctx, criteria))
	return criteria
}

func (s *RepositoryTestSuite) createJob(criteriaID uuid.UUID) *models.GenerationJob {
	job := &models.GenerationJob{
		ID:         uuid.New(),
		CriteriaID: criteriaID,
		UserID:     seedSystemUser,
		Status:     models.JobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(s.T(), s.jobs.Create(s.ctx, job))
	return job
}

func (s *RepositoryTestSuite) TestLanguageLookup() {
	lang, err := s.languages.GetByCode(s.ctx, "en")
	s.Require().NoError(err)
	s.Equal(seedEnglishID, lang.ID)

	_, err = s.languages.GetByCode(s.ctx, "nope")
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *RepositoryTestSuite) TestWordFindAndFindByTexts() {
	words, err := s.words.Find(s.ctx, models.WordFilter{
		LanguageCode:    "en",
		DifficultyLevel: "A1",
		Limit:           2,
		Random:          true,
	})
	s.Require().NoError(err)
	s.Len(words, 2)
	for _, w := range words {
		s.Equal("A1", w.DifficultyLevel)
	}

	byTexts, err := s.words.FindByTexts(s.ctx, nil, []string{"sun", "moon", "unknown"}, seedEnglishID)
	s.Require().NoError(err)
	s.Len(byTexts, 2)
}

func (s *RepositoryTestSuite) TestJobClaimIsExclusive() {
	criteria := s.createCriteria()
	job := s.createJob(criteria.ID)

	claimed, err := s.jobs.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	// Second claim must lose.
	claimed, err = s.jobs.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.False(claimed)

	got, err := s.jobs.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusRunning, got.Status)
}

func (s *RepositoryTestSuite) TestTerminalTransitionsRequireRunning() {
	criteria := s.createCriteria()
	job := s.createJob(criteria.ID)

	// Still pending: terminal updates must refuse.
	err := s.jobs.MarkFailed(s.ctx, job.ID, "boom", nil)
	s.ErrorIs(err, models.ErrJobNotRunning)

	claimed, err := s.jobs.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	raw := "raw payload"
	s.Require().NoError(s.jobs.MarkFailed(s.ctx, job.ID, models.FailureReasonMalformedResponse, &raw))

	got, err := s.jobs.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusFailed, got.Status)
	s.Require().NotNil(got.FailureReason)
	s.Equal(models.FailureReasonMalformedResponse, *got.FailureReason)
	s.Require().NotNil(got.ResultPayload)
	s.Equal(raw, *got.ResultPayload)

	// Already failed: completing must refuse.
	err = s.jobs.MarkCompleted(s.ctx, job.ID, uuid.New())
	s.ErrorIs(err, models.ErrJobNotRunning)
}

func (s *RepositoryTestSuite) TestRequeueStale() {
	criteria := s.createCriteria()
	job := s.createJob(criteria.ID)

	claimed, err := s.jobs.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	// Cutoff in the future treats the fresh claim as stale.
	requeued, err := s.jobs.RequeueStale(s.ctx, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.GreaterOrEqual(requeued, int64(1))

	got, err := s.jobs.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusPending, got.Status)
}

func (s *RepositoryTestSuite) TestStoryWithUsagesRoundTrip() {
	words, err := s.words.FindByTexts(s.ctx, nil, []string{"sun", "moon"}, seedEnglishID)
	s.Require().NoError(err)
	s.Require().Len(words, 2)

	story := &models.Story{
		ID:              uuid.New(),
		Title:           "Sky",
		Content:         "The sun and the moon.",
		DifficultyLevel: "A1",
		LanguageID:      seedEnglishID,
		AuthorUserID:    seedSystemUser,
		CreatedAt:       time.Now().UTC(),
	}
	s.Require().NoError(s.stories.Create(s.ctx, nil, story))
	s.Require().NoError(s.stories.CreateWordUsages(s.ctx, nil, []models.StoryWordUsage{
		{StoryID: story.ID, WordID: words[0].ID, Ord: 0},
		{StoryID: story.ID, WordID: words[1].ID, Ord: 1},
	}))

	got, err := s.stories.GetWithUsages(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Equal("Sky", got.Story.Title)
	s.Require().Len(got.Usages, 2)
	s.Equal(0, got.Usages[0].Ord)
	s.Equal(1, got.Usages[1].Ord)
	s.NotEmpty(got.Usages[0].WordText)
}

func (s *RepositoryTestSuite) TestCriteriaDeleteGuard() {
	criteria := s.createCriteria()
	s.createJob(criteria.ID)

	err := s.criteria.Delete(s.ctx, criteria.ID)
	s.ErrorIs(err, models.ErrCriteriaInUse)

	unused := s.createCriteria()
	s.NoError(s.criteria.Delete(s.ctx, unused.ID))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
