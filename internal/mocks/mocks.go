package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lingo-server/internal/models"
	"lingo-server/internal/repository"
	"lingo-server/internal/service"
)

// MockAIClient is a mock type for the service.AIClient type
type MockAIClient struct {
	mock.Mock
}

func (_m *MockAIClient) GenerateText(ctx context.Context, prompt string) (string, service.UsageInfo, error) {
	ret := _m.Called(ctx, prompt)
	return ret.Get(0).(string), ret.Get(1).(service.UsageInfo), ret.Error(2)
}

var _ service.AIClient = (*MockAIClient)(nil)

// MockWordRepository is a mock type for the repository.WordRepository type
type MockWordRepository struct {
	mock.Mock
}

func (_m *MockWordRepository) Find(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	ret := _m.Called(ctx, filter)
	var r0 []models.Word
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Word)
	}
	return r0, ret.Error(1)
}

func (_m *MockWordRepository) FindByTexts(ctx context.Context, tx repository.DBTX, texts []string, languageID uuid.UUID) ([]models.Word, error) {
	ret := _m.Called(ctx, tx, texts, languageID)
	var r0 []models.Word
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Word)
	}
	return r0, ret.Error(1)
}

var _ repository.WordRepository = (*MockWordRepository)(nil)

// MockLanguageRepository is a mock type for the repository.LanguageRepository type
type MockLanguageRepository struct {
	mock.Mock
}

func (_m *MockLanguageRepository) GetByCode(ctx context.Context, code string) (*models.Language, error) {
	ret := _m.Called(ctx, code)
	var r0 *models.Language
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Language)
	}
	return r0, ret.Error(1)
}

var _ repository.LanguageRepository = (*MockLanguageRepository)(nil)

// MockCriteriaRepository is a mock type for the repository.CriteriaRepository type
type MockCriteriaRepository struct {
	mock.Mock
}

func (_m *MockCriteriaRepository) Create(ctx context.Context, criteria *models.GenerationCriteria) error {
	return _m.Called(ctx, criteria).Error(0)
}

func (_m *MockCriteriaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationCriteria, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.GenerationCriteria
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationCriteria)
	}
	return r0, ret.Error(1)
}

func (_m *MockCriteriaRepository) List(ctx context.Context, creatorID uuid.UUID) ([]models.GenerationCriteria, error) {
	ret := _m.Called(ctx, creatorID)
	var r0 []models.GenerationCriteria
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GenerationCriteria)
	}
	return r0, ret.Error(1)
}

func (_m *MockCriteriaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return _m.Called(ctx, id).Error(0)
}

var _ repository.CriteriaRepository = (*MockCriteriaRepository)(nil)

// MockJobRepository is a mock type for the repository.JobRepository type
type MockJobRepository struct {
	mock.Mock
}

func (_m *MockJobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	return _m.Called(ctx, job).Error(0)
}

func (_m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.GenerationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationJob, error) {
	ret := _m.Called(ctx, userID, limit)
	var r0 []models.GenerationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GenerationJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockJobRepository) ListByStatus(ctx context.Context, status models.JobStatus, limit int) ([]models.GenerationJob, error) {
	ret := _m.Called(ctx, status, limit)
	var r0 []models.GenerationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GenerationJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockJobRepository) NextPending(ctx context.Context) (*models.GenerationJob, error) {
	ret := _m.Called(ctx)
	var r0 *models.GenerationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, id)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, storyID uuid.UUID) error {
	return _m.Called(ctx, id, storyID).Error(0)
}

func (_m *MockJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, rawPayload *string) error {
	return _m.Called(ctx, id, reason, rawPayload).Error(0)
}

func (_m *MockJobRepository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	ret := _m.Called(ctx, cutoff)
	return ret.Get(0).(int64), ret.Error(1)
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

// MockStoryRepository is a mock type for the repository.StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

func (_m *MockStoryRepository) Create(ctx context.Context, tx repository.DBTX, story *models.Story) error {
	return _m.Called(ctx, tx, story).Error(0)
}

func (_m *MockStoryRepository) CreateWordUsages(ctx context.Context, tx repository.DBTX, usages []models.StoryWordUsage) error {
	return _m.Called(ctx, tx, usages).Error(0)
}

func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetWithUsages(ctx context.Context, id uuid.UUID) (*models.StoryWithUsages, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.StoryWithUsages
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryWithUsages)
	}
	return r0, ret.Error(1)
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)

// MockWordSelector is a mock type for the service.WordSelector type
type MockWordSelector struct {
	mock.Mock
}

func (_m *MockWordSelector) Select(ctx context.Context, params models.CriteriaParams) ([]models.Word, error) {
	ret := _m.Called(ctx, params)
	var r0 []models.Word
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Word)
	}
	return r0, ret.Error(1)
}

func (_m *MockWordSelector) Sample(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	ret := _m.Called(ctx, filter)
	var r0 []models.Word
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Word)
	}
	return r0, ret.Error(1)
}

var _ service.WordSelector = (*MockWordSelector)(nil)

// MockStoryPersister is a mock type for the service.StoryPersister type
type MockStoryPersister struct {
	mock.Mock
}

func (_m *MockStoryPersister) Persist(ctx context.Context, criteria *models.GenerationCriteria, parsed *service.ParsedStory, languageID uuid.UUID, authorID uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, criteria, parsed, languageID, authorID)
	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

var _ service.StoryPersister = (*MockStoryPersister)(nil)

// MockNotifier is a mock type for the service.Notifier type
type MockNotifier struct {
	mock.Mock
}

func (_m *MockNotifier) NotifyJobUpdate(ctx context.Context, update service.JobUpdate) error {
	return _m.Called(ctx, update).Error(0)
}

var _ service.Notifier = (*MockNotifier)(nil)
