package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lingo-server/internal/handler"
	"lingo-server/internal/mocks"
	"lingo-server/internal/models"
	"lingo-server/internal/service"
)

type handlerMocks struct {
	criteria  *mocks.MockCriteriaRepository
	jobs      *mocks.MockJobRepository
	stories   *mocks.MockStoryRepository
	languages *mocks.MockLanguageRepository
	selector  *mocks.MockWordSelector
}

func newTestRouter(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &handlerMocks{
		criteria:  new(mocks.MockCriteriaRepository),
		jobs:      new(mocks.MockJobRepository),
		stories:   new(mocks.MockStoryRepository),
		languages: new(mocks.MockLanguageRepository),
		selector:  new(mocks.MockWordSelector),
	}
	svc := service.NewGenerationService(m.criteria, m.jobs, m.stories, m.languages, m.selector, zap.NewNop())
	h := handler.NewGenerationHandler(svc, zap.NewNop())

	router := gin.New()
	h.RegisterRoutes(router)
	return router, m
}

func doRequest(router *gin.Engine, method, path string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCriteria(t *testing.T) {
	userID := uuid.New()
	body := map[string]any{
		"name": "beginner stories",
		"params": map[string]any{
			"language":        "en",
			"difficultyLevel": "A1",
			"wordCount":       5,
		},
	}

	t.Run("created", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.languages.On("GetByCode", mock.Anything, "en").Return(&models.Language{ID: uuid.New(), Code: "en"}, nil)
		m.criteria.On("Create", mock.Anything, mock.MatchedBy(func(c *models.GenerationCriteria) bool {
			return c.Name == "beginner stories" && c.CreatorID == userID && c.Params.WordCount == 5
		})).Return(nil)

		w := doRequest(router, http.MethodPost, "/api/generation/criteria", body, userID.String())

		assert.Equal(t, http.StatusCreated, w.Code)
		m.criteria.AssertExpectations(t)
	})

	t.Run("missing user header", func(t *testing.T) {
		router, _ := newTestRouter(t)
		w := doRequest(router, http.MethodPost, "/api/generation/criteria", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown language", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.languages.On("GetByCode", mock.Anything, "xx").Return(nil, models.ErrNotFound)

		bad := map[string]any{
			"name": "n",
			"params": map[string]any{
				"language":        "xx",
				"difficultyLevel": "A1",
				"wordCount":       5,
			},
		}
		w := doRequest(router, http.MethodPost, "/api/generation/criteria", bad, userID.String())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid word count", func(t *testing.T) {
		router, _ := newTestRouter(t)
		bad := map[string]any{
			"name": "n",
			"params": map[string]any{
				"language":        "en",
				"difficultyLevel": "A1",
				"wordCount":       0,
			},
		}
		w := doRequest(router, http.MethodPost, "/api/generation/criteria", bad, userID.String())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteCriteria(t *testing.T) {
	t.Run("conflict when jobs reference it", func(t *testing.T) {
		router, m := newTestRouter(t)
		id := uuid.New()
		m.criteria.On("Delete", mock.Anything, id).Return(models.ErrCriteriaInUse)

		w := doRequest(router, http.MethodDelete, "/api/generation/criteria/"+id.String(), nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("no content on success", func(t *testing.T) {
		router, m := newTestRouter(t)
		id := uuid.New()
		m.criteria.On("Delete", mock.Anything, id).Return(nil)

		w := doRequest(router, http.MethodDelete, "/api/generation/criteria/"+id.String(), nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestEnqueueJob(t *testing.T) {
	userID := uuid.New()
	criteriaID := uuid.New()

	t.Run("accepted", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.criteria.On("GetByID", mock.Anything, criteriaID).Return(&models.GenerationCriteria{ID: criteriaID}, nil)
		m.jobs.On("Create", mock.Anything, mock.MatchedBy(func(j *models.GenerationJob) bool {
			return j.CriteriaID == criteriaID && j.UserID == userID && j.Status == models.JobStatusPending
		})).Return(nil)

		w := doRequest(router, http.MethodPost, "/api/generation/jobs", map[string]any{"criteriaId": criteriaID}, userID.String())

		require.Equal(t, http.StatusAccepted, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp["status"])
		m.jobs.AssertExpectations(t)
	})

	t.Run("unknown criteria", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.criteria.On("GetByID", mock.Anything, criteriaID).Return(nil, models.ErrNotFound)

		w := doRequest(router, http.MethodPost, "/api/generation/jobs", map[string]any{"criteriaId": criteriaID}, userID.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListJobs(t *testing.T) {
	userID := uuid.New()

	t.Run("by user", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.jobs.On("ListByUser", mock.Anything, userID, 20).Return([]models.GenerationJob{
			{ID: uuid.New(), UserID: userID, Status: models.JobStatusPending},
		}, nil)

		w := doRequest(router, http.MethodGet, "/api/generation/jobs", nil, userID.String())

		require.Equal(t, http.StatusOK, w.Code)
		m.jobs.AssertExpectations(t)
	})

	t.Run("by status without user header", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.jobs.On("ListByStatus", mock.Anything, models.JobStatusFailed, 5).Return([]models.GenerationJob{
			{ID: uuid.New(), Status: models.JobStatusFailed},
		}, nil)

		w := doRequest(router, http.MethodGet, "/api/generation/jobs?status=failed&limit=5", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "failed", resp[0]["status"])
	})

	t.Run("unknown status", func(t *testing.T) {
		router, _ := newTestRouter(t)
		w := doRequest(router, http.MethodGet, "/api/generation/jobs?status=bogus", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetJob(t *testing.T) {
	router, m := newTestRouter(t)
	job := &models.GenerationJob{
		ID:     uuid.New(),
		Status: models.JobStatusCompleted,
	}
	m.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)

	w := doRequest(router, http.MethodGet, "/api/generation/jobs/"+job.ID.String(), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
}

func TestGetStory(t *testing.T) {
	router, m := newTestRouter(t)
	storyID := uuid.New()
	m.stories.On("GetWithUsages", mock.Anything, storyID).Return(&models.StoryWithUsages{
		Story: models.Story{ID: storyID, Title: "Sky"},
		Usages: []models.StoryWordUsage{
			{StoryID: storyID, WordID: uuid.New(), Ord: 0, WordText: "sun"},
		},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/stories/"+storyID.String(), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sky")
	assert.Contains(t, w.Body.String(), "sun")
}

func TestSampleWords(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.selector.On("Sample", mock.Anything, mock.MatchedBy(func(f models.WordFilter) bool {
			return f.LanguageCode == "en" && f.DifficultyLevel == "A1" && f.Limit == 3
		})).Return([]models.Word{{Text: "sun"}}, nil)

		w := doRequest(router, http.MethodGet, "/api/words/sample?language=en&difficulty=A1&limit=3", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no vocabulary", func(t *testing.T) {
		router, m := newTestRouter(t)
		m.selector.On("Sample", mock.Anything, mock.Anything).Return(nil, models.ErrInsufficientWords)

		w := doRequest(router, http.MethodGet, "/api/words/sample?language=en&difficulty=C2", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
