package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/models"
	"lingo-server/internal/service"
)

// GenerationHandler exposes criteria, job and story endpoints.
type GenerationHandler struct {
	service *service.GenerationService
	logger  *zap.Logger
}

func NewGenerationHandler(svc *service.GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: svc,
		logger:  logger.Named("generation_handler"),
	}
}

// RegisterRoutes attaches all endpoints to the router.
func (h *GenerationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		criteria := api.Group("/generation/criteria")
		{
			criteria.POST("", h.createCriteria)
			criteria.GET("", h.listCriteria)
			criteria.GET("/:id", h.getCriteria)
			criteria.DELETE("/:id", h.deleteCriteria)
		}

		jobs := api.Group("/generation/jobs")
		{
			jobs.POST("", h.enqueueJob)
			jobs.GET("", h.listJobs)
			jobs.GET("/:id", h.getJob)
		}

		api.GET("/stories/:id", h.getStory)
		api.GET("/words/sample", h.sampleWords)
	}
}

// userID reads the caller identity propagated by the gateway. Requests
// without one are rejected.
func (h *GenerationHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusBadRequest, APIError{Error: "missing X-User-ID header"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid X-User-ID header"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *GenerationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{Error: "not found"})
	case errors.Is(err, models.ErrCriteriaInUse):
		c.JSON(http.StatusConflict, APIError{Error: "criteria is referenced by existing jobs"})
	case errors.Is(err, models.ErrInsufficientWords):
		c.JSON(http.StatusNotFound, APIError{Error: "no matching vocabulary"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Error: "internal error"})
	}
}

func (h *GenerationHandler) createCriteria(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	criteria, err := h.service.CreateCriteria(c.Request.Context(), req.Name, req.Description, req.Params, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, criteria)
}

func (h *GenerationHandler) listCriteria(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	criteria, err := h.service.ListCriteria(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if criteria == nil {
		criteria = []models.GenerationCriteria{}
	}
	c.JSON(http.StatusOK, criteria)
}

func (h *GenerationHandler) getCriteria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid criteria id"})
		return
	}

	criteria, err := h.service.GetCriteria(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, criteria)
}

func (h *GenerationHandler) deleteCriteria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid criteria id"})
		return
	}

	if err := h.service.DeleteCriteria(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GenerationHandler) enqueueJob(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req enqueueJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return
	}

	job, err := h.service.EnqueueJob(c.Request.Context(), req.CriteriaID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, toJobResponse(job))
}

// listJobs returns the caller's job history, or, with ?status=, a
// queue-wide view filtered by job status.
func (h *GenerationHandler) listJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var (
		jobs []models.GenerationJob
		err  error
	)
	if status := c.Query("status"); status != "" {
		jobs, err = h.service.ListJobsByStatus(c.Request.Context(), models.JobStatus(status), limit)
	} else {
		userID, ok := h.userID(c)
		if !ok {
			return
		}
		jobs, err = h.service.ListJobs(c.Request.Context(), userID, limit)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		resp = append(resp, toJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid job id"})
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}

func (h *GenerationHandler) getStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid story id"})
		return
	}

	story, err := h.service.GetStory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *GenerationHandler) sampleWords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := models.WordFilter{
		LanguageCode:    c.Query("language"),
		DifficultyLevel: c.Query("difficulty"),
		Limit:           limit,
	}
	if rawCategory := c.Query("categoryId"); rawCategory != "" {
		categoryID, err := uuid.Parse(rawCategory)
		if err != nil {
			c.JSON(http.StatusBadRequest, APIError{Error: "invalid categoryId"})
			return
		}
		filter.CategoryID = &categoryID
	}

	words, err := h.service.SampleWords(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, words)
}
