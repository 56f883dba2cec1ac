package handler

import (
	"time"

	"github.com/google/uuid"

	"lingo-server/internal/models"
)

// APIError is the error envelope returned by all endpoints.
type APIError struct {
	Error string `json:"error"`
}

type createCriteriaRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description *string               `json:"description"`
	Params      models.CriteriaParams `json:"params" binding:"required"`
}

type enqueueJobRequest struct {
	CriteriaID uuid.UUID `json:"criteriaId" binding:"required"`
}

type jobResponse struct {
	ID            uuid.UUID        `json:"id"`
	CriteriaID    uuid.UUID        `json:"criteriaId"`
	UserID        uuid.UUID        `json:"userId"`
	StoryID       *uuid.UUID       `json:"storyId,omitempty"`
	Status        models.JobStatus `json:"status"`
	FailureReason *string          `json:"failureReason,omitempty"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

func toJobResponse(job *models.GenerationJob) jobResponse {
	return jobResponse{
		ID:            job.ID,
		CriteriaID:    job.CriteriaID,
		UserID:        job.UserID,
		StoryID:       job.StoryID,
		Status:        job.Status,
		FailureReason: job.FailureReason,
		CreatedAt:     job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
