package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Failure reasons recorded on terminally failed jobs.
const (
	FailureReasonNoVocabulary      = "no matching vocabulary"
	FailureReasonMalformedResponse = "malformed provider response"
)

// CriteriaParams captures what kind of text to generate and which vocabulary
// to draw from.
type CriteriaParams struct {
	LanguageCode    string     `json:"language"`
	DifficultyLevel string     `json:"difficultyLevel"`
	TextType        string     `json:"textType,omitempty"`
	Length          string     `json:"length,omitempty"`
	Purpose         string     `json:"purpose,omitempty"`
	AgeGroup        string     `json:"ageGroup,omitempty"`
	CategoryID      *uuid.UUID `json:"categoryId,omitempty"`
	WordCount       int        `json:"wordCount"`
}

// GenerationCriteria is a saved, reusable generation request.
type GenerationCriteria struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Params      CriteriaParams `json:"params"`
	CreatorID   uuid.UUID      `json:"creatorId"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// GenerationJob tracks one asynchronous story generation run.
type GenerationJob struct {
	ID            uuid.UUID  `json:"id"`
	CriteriaID    uuid.UUID  `json:"criteriaId"`
	UserID        uuid.UUID  `json:"userId"`
	StoryID       *uuid.UUID `json:"storyId,omitempty"`
	Status        JobStatus  `json:"status"`
	ResultPayload *string    `json:"resultPayload,omitempty"`
	FailureReason *string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
