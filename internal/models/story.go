package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is a generated reading text.
type Story struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	DifficultyLevel string    `json:"difficultyLevel"`
	LanguageID      uuid.UUID `json:"languageId"`
	AuthorUserID    uuid.UUID `json:"authorUserId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// StoryWordUsage records that a story used a catalog word. Ord is the
// position of the word among the story's resolved usages, starting at zero.
type StoryWordUsage struct {
	StoryID uuid.UUID `json:"storyId"`
	WordID  uuid.UUID `json:"wordId"`
	Ord     int       `json:"ord"`

	// Joined from the words table for read endpoints.
	WordText    string `json:"wordText,omitempty"`
	WordMeaning string `json:"wordMeaning,omitempty"`
}

// StoryWithUsages bundles a story with its word usages for read endpoints.
type StoryWithUsages struct {
	Story  Story            `json:"story"`
	Usages []StoryWordUsage `json:"usages"`
}
