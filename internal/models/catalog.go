package models

import (
	"time"

	"github.com/google/uuid"
)

// Language is a supported catalog language.
type Language struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// LanguagePair links a source language to a learning target.
type LanguagePair struct {
	ID               uuid.UUID `json:"id"`
	SourceLanguageID uuid.UUID `json:"sourceLanguageId"`
	TargetLanguageID uuid.UUID `json:"targetLanguageId"`
}

// Category groups vocabulary by topic.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Word is a vocabulary entry in the target language.
type Word struct {
	ID              uuid.UUID `json:"id"`
	Text            string    `json:"text"`
	Meaning         string    `json:"meaning"`
	Example         *string   `json:"example,omitempty"`
	DifficultyLevel string    `json:"difficultyLevel"`
	LanguageID      uuid.UUID `json:"languageId"`
	LetterCount     int       `json:"letterCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// WordFilter narrows catalog queries.
type WordFilter struct {
	LanguageCode    string
	DifficultyLevel string
	CategoryID      *uuid.UUID
	Limit           int
	Random          bool
}
