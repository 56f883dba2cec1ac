package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedResponse means the provider's text could not be turned into a
// story. The raw text is kept on the job for inspection.
var ErrMalformedResponse = errors.New("malformed generation response")

// jsonBlockRegex extracts the payload from a markdown code fence. Models
// routinely wrap their JSON in ```json ... ``` despite instructions.
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParsedStory is the structured result of a generation response.
type ParsedStory struct {
	Title      string
	Content    string
	Difficulty string
	// UsedWords may be empty but never nil: an absent usedWords key fails
	// parsing, an empty array simply yields no usage links.
	UsedWords []string
}

type storyResponsePayload struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UsedWords  *[]string `json:"usedWords"`
	Difficulty string    `json:"difficulty"`
}

// ParseStoryResponse strips an optional markdown fence from the raw provider
// text and decodes the story JSON. Any structural problem is reported as
// ErrMalformedResponse.
func ParseStoryResponse(raw string) (*ParsedStory, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	jsonText := trimmed
	if matches := jsonBlockRegex.FindStringSubmatch(trimmed); len(matches) > 1 {
		jsonText = matches[1]
	}

	var payload storyResponsePayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedResponse, err)
	}

	if strings.TrimSpace(payload.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}
	if strings.TrimSpace(payload.Content) == "" {
		return nil, fmt.Errorf("%w: missing content", ErrMalformedResponse)
	}
	if payload.UsedWords == nil {
		return nil, fmt.Errorf("%w: missing usedWords", ErrMalformedResponse)
	}

	usedWords := *payload.UsedWords
	if usedWords == nil {
		usedWords = []string{}
	}
	return &ParsedStory{
		Title:      payload.Title,
		Content:    payload.Content,
		Difficulty: payload.Difficulty,
		UsedWords:  usedWords,
	}, nil
}
