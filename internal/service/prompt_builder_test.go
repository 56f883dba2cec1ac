package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lingo-server/internal/models"
)

func testWords() []models.Word {
	return []models.Word{
		{Text: "sun", Meaning: "the star at the center of the solar system"},
		{Text: "river", Meaning: "a large natural stream of water"},
	}
}

func TestBuildStoryPrompt_ContainsCriteriaAndWords(t *testing.T) {
	params := models.CriteriaParams{
		LanguageCode:    "en",
		DifficultyLevel: "A2",
		TextType:        "fairy tale",
		Length:          "200 words",
		Purpose:         "bedtime reading",
		AgeGroup:        "children",
		WordCount:       2,
	}

	prompt := BuildStoryPrompt(params, testWords())

	assert.Contains(t, prompt, "fairy tale")
	assert.Contains(t, prompt, "English")
	assert.Contains(t, prompt, "A2")
	assert.Contains(t, prompt, "200 words")
	assert.Contains(t, prompt, "bedtime reading")
	assert.Contains(t, prompt, "children")
	assert.Contains(t, prompt, "- sun (the star at the center of the solar system)")
	assert.Contains(t, prompt, "- river (a large natural stream of water)")
	assert.Contains(t, prompt, `"usedWords"`)
	assert.Contains(t, prompt, `"difficulty"`)
}

func TestBuildStoryPrompt_Deterministic(t *testing.T) {
	params := models.CriteriaParams{
		LanguageCode:    "de",
		DifficultyLevel: "B1",
		WordCount:       2,
	}

	first := BuildStoryPrompt(params, testWords())
	second := BuildStoryPrompt(params, testWords())
	assert.Equal(t, first, second)
}

func TestBuildStoryPrompt_OptionalFieldsOmitted(t *testing.T) {
	params := models.CriteriaParams{
		LanguageCode:    "es",
		DifficultyLevel: "C1",
		WordCount:       2,
	}

	prompt := BuildStoryPrompt(params, testWords())

	// Defaults in, empty optionals out.
	assert.Contains(t, prompt, "short story")
	assert.Contains(t, prompt, "Spanish")
	assert.NotContains(t, prompt, "Approximate length")
	assert.NotContains(t, prompt, "Purpose:")
	assert.NotContains(t, prompt, "Intended audience")
}

func TestLanguageName_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "xx", languageName("xx"))
	assert.Equal(t, "English", languageName("EN"))
}
