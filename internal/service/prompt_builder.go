package service

import (
	"fmt"
	"strings"

	"lingo-server/internal/models"
)

// BuildStoryPrompt renders the generation prompt from criteria and the
// selected vocabulary. It is deterministic: the same inputs produce the same
// prompt text.
func BuildStoryPrompt(params models.CriteriaParams, words []models.Word) string {
	var b strings.Builder

	b.WriteString("You are a language tutor writing short reading material for learners.\n\n")

	fmt.Fprintf(&b, "Write a %s in %s for language learners.\n", textTypeOrDefault(params.TextType), languageName(params.LanguageCode))
	fmt.Fprintf(&b, "Difficulty level: %s (CEFR).\n", params.DifficultyLevel)
	if params.Length != "" {
		fmt.Fprintf(&b, "Approximate length: %s.\n", params.Length)
	}
	if params.Purpose != "" {
		fmt.Fprintf(&b, "Purpose: %s.\n", params.Purpose)
	}
	if params.AgeGroup != "" {
		fmt.Fprintf(&b, "Intended audience: %s.\n", params.AgeGroup)
	}

	b.WriteString("\nNaturally incorporate the following vocabulary words. Use each word at least once in its given form:\n")
	for _, w := range words {
		fmt.Fprintf(&b, "- %s (%s)\n", w.Text, w.Meaning)
	}

	b.WriteString("\nRespond with a single JSON object and nothing else. Use exactly these keys:\n")
	b.WriteString(`{"title": "...", "content": "...", "usedWords": ["..."], "difficulty": "..."}` + "\n")
	b.WriteString("\"usedWords\" must list the vocabulary words from the list above that actually appear in the text, spelled exactly as given. ")
	b.WriteString("\"difficulty\" must repeat the requested CEFR level. Do not wrap the JSON in markdown fences.\n")

	return b.String()
}

func textTypeOrDefault(textType string) string {
	if textType == "" {
		return "short story"
	}
	return textType
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"de": "German",
	"fr": "French",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"zh": "Chinese",
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}
