package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoryResponse_PlainJSON(t *testing.T) {
	raw := `{"title": "The River", "content": "A story about a river.", "usedWords": ["river", "sun"], "difficulty": "A1"}`

	parsed, err := ParseStoryResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "The River", parsed.Title)
	assert.Equal(t, "A story about a river.", parsed.Content)
	assert.Equal(t, "A1", parsed.Difficulty)
	assert.Equal(t, []string{"river", "sun"}, parsed.UsedWords)
}

func TestParseStoryResponse_FencedJSON(t *testing.T) {
	t.Run("with language tag", func(t *testing.T) {
		raw := "Here is your story:\n```json\n{\"title\": \"T\", \"content\": \"C\", \"usedWords\": [], \"difficulty\": \"B1\"}\n```"

		parsed, err := ParseStoryResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, "T", parsed.Title)
		assert.Empty(t, parsed.UsedWords)
	})

	t.Run("without language tag", func(t *testing.T) {
		raw := "```\n{\"title\": \"T\", \"content\": \"C\", \"usedWords\": [\"sun\"]}\n```"

		parsed, err := ParseStoryResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, "C", parsed.Content)
	})
}

func TestParseStoryResponse_UsedWordsAbsentVsEmpty(t *testing.T) {
	t.Run("absent key is malformed", func(t *testing.T) {
		_, err := ParseStoryResponse(`{"title": "T", "content": "C"}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("null is malformed", func(t *testing.T) {
		_, err := ParseStoryResponse(`{"title": "T", "content": "C", "usedWords": null}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("empty array is valid", func(t *testing.T) {
		parsed, err := ParseStoryResponse(`{"title": "T", "content": "C", "usedWords": []}`)
		require.NoError(t, err)
		assert.NotNil(t, parsed.UsedWords)
		assert.Empty(t, parsed.UsedWords)
	})
}

func TestParseStoryResponse_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t "},
		{"not JSON", "Once upon a time there was no JSON."},
		{"truncated JSON", `{"title": "T", "content": "C`},
		{"missing title", `{"content": "C", "usedWords": []}`},
		{"missing content", `{"title": "T", "usedWords": []}`},
		{"missing usedWords", `{"title": "T", "content": "C"}`},
		{"blank title", `{"title": "  ", "content": "C", "usedWords": []}`},
		{"fenced garbage", "```json\nnot json at all\n```"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStoryResponse(tc.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}
