package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lingo-server/internal/mocks"
	"lingo-server/internal/models"
	"lingo-server/internal/service"
)

func TestWordSelector_Select(t *testing.T) {
	params := models.CriteriaParams{
		LanguageCode:    "en",
		DifficultyLevel: "A1",
		WordCount:       3,
	}

	t.Run("returns matching words", func(t *testing.T) {
		repo := new(mocks.MockWordRepository)
		repo.On("Find", mock.Anything, mock.MatchedBy(func(f models.WordFilter) bool {
			return f.LanguageCode == "en" && f.DifficultyLevel == "A1" && f.Limit == 3 && f.Random
		})).Return([]models.Word{{Text: "sun"}, {Text: "moon"}, {Text: "river"}}, nil)

		selector := service.NewWordSelector(repo, zap.NewNop())
		words, err := selector.Select(context.Background(), params)

		require.NoError(t, err)
		assert.Len(t, words, 3)
		repo.AssertExpectations(t)
	})

	t.Run("no matching words", func(t *testing.T) {
		repo := new(mocks.MockWordRepository)
		repo.On("Find", mock.Anything, mock.Anything).Return([]models.Word{}, nil)

		selector := service.NewWordSelector(repo, zap.NewNop())
		_, err := selector.Select(context.Background(), params)

		assert.ErrorIs(t, err, models.ErrInsufficientWords)
	})

	t.Run("partial set is allowed", func(t *testing.T) {
		repo := new(mocks.MockWordRepository)
		repo.On("Find", mock.Anything, mock.Anything).Return([]models.Word{{Text: "sun"}}, nil)

		selector := service.NewWordSelector(repo, zap.NewNop())
		words, err := selector.Select(context.Background(), params)

		require.NoError(t, err)
		assert.Len(t, words, 1)
	})
}

func TestWordSelector_Sample(t *testing.T) {
	repo := new(mocks.MockWordRepository)
	repo.On("Find", mock.Anything, mock.MatchedBy(func(f models.WordFilter) bool {
		return f.Random
	})).Return([]models.Word{{Text: "sun"}}, nil)

	selector := service.NewWordSelector(repo, zap.NewNop())
	words, err := selector.Sample(context.Background(), models.WordFilter{
		LanguageCode:    "en",
		DifficultyLevel: "A1",
		Limit:           5,
	})

	require.NoError(t, err)
	assert.Len(t, words, 1)
}
