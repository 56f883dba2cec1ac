package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lingo-server/internal/models"
	"lingo-server/internal/repository"
)

// WordSelector picks vocabulary for a generation run.
type WordSelector interface {
	// Select returns up to params.WordCount random words matching the
	// criteria. models.ErrInsufficientWords is returned only when nothing
	// matches at all; a partial set is allowed.
	Select(ctx context.Context, params models.CriteriaParams) ([]models.Word, error)
	// Sample returns words for ad-hoc requests such as practice modes.
	Sample(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
}

type wordSelector struct {
	words  repository.WordRepository
	logger *zap.Logger
}

func NewWordSelector(words repository.WordRepository, logger *zap.Logger) WordSelector {
	return &wordSelector{
		words:  words,
		logger: logger.Named("word_selector"),
	}
}

func (s *wordSelector) Select(ctx context.Context, params models.CriteriaParams) ([]models.Word, error) {
	filter := models.WordFilter{
		LanguageCode:    params.LanguageCode,
		DifficultyLevel: params.DifficultyLevel,
		CategoryID:      params.CategoryID,
		Limit:           params.WordCount,
		Random:          true,
	}

	words, err := s.words.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to select words: %w", err)
	}
	if len(words) == 0 {
		return nil, models.ErrInsufficientWords
	}
	if len(words) < params.WordCount {
		s.logger.Warn("Fewer words available than requested, proceeding with partial set",
			zap.String("language", params.LanguageCode),
			zap.String("difficulty", params.DifficultyLevel),
			zap.Int("requested", params.WordCount),
			zap.Int("available", len(words)))
	}
	return words, nil
}

func (s *wordSelector) Sample(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	filter.Random = true
	words, err := s.words.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to sample words: %w", err)
	}
	if len(words) == 0 {
		return nil, models.ErrInsufficientWords
	}
	return words, nil
}
