package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/models"
	"lingo-server/internal/repository"
)

// StoryPersister writes a parsed story and its word usages in one
// transaction.
type StoryPersister interface {
	Persist(ctx context.Context, criteria *models.GenerationCriteria, parsed *ParsedStory, languageID uuid.UUID, authorID uuid.UUID) (*models.Story, error)
}

type storyPersister struct {
	tx      *repository.TransactionHelper
	stories repository.StoryRepository
	words   repository.WordRepository
	logger  *zap.Logger
}

func NewStoryPersister(
	tx *repository.TransactionHelper,
	stories repository.StoryRepository,
	words repository.WordRepository,
	logger *zap.Logger,
) StoryPersister {
	return &storyPersister{
		tx:      tx,
		stories: stories,
		words:   words,
		logger:  logger.Named("story_persister"),
	}
}

func (p *storyPersister) Persist(
	ctx context.Context,
	criteria *models.GenerationCriteria,
	parsed *ParsedStory,
	languageID uuid.UUID,
	authorID uuid.UUID,
) (*models.Story, error) {
	difficulty := parsed.Difficulty
	if difficulty == "" {
		difficulty = criteria.Params.DifficultyLevel
	}

	story := &models.Story{
		ID:              uuid.New(),
		Title:           parsed.Title,
		Content:         parsed.Content,
		DifficultyLevel: difficulty,
		LanguageID:      languageID,
		AuthorUserID:    authorID,
		CreatedAt:       time.Now().UTC(),
	}

	err := p.tx.WithTransaction(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := p.stories.Create(ctx, tx, story); err != nil {
			return err
		}

		usages, err := p.resolveUsages(ctx, tx, story.ID, parsed.UsedWords, languageID)
		if err != nil {
			return err
		}
		if len(usages) > 0 {
			if err := p.stories.CreateWordUsages(ctx, tx, usages); err != nil {
				return err
			}
		}

		p.logger.Info("Story persisted",
			zap.String("story_id", story.ID.String()),
			zap.Int("reported_words", len(parsed.UsedWords)),
			zap.Int("resolved_usages", len(usages)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist story: %w", err)
	}

	return story, nil
}

// resolveUsages maps the provider's usedWords back onto catalog rows. Words
// that do not resolve are skipped, duplicates keep their first position, and
// ord reflects the order of the surviving entries.
func (p *storyPersister) resolveUsages(
	ctx context.Context,
	tx repository.DBTX,
	storyID uuid.UUID,
	usedWords []string,
	languageID uuid.UUID,
) ([]models.StoryWordUsage, error) {
	if len(usedWords) == 0 {
		return nil, nil
	}

	found, err := p.words.FindByTexts(ctx, tx, usedWords, languageID)
	if err != nil {
		return nil, err
	}

	usages := orderUsages(storyID, usedWords, found)
	if len(usages) < len(usedWords) {
		p.logger.Debug("Some reported words were skipped",
			zap.String("story_id", storyID.String()),
			zap.Int("reported", len(usedWords)),
			zap.Int("resolved", len(usages)))
	}
	return usages, nil
}

// orderUsages maps reported word texts onto catalog rows, preserving report
// order. Unresolved texts are dropped and duplicates keep their first
// position, so ord is dense over the surviving entries.
func orderUsages(storyID uuid.UUID, usedWords []string, found []models.Word) []models.StoryWordUsage {
	byText := make(map[string]models.Word, len(found))
	for _, w := range found {
		byText[w.Text] = w
	}

	var usages []models.StoryWordUsage
	seen := make(map[uuid.UUID]bool, len(usedWords))
	for _, text := range usedWords {
		word, ok := byText[text]
		if !ok {
			continue
		}
		if seen[word.ID] {
			continue
		}
		seen[word.ID] = true
		usages = append(usages, models.StoryWordUsage{
			StoryID: storyID,
			WordID:  word.ID,
			Ord:     len(usages),
		})
	}
	return usages
}
