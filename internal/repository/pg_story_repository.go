package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

const (
	createStorySQL = `
		INSERT INTO stories (id, title, content, difficulty_level, language_id, author_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	createWordUsageSQL = `
		INSERT INTO story_word_usages (story_id, word_id, ord)
		VALUES ($1, $2, $3)
	`

	getStoryByIDSQL = `
		SELECT id, title, content, difficulty_level, language_id, author_user_id, created_at
		FROM stories
		WHERE id = $1
	`

	getStoryUsagesSQL = `
		SELECT u.story_id, u.word_id, u.ord, w.text, w.meaning
		FROM story_word_usages u
		JOIN words w ON w.id = u.word_id
		WHERE u.story_id = $1
		ORDER BY u.ord
	`
)

type postgresStoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStoryRepository(db *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &postgresStoryRepository{
		db:     db,
		logger: logger.Named("story_repo"),
	}
}

func (r *postgresStoryRepository) Create(ctx context.Context, tx DBTX, story *models.Story) error {
	if tx == nil {
		tx = r.db
	}
	_, err := tx.Exec(ctx, createStorySQL,
		story.ID,
		story.Title,
		story.Content,
		story.DifficultyLevel,
		story.LanguageID,
		story.AuthorUserID,
		story.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (r *postgresStoryRepository) CreateWordUsages(ctx context.Context, tx DBTX, usages []models.StoryWordUsage) error {
	if tx == nil {
		tx = r.db
	}
	for _, u := range usages {
		if _, err := tx.Exec(ctx, createWordUsageSQL, u.StoryID, u.WordID, u.Ord); err != nil {
			return fmt.Errorf("failed to create word usage (word %s, ord %d): %w", u.WordID, u.Ord, err)
		}
	}
	return nil
}

func (r *postgresStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	err := r.db.QueryRow(ctx, getStoryByIDSQL, id).Scan(
		&story.ID,
		&story.Title,
		&story.Content,
		&story.DifficultyLevel,
		&story.LanguageID,
		&story.AuthorUserID,
		&story.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *postgresStoryRepository) GetWithUsages(ctx context.Context, id uuid.UUID) (*models.StoryWithUsages, error) {
	story, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, getStoryUsagesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query word usages for story %s: %w", id, err)
	}
	defer rows.Close()

	var usages []models.StoryWordUsage
	for rows.Next() {
		var u models.StoryWordUsage
		if err := rows.Scan(&u.StoryID, &u.WordID, &u.Ord, &u.WordText, &u.WordMeaning); err != nil {
			return nil, fmt.Errorf("failed to scan word usage row: %w", err)
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate word usage rows: %w", err)
	}

	return &models.StoryWithUsages{Story: *story, Usages: usages}, nil
}
