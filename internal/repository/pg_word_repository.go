package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

const getLanguageByCodeSQL = `
	SELECT id, code, name
	FROM languages
	WHERE code = $1
`

type postgresLanguageRepository struct {
	db *pgxpool.Pool
}

func NewPostgresLanguageRepository(db *pgxpool.Pool) LanguageRepository {
	return &postgresLanguageRepository{db: db}
}

func (r *postgresLanguageRepository) GetByCode(ctx context.Context, code string) (*models.Language, error) {
	lang := &models.Language{}
	err := r.db.QueryRow(ctx, getLanguageByCodeSQL, code).Scan(&lang.ID, &lang.Code, &lang.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get language by code %q: %w", code, err)
	}
	return lang, nil
}

const findWordsBaseSQL = `
	SELECT w.id, w.text, w.meaning, w.example, w.difficulty_level, w.language_id, w.letter_count, w.created_at
	FROM words w
	JOIN languages l ON l.id = w.language_id
	WHERE l.code = $1 AND w.difficulty_level = $2
`

const findWordsByTextsSQL = `
	SELECT id, text, meaning, example, difficulty_level, language_id, letter_count, created_at
	FROM words
	WHERE language_id = $1 AND text = ANY($2)
`

type postgresWordRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresWordRepository(db *pgxpool.Pool, logger *zap.Logger) WordRepository {
	return &postgresWordRepository{
		db:     db,
		logger: logger.Named("word_repo"),
	}
}

func (r *postgresWordRepository) Find(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	query := findWordsBaseSQL
	args := []any{filter.LanguageCode, filter.DifficultyLevel}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM word_categories wc
			WHERE wc.word_id = w.id AND wc.category_id = $%d
		)`, len(args)+1)
		args = append(args, *filter.CategoryID)
	}

	if filter.Random {
		query += " ORDER BY RANDOM()"
	} else {
		query += " ORDER BY w.created_at, w.id"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	words, err := scanWords(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Words selected",
		zap.String("language", filter.LanguageCode),
		zap.String("difficulty", filter.DifficultyLevel),
		zap.Int("count", len(words)))
	return words, nil
}

func (r *postgresWordRepository) FindByTexts(ctx context.Context, tx DBTX, texts []string, languageID uuid.UUID) ([]models.Word, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if tx == nil {
		tx = r.db
	}

	rows, err := tx.Query(ctx, findWordsByTextsSQL, languageID, pq.Array(texts))
	if err != nil {
		return nil, fmt.Errorf("failed to query words by texts: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

func scanWords(rows pgx.Rows) ([]models.Word, error) {
	var words []models.Word
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(
			&w.ID,
			&w.Text,
			&w.Meaning,
			&w.Example,
			&w.DifficultyLevel,
			&w.LanguageID,
			&w.LetterCount,
			&w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate word rows: %w", err)
	}
	return words, nil
}
