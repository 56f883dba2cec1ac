package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

const (
	createCriteriaSQL = `
		INSERT INTO generation_criteria (id, name, description, params, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	getCriteriaByIDSQL = `
		SELECT id, name, description, params, creator_id, created_at
		FROM generation_criteria
		WHERE id = $1
	`

	listCriteriaSQL = `
		SELECT id, name, description, params, creator_id, created_at
		FROM generation_criteria
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`

	deleteCriteriaSQL = `
		DELETE FROM generation_criteria
		WHERE id = $1
	`
)

type postgresCriteriaRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresCriteriaRepository(db *pgxpool.Pool, logger *zap.Logger) CriteriaRepository {
	return &postgresCriteriaRepository{
		db:     db,
		logger: logger.Named("criteria_repo"),
	}
}

func (r *postgresCriteriaRepository) Create(ctx context.Context, criteria *models.GenerationCriteria) error {
	params, err := json.Marshal(criteria.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria params: %w", err)
	}

	_, err = r.db.Exec(ctx, createCriteriaSQL,
		criteria.ID,
		criteria.Name,
		criteria.Description,
		params,
		criteria.CreatorID,
		criteria.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create criteria: %w", err)
	}

	r.logger.Info("Criteria created",
		zap.String("criteria_id", criteria.ID.String()),
		zap.String("creator_id", criteria.CreatorID.String()))
	return nil
}

func (r *postgresCriteriaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationCriteria, error) {
	criteria := &models.GenerationCriteria{}
	var params []byte
	err := r.db.QueryRow(ctx, getCriteriaByIDSQL, id).Scan(
		&criteria.ID,
		&criteria.Name,
		&criteria.Description,
		&params,
		&criteria.CreatorID,
		&criteria.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get criteria %s: %w", id, err)
	}

	if err := json.Unmarshal(params, &criteria.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal criteria params for %s: %w", id, err)
	}
	return criteria, nil
}

func (r *postgresCriteriaRepository) List(ctx context.Context, creatorID uuid.UUID) ([]models.GenerationCriteria, error) {
	rows, err := r.db.Query(ctx, listCriteriaSQL, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var result []models.GenerationCriteria
	for rows.Next() {
		var c models.GenerationCriteria
		var params []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &params, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan criteria row: %w", err)
		}
		if err := json.Unmarshal(params, &c.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal criteria params for %s: %w", c.ID, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate criteria rows: %w", err)
	}
	return result, nil
}

func (r *postgresCriteriaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteCriteriaSQL, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return models.ErrCriteriaInUse
		}
		return fmt.Errorf("failed to delete criteria %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	r.logger.Info("Criteria deleted", zap.String("criteria_id", id.String()))
	return nil
}
