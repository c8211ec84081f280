package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"minera/internal/models"
)

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) GetActiveByToken(ctx context.Context, token string) (*models.UserToken, error) {
	var userToken models.UserToken

	query := `SELECT * FROM user_tokens WHERE token = $1 AND is_active = TRUE`

	err := r.db.GetContext(ctx, &userToken, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске токена: %w", err)
	}

	return &userToken, nil
}

func (r *tokenRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.UserToken, error) {
	var userToken models.UserToken

	query := `SELECT * FROM user_tokens WHERE user_id = $1 AND is_active = TRUE`

	err := r.db.GetContext(ctx, &userToken, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске токена пользователя: %w", err)
	}

	return &userToken, nil
}

func (r *tokenRepository) Create(ctx context.Context, token *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, token, is_active, created_at)
		VALUES ($1, $2, TRUE, $3)
		RETURNING id
	`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	token.IsActive = true

	err := r.db.GetContext(ctx, &token.ID, query, token.UserID, token.Token, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при создании токена: %w", err)
	}

	return nil
}

func (r *tokenRepository) DeactivateByUserID(ctx context.Context, userID string) error {
	query := `UPDATE user_tokens SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка при деактивации токена: %w", err)
	}

	return nil
}
