package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
)

// CreateUser сохраняет пользователя и заполняет ID и CreatedAt
func (s *DB) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = s.now()

	query := `
	INSERT INTO users (username, email, password_hash, created_at)
	VALUES (?, ?, ?, ?)
	RETURNING id`

	err := s.db.QueryRowContext(ctx, s.q(query),
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return fmt.Errorf("email %s уже зарегистрирован: %w", user.Email, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
	SELECT id, username, email, password_hash, created_at
	FROM users WHERE email = ?`

	return s.scanUser(s.db.QueryRowContext(ctx, s.q(query), email), "email "+email)
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
	SELECT id, username, email, password_hash, created_at
	FROM users WHERE id = ?`

	return s.scanUser(s.db.QueryRowContext(ctx, s.q(query), id), fmt.Sprintf("id %d", id))
}

func (s *DB) scanUser(row *sql.Row, key string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с %s: %w", key, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}
