package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
)

func (s *DB) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *DB) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.QueryRowContext(ctx, s.q("SELECT id, name FROM tags WHERE id = ?"), id).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("тег с ID %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &tag, nil
}

func (s *DB) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	err := s.db.QueryRowContext(ctx, s.q("INSERT INTO tags (name) VALUES (?) RETURNING id"), name).Scan(&tag.ID)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return nil, fmt.Errorf("тег %q уже существует: %w", name, apperr.ErrConflict)
		}
		return nil, err
	}
	return &tag, nil
}

// DeleteTag удаляет тег. Тег, на который ссылаются задачи, удалить нельзя (ErrConflict).
func (s *DB) DeleteTag(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.tagExists(ctx, tx, id); err != nil {
			return err
		}

		var refs int
		if err := tx.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM tasks WHERE tag_id = ?"), id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("тег %d используется в %d задачах: %w", id, refs, apperr.ErrConflict)
		}

		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM tags WHERE id = ?"), id); err != nil {
			if s.dialect.isForeignKeyViolation(err) {
				return fmt.Errorf("тег %d используется: %w", id, apperr.ErrConflict)
			}
			return err
		}
		return nil
	})
}

func (s *DB) tagExists(ctx context.Context, q queryer, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, s.q("SELECT 1 FROM tags WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("тег с ID %d: %w", id, apperr.ErrNotFound)
	}
	return err
}
