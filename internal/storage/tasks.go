package storage

import (
	"context"
	"database/sql"
	"fmt"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
)

const selectTasks = `
	SELECT t.id, t.title, t.content, t.status, t.user_id, t.tag_id, tg.name, t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN tags tg ON tg.id = t.tag_id`

// CreateTask проверяет тег и вставляет задачу в одной транзакции
func (s *DB) CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error) {
	var task *models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if nt.TagID != nil {
			if err := s.tagExists(ctx, tx, *nt.TagID); err != nil {
				return err
			}
		}

		now := s.now()
		query := `
		INSERT INTO tasks (title, content, status, user_id, tag_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

		var id int64
		err := tx.QueryRowContext(ctx, s.q(query),
			nt.Title, nt.Content, string(nt.Status), nt.OwnerID, nullableID(nt.TagID), now, now,
		).Scan(&id)
		if err != nil {
			if s.dialect.isForeignKeyViolation(err) {
				return fmt.Errorf("тег или владелец задачи не найден: %w", apperr.ErrNotFound)
			}
			return err
		}

		task, err = s.getTask(ctx, tx, nt.OwnerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask возвращает задачу владельца; чужая задача неотличима от отсутствующей
func (s *DB) GetTask(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	return s.getTask(ctx, s.db, ownerID, id)
}

// ListTasksByOwner возвращает задачи в порядке создания
func (s *DB) ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, s.q(selectTasks+" WHERE t.user_id = ? ORDER BY t.id"), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *DB) UpdateTask(ctx context.Context, ownerID, id int64, upd models.TaskUpdate) (*models.Task, error) {
	var task *models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getTask(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}

		// Обновляем поля
		if upd.Title != nil {
			current.Title = *upd.Title
		}
		if upd.Content != nil {
			current.Content = *upd.Content
		}
		if upd.Status != nil {
			current.Status = *upd.Status
		}
		if upd.TagSet {
			if upd.TagID != nil {
				if err := s.tagExists(ctx, tx, *upd.TagID); err != nil {
					return err
				}
			}
			current.TagID = upd.TagID
		}

		query := `
		UPDATE tasks
		SET title = ?, content = ?, status = ?, tag_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

		_, err = tx.ExecContext(ctx, s.q(query),
			current.Title, current.Content, string(current.Status), nullableID(current.TagID), s.now(),
			id, ownerID,
		)
		if err != nil {
			if s.dialect.isForeignKeyViolation(err) {
				return fmt.Errorf("тег задачи не найден: %w", apperr.ErrNotFound)
			}
			return err
		}

		task, err = s.getTask(ctx, tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *DB) DeleteTask(ctx context.Context, ownerID, id int64) error {
	result, err := s.db.ExecContext(ctx, s.q("DELETE FROM tasks WHERE id = ? AND user_id = ?"), id, ownerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("задача с ID %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *DB) getTask(ctx context.Context, q queryer, ownerID, id int64) (*models.Task, error) {
	rows, err := q.QueryContext(ctx, s.q(selectTasks+" WHERE t.id = ? AND t.user_id = ?"), id, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("задача с ID %d: %w", id, apperr.ErrNotFound)
	}
	return &tasks[0], nil
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		var (
			task    models.Task
			status  string
			tagID   sql.NullInt64
			tagName sql.NullString
		)
		err := rows.Scan(
			&task.ID, &task.Title, &task.Content, &status, &task.UserID,
			&tagID, &tagName, &task.CreatedAt, &task.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		task.Status = models.TaskStatus(status)
		if tagID.Valid {
			id := tagID.Int64
			task.TagID = &id
			task.Tag = &models.Tag{ID: id, Name: tagName.String}
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
