package manager

import (
	"context"

	"todo-api/internal/models"
)

// Репозитории реализуются пакетом storage.
// Отсутствующие записи возвращаются как apperr.ErrNotFound, нарушения уникальности как apperr.ErrConflict.

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type TagRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// TaskRepository всегда фильтрует по владельцу
type TaskRepository interface {
	CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, ownerID, id int64) (*models.Task, error)
	ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id int64, upd models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id int64) error
}
