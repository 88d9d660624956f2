package manager

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"todo-api/internal/apperr"
	"todo-api/internal/logger"
	"todo-api/internal/models"
)

const MaxTagNameLength = 50

// TagManager управляет общим словарём тегов
type TagManager struct {
	tags    TagRepository
	metrics *Metrics
}

func NewTagManager(tags TagRepository, metrics *Metrics) *TagManager {
	return &TagManager{tags: tags, metrics: metrics}
}

func (gm *TagManager) List(ctx context.Context) ([]models.Tag, error) {
	tags, err := gm.tags.ListTags(ctx)
	gm.metrics.observeTag("list", err)
	return tags, err
}

func (gm *TagManager) Get(ctx context.Context, id int64) (*models.Tag, error) {
	tag, err := gm.tags.GetTag(ctx, id)
	gm.metrics.observeTag("get", err)
	return tag, err
}

// Create отклоняет пустые имена
func (gm *TagManager) Create(ctx context.Context, name string) (tag *models.Tag, err error) {
	defer func() {
		gm.metrics.observeTag("create", err)
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return nil, apperr.Invalid("name", fmt.Sprintf("must not exceed %d characters", MaxTagNameLength))
	}

	tag, err = gm.tags.CreateTag(ctx, name)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Тег создан", "tagID", tag.ID, "name", tag.Name)
	return tag, nil
}

// Delete: ErrNotFound для отсутствующего тега, ErrConflict если тег используется
func (gm *TagManager) Delete(ctx context.Context, id int64) (err error) {
	defer func() {
		gm.metrics.observeTag("delete", err)
	}()

	if err := gm.tags.DeleteTag(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "Тег удалён", "tagID", id)
	return nil
}
