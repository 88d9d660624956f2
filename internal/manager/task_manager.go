package manager

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"todo-api/internal/apperr"
	"todo-api/internal/logger"
	"todo-api/internal/models"
)

const MaxTitleLength = 200

type TaskManager struct {
	tasks   TaskRepository
	metrics *Metrics
}

func NewTaskManager(tasks TaskRepository, metrics *Metrics) *TaskManager {
	return &TaskManager{tasks: tasks, metrics: metrics}
}

// Create создаёт задачу; владельцем становится вызывающий пользователь
func (tm *TaskManager) Create(ctx context.Context, owner *models.User, req models.CreateTaskRequest) (task *models.Task, err error) {
	startTime := time.Now()
	defer func() {
		tm.metrics.observeTask("create", startTime, err)
	}()

	if owner == nil {
		return nil, fmt.Errorf("create task: %w", apperr.ErrUnauthorized)
	}

	nt := req.ToNewTask(owner.ID)
	nt.Title = strings.TrimSpace(nt.Title)

	var fields []apperr.FieldError
	if fe := checkTitle(nt.Title); fe != nil {
		fields = append(fields, *fe)
	}
	if !nt.Status.Valid() {
		fields = append(fields, invalidStatus())
	}
	if nt.TagID != nil && *nt.TagID <= 0 {
		fields = append(fields, apperr.FieldError{Field: "tagId", Message: "must be a positive integer"})
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	task, err = tm.tasks.CreateTask(ctx, nt)
	if err != nil {
		return nil, err
	}

	tm.metrics.taskTitleLength.Observe(float64(len(task.Title)))
	logger.Info(ctx, "Задача создана", "taskID", task.ID, "userID", owner.ID)
	return task, nil
}

// ListForUser возвращает задачи владельца в порядке создания
func (tm *TaskManager) ListForUser(ctx context.Context, owner *models.User) (tasks []models.Task, err error) {
	startTime := time.Now()
	defer func() {
		tm.metrics.observeTask("list", startTime, err)
	}()

	if owner == nil {
		return nil, fmt.Errorf("list tasks: %w", apperr.ErrUnauthorized)
	}
	return tm.tasks.ListTasksByOwner(ctx, owner.ID)
}

func (tm *TaskManager) Get(ctx context.Context, owner *models.User, id int64) (task *models.Task, err error) {
	startTime := time.Now()
	defer func() {
		tm.metrics.observeTask("get", startTime, err)
	}()

	if owner == nil {
		return nil, fmt.Errorf("get task: %w", apperr.ErrUnauthorized)
	}
	return tm.tasks.GetTask(ctx, owner.ID, id)
}

// Update перезаписывает только переданные поля.
// Чужая задача даёт ErrNotFound, как и несуществующая.
func (tm *TaskManager) Update(ctx context.Context, owner *models.User, id int64, req models.UpdateTaskRequest) (task *models.Task, err error) {
	startTime := time.Now()
	defer func() {
		tm.metrics.observeTask("update", startTime, err)
	}()

	if owner == nil {
		return nil, fmt.Errorf("update task: %w", apperr.ErrUnauthorized)
	}

	upd := req.ToTaskUpdate()

	var fields []apperr.FieldError
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		upd.Title = &title
		if fe := checkTitle(title); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		fields = append(fields, invalidStatus())
	}
	if upd.TagSet && upd.TagID != nil && *upd.TagID <= 0 {
		fields = append(fields, apperr.FieldError{Field: "tagId", Message: "must be a positive integer"})
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	task, err = tm.tasks.UpdateTask(ctx, owner.ID, id, upd)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Задача обновлена", "taskID", task.ID, "userID", owner.ID)
	return task, nil
}

func (tm *TaskManager) Delete(ctx context.Context, owner *models.User, id int64) (err error) {
	startTime := time.Now()
	defer func() {
		tm.metrics.observeTask("delete", startTime, err)
	}()

	if owner == nil {
		return fmt.Errorf("delete task: %w", apperr.ErrUnauthorized)
	}
	if err := tm.tasks.DeleteTask(ctx, owner.ID, id); err != nil {
		return err
	}

	logger.Info(ctx, "Задача удалена", "taskID", id, "userID", owner.ID)
	return nil
}

func checkTitle(title string) *apperr.FieldError {
	if title == "" {
		return &apperr.FieldError{Field: "title", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &apperr.FieldError{Field: "title", Message: fmt.Sprintf("must not exceed %d characters", MaxTitleLength)}
	}
	return nil
}

func invalidStatus() apperr.FieldError {
	names := make([]string, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		names[i] = string(s)
	}
	return apperr.FieldError{Field: "status", Message: "must be one of " + strings.Join(names, ", ")}
}
