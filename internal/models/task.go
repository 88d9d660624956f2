package models

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses перечисляет допустимые статусы в порядке жизненного цикла
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	for _, st := range TaskStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    TaskStatus `json:"status"`
	UserID    int64      `json:"userId"`
	TagID     *int64     `json:"tagId"`
	Tag       *Tag       `json:"tag"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewTask - данные для вставки новой задачи
type NewTask struct {
	OwnerID int64
	Title   string
	Content string
	Status  TaskStatus
	TagID   *int64
}

// TaskUpdate - поля для частичного обновления; nil означает "не менять"
type TaskUpdate struct {
	Title   *string
	Content *string
	Status  *TaskStatus
	// TagSet отличает "тег не передан" от "тег сброшен" (TagID == nil)
	TagSet bool
	TagID  *int64
}

// OptionalID запоминает, присутствовал ли ключ в JSON
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Структуры HTTP-запросов. tag_id принимается наравне с tagId для старых клиентов.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Status      TaskStatus `json:"status"`
	TagID       *int64     `json:"tagId"`
	LegacyTagID *int64     `json:"tag_id"`
}

func (r CreateTaskRequest) ToNewTask(ownerID int64) NewTask {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	tagID := r.TagID
	if tagID == nil {
		tagID = r.LegacyTagID
	}
	return NewTask{
		OwnerID: ownerID,
		Title:   r.Title,
		Content: r.Content,
		Status:  status,
		TagID:   tagID,
	}
}

type UpdateTaskRequest struct {
	Title       *string     `json:"title,omitempty"`
	Content     *string     `json:"content,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	TagID       OptionalID  `json:"tagId"`
	LegacyTagID OptionalID  `json:"tag_id"`
}

func (r UpdateTaskRequest) ToTaskUpdate() TaskUpdate {
	upd := TaskUpdate{
		Title:   r.Title,
		Content: r.Content,
		Status:  r.Status,
	}
	switch {
	case r.TagID.Set:
		upd.TagSet, upd.TagID = true, r.TagID.Value
	case r.LegacyTagID.Set:
		upd.TagSet, upd.TagID = true, r.LegacyTagID.Value
	}
	return upd
}
