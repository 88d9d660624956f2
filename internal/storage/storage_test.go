package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{Username: "user", Email: email, PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Error("Ожидалась ошибка для неизвестного драйвера")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("повторная миграция: %v", err)
	}
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := createUser(t, db, "test@example.com")
	if u.ID == 0 {
		t.Fatal("ID не заполнен")
	}

	dup := &models.User{Username: "other", Email: "test@example.com", PasswordHash: "hash"}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Ожидался ErrConflict, получено %v", err)
	}

	got, err := db.GetUserByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("неожиданный пользователь: %+v", got)
	}

	if _, err := db.GetUserByID(ctx, u.ID); err != nil {
		t.Errorf("GetUserByID: %v", err)
	}
	if _, err := db.GetUserByID(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Ожидался ErrNotFound, получено %v", err)
	}
	if _, err := db.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Ожидался ErrNotFound, получено %v", err)
	}
}

func TestTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tags, err := db.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("Ожидался пустой не-nil слайс, получено %#v", tags)
	}

	work, err := db.CreateTag(ctx, "work")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := db.CreateTag(ctx, "home"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := db.CreateTag(ctx, "work"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Ожидался ErrConflict, получено %v", err)
	}

	tags, _ = db.ListTags(ctx)
	if len(tags) != 2 || tags[0].Name != "work" || tags[1].Name != "home" {
		t.Errorf("неожиданный список тегов: %+v", tags)
	}

	if _, err := db.GetTag(ctx, work.ID); err != nil {
		t.Errorf("GetTag: %v", err)
	}
	if err := db.DeleteTag(ctx, work.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if err := db.DeleteTag(ctx, work.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Ожидался ErrNotFound, получено %v", err)
	}
}

func TestDeleteReferencedTag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	tag, _ := db.CreateTag(ctx, "work")
	if _, err := db.CreateTask(ctx, models.NewTask{OwnerID: owner.ID, Title: "t", Status: models.StatusPending, TagID: &tag.ID}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := db.DeleteTag(ctx, tag.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Ожидался ErrConflict, получено %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	tag, _ := db.CreateTag(ctx, "work")

	task, err := db.CreateTask(ctx, models.NewTask{
		OwnerID: owner.ID, Title: "Купить молоко", Content: "2 литра",
		Status: models.StatusPending, TagID: &tag.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == 0 || task.UserID != owner.ID || task.Tag == nil || task.Tag.Name != "work" {
		t.Errorf("неожиданная задача: %+v", task)
	}

	title := "Купить кефир"
	status := models.StatusCompleted
	updated, err := db.UpdateTask(ctx, owner.ID, task.ID, models.TaskUpdate{
		Title: &title, Status: &status, TagSet: true, TagID: nil,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != title || updated.Status != status || updated.TagID != nil || updated.Content != "2 литра" {
		t.Errorf("неожиданный результат обновления: %+v", updated)
	}

	got, err := db.GetTask(ctx, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != title || got.Status != status {
		t.Errorf("обновление не сохранилось: %+v", got)
	}

	if err := db.DeleteTask(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := db.DeleteTask(ctx, owner.ID, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Ожидался ErrNotFound, получено %v", err)
	}
}

func TestCreateTaskUnknownTag(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "a@example.com")

	missing := int64(999)
	_, err := db.CreateTask(context.Background(), models.NewTask{
		OwnerID: owner.ID, Title: "t", Status: models.StatusPending, TagID: &missing,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Ожидался ErrNotFound, получено %v", err)
	}

	tasks, _ := db.ListTasksByOwner(context.Background(), owner.ID)
	if len(tasks) != 0 {
		t.Errorf("задача не должна была сохраниться: %+v", tasks)
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	var ids []int64
	for _, title := range []string{"первая", "вторая", "третья"} {
		task, err := db.CreateTask(ctx, models.NewTask{OwnerID: alice.ID, Title: title, Status: models.StatusPending})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		ids = append(ids, task.ID)
	}

	list, err := db.ListTasksByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListTasksByOwner: %v", err)
	}
	if len(list) != 3 || list[0].Title != "первая" || list[2].Title != "третья" {
		t.Errorf("нарушен порядок создания: %+v", list)
	}

	bobs, _ := db.ListTasksByOwner(ctx, bob.ID)
	if len(bobs) != 0 {
		t.Errorf("Боб не должен видеть чужие задачи: %+v", bobs)
	}

	title := "взлом"
	if _, err := db.GetTask(ctx, bob.ID, ids[0]); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetTask: ожидался ErrNotFound, получено %v", err)
	}
	if _, err := db.UpdateTask(ctx, bob.ID, ids[0], models.TaskUpdate{Title: &title}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateTask: ожидался ErrNotFound, получено %v", err)
	}
	if err := db.DeleteTask(ctx, bob.ID, ids[0]); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteTask: ожидался ErrNotFound, получено %v", err)
	}

	got, _ := db.GetTask(ctx, alice.ID, ids[0])
	if got.Title != "первая" {
		t.Errorf("чужое обновление прошло: %+v", got)
	}
}

func TestPostgresRebind(t *testing.T) {
	got := postgresDialect{}.rebind("SELECT 1 FROM tasks WHERE id = ? AND user_id = ?")
	want := "SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "todo.db")
	db, err := Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(dsn)); err != nil {
		t.Errorf("каталог не создан: %v", err)
	}
}

func TestDBDir(t *testing.T) {
	cases := map[string]string{
		":memory:":           "",
		"file:x?mode=memory": "",
		"todo.db":            "",
		"./data/todo.db":     "data",
	}
	for dsn, want := range cases {
		if got := dbDir(dsn); got != want {
			t.Errorf("dbDir(%q) = %q, want %q", dsn, got, want)
		}
	}
}
