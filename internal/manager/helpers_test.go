package manager

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/models"
	"todo-api/internal/storage"
)

type testEnv struct {
	db       *storage.DB
	registry *prometheus.Registry
	metrics  *Metrics
	tokens   *TokenIssuer
	auth     *AuthManager
	tasks    *TaskManager
	tags     *TagManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	tokens := NewTokenIssuer("test-secret", "todo-api-test", time.Hour, 24*time.Hour)

	return &testEnv{
		db:       db,
		registry: registry,
		metrics:  metrics,
		tokens:   tokens,
		auth:     NewAuthManager(db, tokens, metrics, bcrypt.MinCost),
		tasks:    NewTaskManager(db, metrics),
		tags:     NewTagManager(db, metrics),
	}
}

func (e *testEnv) register(t *testing.T, username, email string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "testpassword123",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

func ptr[T any](v T) *T { return &v }
