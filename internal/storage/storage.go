package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todo-api/internal/logger"
)

// DB - хранилище поверх database/sql; реализует репозитории пользователей, тегов и задач
type DB struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// dialect скрывает различия SQLite и PostgreSQL
type dialect interface {
	name() string
	schema() []string
	rebind(query string) string
	isUniqueViolation(err error) bool
	isForeignKeyViolation(err error) bool
}

// queryer - общее у *sql.DB и *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Open открывает хранилище. driver: "sqlite" или "postgres".
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)

	switch driver {
	case "sqlite":
		db, err = openSQLite(ctx, dsn)
		d = sqliteDialect{}
	case "postgres":
		db, err = openPostgres(dsn)
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("неизвестный драйвер БД %q", driver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	logger.Info(ctx, "База данных подключена", "driver", d.name())
	return &DB{db: db, dialect: d, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate создаёт таблицы, если их ещё нет
func (s *DB) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка создания схемы: %w", err)
		}
	}
	return nil
}

func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Закрытие соединения
func (s *DB) Close() error {
	return s.db.Close()
}

// withTx выполняет fn в одной транзакции; при ошибке делает откат
func (s *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *DB) q(query string) string {
	return s.dialect.rebind(query)
}
