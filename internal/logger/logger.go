package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
)

type Level = log.Level

const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

var std = log.NewWithOptions(os.Stderr, log.Options{
	Level:           LevelInfo,
	ReportTimestamp: true,
	Prefix:          "todo-api",
})

// SetLevel меняет минимальный уровень логирования
func SetLevel(level Level) {
	std.SetLevel(level)
}

// SetOutput перенаправляет вывод (используется в тестах)
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// ParseLevel понимает debug, info, warn и error
func ParseLevel(s string) (Level, error) {
	return log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
}

func Debug(ctx context.Context, msg string, keyvals ...interface{}) {
	std.Debug(msg, withRequestID(ctx, keyvals)...)
}

func Info(ctx context.Context, msg string, keyvals ...interface{}) {
	std.Info(msg, withRequestID(ctx, keyvals)...)
}

func Warn(ctx context.Context, msg string, keyvals ...interface{}) {
	std.Warn(msg, withRequestID(ctx, keyvals)...)
}

// Error пишет сообщение вместе с ошибкой; err может быть nil
func Error(ctx context.Context, err error, msg string, keyvals ...interface{}) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	std.Error(msg, withRequestID(ctx, keyvals)...)
}

func withRequestID(ctx context.Context, keyvals []interface{}) []interface{} {
	if ctx == nil {
		return keyvals
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return append([]interface{}{"request_id", id}, keyvals...)
	}
	return keyvals
}
