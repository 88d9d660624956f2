package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"todo-api/internal/config"
	"todo-api/internal/logger"
	"todo-api/internal/manager"
	"todo-api/internal/server"
	"todo-api/internal/storage"
	"todo-api/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error(context.Background(), err, "Сервис остановлен с ошибкой")
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.Info(ctx, "Запуск todo-api...", "addr", cfg.Addr, "db", cfg.DBDriver)

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	validator, err := validation.New()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := manager.NewMetrics(registry)

	tokens := manager.NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.AccessTokenTTL.Duration, cfg.RefreshTokenTTL.Duration)

	router := server.NewRouter(server.Deps{
		Auth:        manager.NewAuthManager(db, tokens, metrics, cfg.BcryptCost),
		Tasks:       manager.NewTaskManager(db, metrics),
		Tags:        manager.NewTagManager(db, metrics),
		Validator:   validator,
		Health:      db.Ping,
		Registry:    registry,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP сервер слушает", "addr", cfg.Addr, "cors", cfg.CORSOrigins)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Получен сигнал остановки, завершаем запросы...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info(shutdownCtx, "Сервер остановлен")
	return nil
}
