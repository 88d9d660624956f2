package main

import (
	"context"
	"flag"
	"os"

	"todo-api/internal/config"
	"todo-api/internal/logger"
	"todo-api/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()
	ctx := context.Background()

	// миграции не подписывают токены, секрет им не нужен
	cfg, err := config.Load(*configPath)
	if err != nil && !config.OnlyMissingSecret(err) {
		logger.Error(ctx, err, "Ошибка загрузки конфигурации")
		os.Exit(1)
	}

	logger.Info(ctx, "🔄 Применяем схему...", "driver", cfg.DBDriver)

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error(ctx, err, "❌ Ошибка открытия БД")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error(ctx, err, "❌ Ошибка миграции")
		os.Exit(1)
	}
	logger.Info(ctx, "🎉 Миграция завершена успешно!")
}
