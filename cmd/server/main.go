package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	webAdapter "workshop-manager/internal/adapters/web"
	"workshop-manager/internal/ai"
	"workshop-manager/internal/app"
	"workshop-manager/internal/config"
	"workshop-manager/internal/db"
	"workshop-manager/pkg/logger"
)

func main() {
	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	var assistant ai.AssistantService
	if cfg.OpenAIKey != "" {
		assistant = ai.NewAssistant(cfg.OpenAIKey)
	} else {
		log.Warn("OPENAI_API_KEY is not set; assistant endpoint will be unavailable")
	}

	svc := app.NewService(ctx, pool, assistant, app.Options{
		Settings:     cfg.Settings,
		DeletePolicy: cfg.ProductDeletePolicy,
		Rounding:     cfg.InvoiceQtyRounding,
	}, logger.Named(log, "app"))

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, logger.Named(log, "web"))

	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
