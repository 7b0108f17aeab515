package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/chessgame-go/internal/api"
	"github.com/mcoot/chessgame-go/internal/config"
	"github.com/mcoot/chessgame-go/internal/factory"
	"github.com/mcoot/chessgame-go/internal/middleware"
	"github.com/mcoot/chessgame-go/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		LobbyController:    app.LobbyController,
		GameController:     app.GameController,
		Metrics:            middleware.NewMetrics("chess"),
		UI:                 web.NewRouter(web.RouterConfig{Logger: logger}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      cfg.AuthRateLimit,
		AuthRateBurst:      cfg.AuthRateBurst,
	})

	server := api.NewServer(router, cfg.Server(), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			stop()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
