package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/taskchat/internal/config"
	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/handler"
	"github.com/msomdec/taskchat/internal/repository/postgres"
	"github.com/msomdec/taskchat/internal/repository/sqlite"
	"github.com/msomdec/taskchat/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := openDatabase(cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.DatabaseDriver)

	authService, err := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to build auth service", "error", err)
		os.Exit(1)
	}
	taskService := service.NewTaskService(db.Tasks())
	chatService := service.NewChatService(db.Conversations(), taskService)
	limiter := service.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, taskService, chatService, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(handler.CORS(cfg.CORSOrigins, mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openDatabase opens the store named by DATABASE_DRIVER. Both backends
// satisfy domain.Database, so everything past this point is driver-agnostic.
func openDatabase(cfg *config.Config) (domain.Database, error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		return sqlite.New(cfg.DatabaseDSN)
	case "postgres":
		return postgres.New(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}
