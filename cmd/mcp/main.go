package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/taskchat/internal/config"
	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/mcpserver"
	"github.com/msomdec/taskchat/internal/repository/postgres"
	"github.com/msomdec/taskchat/internal/repository/sqlite"
	"github.com/msomdec/taskchat/internal/service"
)

const version = "0.1.0"

// main starts the MCP server on stdio. Stdout belongs to the MCP transport,
// so all logging goes to stderr.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("failed to serve MCP", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.MCPToken == "" {
		return fmt.Errorf("MCP_TOKEN environment variable is required; obtain one via POST /auth/login")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	authService, err := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}

	// The operator token goes through the same verification path as a Bearer
	// header; a missing, tampered, or expired token stops the process here.
	subjectID, err := authService.VerifyToken(cfg.MCPToken)
	if err != nil {
		return fmt.Errorf("verify MCP_TOKEN: %w", err)
	}
	user, err := authService.GetUserByID(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("look up token subject: %w", err)
	}
	slog.Info("MCP server starting", "subject", user.Email)

	taskService := service.NewTaskService(db.Tasks())
	srv := mcpserver.New(taskService, subjectID, version)
	return srv.Serve(ctx)
}

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
