package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/repository/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// DB is the PostgreSQL-backed implementation of domain.Database, for
// deployments where a single-file store is not enough.
type DB struct {
	db *sql.DB

	users         *UserRepository
	tasks         *TaskRepository
	conversations *ConversationRepository
}

// New opens a PostgreSQL pool for the given DSN.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		db:            db,
		users:         &UserRepository{db: db},
		tasks:         &TaskRepository{db: db},
		conversations: &ConversationRepository{db: db},
	}, nil
}

// Migrate applies all pending schema migrations via goose.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, d.db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Users() domain.UserRepository { return d.users }

func (d *DB) Tasks() domain.TaskRepository { return d.tasks }

func (d *DB) Conversations() domain.ConversationRepository { return d.conversations }
