package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB is the SQLite-backed implementation of domain.Database.
type DB struct {
	db *sql.DB

	users         *UserRepository
	tasks         *TaskRepository
	conversations *ConversationRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement; cascade deletes depend on it.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

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

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.db)
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Users() domain.UserRepository { return d.users }

func (d *DB) Tasks() domain.TaskRepository { return d.tasks }

func (d *DB) Conversations() domain.ConversationRepository { return d.conversations }
