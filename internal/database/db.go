package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrNotFound is returned when a query matches no row.
var ErrNotFound = errors.New("record not found")

// DB wraps the database connection and provides access to the repositories
type DB struct {
	conn     *sql.DB
	Users    *UserRepository
	Lists    *ListRepository
	Sessions *SessionRepository
}

// Config holds database configuration
type Config struct {
	DatabasePath string
	// PingAttempts bounds how often the initial ping is retried while the file is locked.
	PingAttempts uint
}

// NewDB creates a new database connection and runs migrations
func NewDB(config Config) (*DB, error) {
	// Ensure the parent directory exists
	dbDir := filepath.Dir(config.DatabasePath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Foreign keys go in the DSN so every pooled connection enforces them.
	connString := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000",
		config.DatabasePath)

	conn, err := sql.Open("sqlite3", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(3)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(15 * time.Minute)

	attempts := config.PingAttempts
	if attempts == 0 {
		attempts = 3
	}
	err = retry.Do(
		conn.Ping,
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[database] ping attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma '%s': %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{
		conn:     conn,
		Users:    NewUserRepository(conn),
		Lists:    NewListRepository(conn),
		Sessions: NewSessionRepository(conn),
	}, nil
}

// runMigrations runs database migrations using Goose
func runMigrations(db *sql.DB) error {
	log.Println("[database] Starting database migrations...")

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		log.Printf("[database] Warning: could not get current DB version: %v", err)
		currentVersion = 0
	}
	log.Printf("[database] Current database version: %d", currentVersion)

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to verify migration version: %w", err)
	}
	log.Printf("[database] Database migrated to version: %d", newVersion)

	for _, table := range []string{"users", "lists", "entries", "sessions"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			return fmt.Errorf("migration verification failed: %s table does not exist: %w", table, err)
		}
	}

	log.Println("[database] Database migrations completed successfully")
	return nil
}

// Ping checks that the connection is still usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Version reports the applied migration version.
func (db *DB) Version() (int64, error) {
	return goose.GetDBVersion(db.conn)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying database connection
func (db *DB) Connection() *sql.DB {
	return db.conn
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
