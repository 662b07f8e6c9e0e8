package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"product-template-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var connected atomic.Bool

func Connected() bool { return connected.Load() }

func dsn(cfg config.PostgresConfig, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbname)
}

// ConnectAndCreateDB creates cfg.DBname when missing, connects to it and applies
// schema.sql. The schema is idempotent so it runs on every start.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	slog.Info("connecting to postgres", "host", cfg.Host, "port", cfg.Port, "user", cfg.Username, "dbname", cfg.DBname)

	defaultDB, err := sql.Open("postgres", dsn(cfg, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	err = defaultDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if !exists {
		if _, err = defaultDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		slog.Info("database created", "dbname", cfg.DBname)
	}

	db, err := sqlx.Connect("postgres", dsn(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := executeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	connected.Store(true)
	return db, nil
}

var schemaLocations = []string{
	"schema.sql",
	"/app/schema.sql",
}

func executeSchema(db *sqlx.DB) error {
	var schemaPath string
	for _, location := range append(schemaLocations, filepath.Join(os.Getenv("PWD"), "schema.sql")) {
		if _, err := os.Stat(location); err == nil {
			schemaPath = location
			break
		}
	}
	if schemaPath == "" {
		return fmt.Errorf("schema.sql not found in any expected locations: %v", schemaLocations)
	}

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema.sql from %s: %w", schemaPath, err)
	}

	applied := 0
	for _, statement := range splitStatements(string(content)) {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("statement %d: %w", applied+1, err)
		}
		applied++
	}
	slog.Info("schema applied", "path", schemaPath, "statements", applied)
	return nil
}

// splitStatements drops comment lines and splits on semicolons.
func splitStatements(schema string) []string {
	var lines []string
	for _, line := range strings.Split(schema, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			lines = append(lines, line)
		}
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// RetryConnectOnFailed keeps reconnecting every wait until it succeeds or ctx ends.
func RetryConnectOnFailed(ctx context.Context, wait time.Duration, cfg config.PostgresConfig) (*sqlx.DB, error) {
	ticker := time.NewTicker(wait)
	defer ticker.Stop()
	for {
		db, err := ConnectAndCreateDB(cfg)
		if err == nil {
			slog.Info("database retry connection succeeded")
			return db, nil
		}
		slog.Error("failed to retry connect database", "error", err, "next_retry", wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
