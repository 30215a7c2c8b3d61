package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the ArtifactStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite artifact store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (bucket, key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get retrieves a blob
func (s *SQLiteStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM artifacts WHERE bucket = ? AND key = ?
	`, bucket, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("sqlite", bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact: %w", err)
	}
	return data, nil
}

// Put stores a blob; the upsert is a single statement
func (s *SQLiteStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (bucket, key, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(bucket, key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, bucket, key, data)
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	return nil
}

// Delete removes a blob
func (s *SQLiteStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM artifacts WHERE bucket = ? AND key = ?
	`, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
		return err
	}
	return nil
}
