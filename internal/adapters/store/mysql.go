package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the ArtifactStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL artifact store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			bucket VARCHAR(255) NOT NULL,
			artifact_key VARCHAR(512) NOT NULL,
			data LONGBLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (bucket, artifact_key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Get retrieves a blob
func (s *MySQLStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM artifacts WHERE bucket = ? AND artifact_key = ?
	`, bucket, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("mysql", bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact: %w", err)
	}
	return data, nil
}

// Put stores a blob
func (s *MySQLStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (bucket, artifact_key, data)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			data = VALUES(data)
	`, bucket, key, data)
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	return nil
}

// Delete removes a blob
func (s *MySQLStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM artifacts WHERE bucket = ? AND artifact_key = ?
	`, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
		return err
	}
	return nil
}
