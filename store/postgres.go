package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// PostgresModelStore implements ModelStore backed by the models table of
// the embedded migrations.
type PostgresModelStore struct {
	db *sql.DB
}

// NewPostgresModelStore wraps an open connection pool
func NewPostgresModelStore(db *sql.DB) *PostgresModelStore {
	return &PostgresModelStore{db: db}
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Add inserts a new model
func (s *PostgresModelStore) Add(ctx context.Context, m *Model) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	options, err := json.Marshal(m.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	constraints, err := json.Marshal(m.Constraints)
	if err != nil {
		return fmt.Errorf("failed to encode constraints: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (id, name, digest, options, constraints, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Name, m.Digest, string(options), string(constraints), m.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}
	return nil
}

// Get retrieves a model by ID
func (s *PostgresModelStore) Get(ctx context.Context, id string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, digest, options, constraints, created_at
		FROM models
		WHERE id = $1
	`, id)

	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "22" {
		// not a valid uuid
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return m, nil
}

// List returns all models, oldest first
func (s *PostgresModelStore) List(ctx context.Context) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, digest, options, constraints, created_at
		FROM models
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}
	return models, nil
}

// Delete removes a model
func (s *PostgresModelStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = $1`, id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "22" {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (*Model, error) {
	var (
		m                    Model
		options, constraints []byte
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Digest, &options, &constraints, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &m.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := json.Unmarshal(constraints, &m.Constraints); err != nil {
		return nil, fmt.Errorf("failed to decode constraints: %w", err)
	}
	return &m, nil
}
