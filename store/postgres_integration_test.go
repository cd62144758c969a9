//go:build integration
// +build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/migrations"
	"github.com/liamcoop/bpmnconstraints/store"
	"github.com/liamcoop/bpmnconstraints/templates"
)

// setupTestDB starts PostgreSQL, applies the embedded migrations and
// returns a store over it
func setupTestDB(t *testing.T) (*store.PostgresModelStore, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "models_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	url := fmt.Sprintf("postgres://test:test@%s:%s/models_test?sslmode=disable", host, port.Port())

	if err := migrations.Up(url); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := store.OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	cleanup := func() {
		db.Close()
		container.Terminate(ctx)
	}
	return store.NewPostgresModelStore(db), cleanup
}

func TestPostgresModelStore_CRUD(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	c, err := compiler.NewConstraint(templates.Succession, "Receive order", "Ship goods")
	if err != nil {
		t.Fatalf("NewConstraint: %v", err)
	}
	id := uuid.NewString()
	m := &store.Model{
		ID:          id,
		Name:        "orders",
		Digest:      "deadbeef",
		Options:     store.Options{SkipNamedGateways: true, Filter: `arity == 2`},
		Constraints: []compiler.CompiledConstraint{c},
	}

	if err := s.Add(ctx, m); err != nil {
		t.Fatalf("Failed to add model: %v", err)
	}
	if err := s.Add(ctx, m); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get model: %v", err)
	}
	if got.Name != "orders" || got.Options.Filter != `arity == 2` || !got.Options.SkipNamedGateways {
		t.Errorf("Unexpected model %+v", got)
	}
	if len(got.Constraints) != 1 || got.Constraints[0].Kind != templates.Succession {
		t.Errorf("Unexpected constraints %+v", got.Constraints)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list models: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 model, got %d", len(list))
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Failed to delete model: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestPostgresModelStore_InvalidID(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := s.Get(context.Background(), "not-a-uuid"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for malformed id, got %v", err)
	}
}
