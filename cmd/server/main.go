package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liamcoop/bpmnconstraints/engine"
	"github.com/liamcoop/bpmnconstraints/internal/config"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
	"github.com/liamcoop/bpmnconstraints/migrations"
	"github.com/liamcoop/bpmnconstraints/store"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	ctx := context.Background()
	st, db, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open model store", "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	defaults, err := cfg.CompilerOptions()
	if err != nil {
		logger.Fatal("invalid compiler options", "error", err)
	}
	en, err := engine.New(engine.Config{Defaults: defaults, CacheSize: cfg.CacheSize}, st)
	if err != nil {
		logger.Fatal("failed to create engine", "error", err)
	}

	server := NewServer(en, db)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped", "counters", logger.Snapshot())
}

// openStore returns a PostgreSQL store, migrated to the latest schema,
// when databaseURL is set and an in-memory store otherwise.
func openStore(ctx context.Context, databaseURL string) (store.ModelStore, *sql.DB, error) {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, models are kept in memory")
		return store.NewInMemoryModelStore(), nil, nil
	}
	if err := migrations.Up(databaseURL); err != nil {
		return nil, nil, err
	}
	db, err := store.OpenPostgres(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgresModelStore(db), db, nil
}
