package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/contractiq/internal/adapter/fsm"
	"github.com/neomorfeo/contractiq/internal/adapter/otel"
	"github.com/neomorfeo/contractiq/internal/adapter/river"
	"github.com/neomorfeo/contractiq/internal/adapter/sqlite"
	"github.com/neomorfeo/contractiq/internal/app"

	handler "github.com/neomorfeo/contractiq/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("contractiq: %v", err)
	}
}

func run() error {
	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "contractiq.db")

	ctx := context.Background()

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	defer store.Close()

	riverClient, err := river.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Warn("river shutdown", "error", err)
		}
	}()

	configStore := otel.NewTracingConfigStore(store)
	repo := otel.NewTracingRepository(store)
	publisher := river.NewPublisher(riverClient)

	// --- Application ---
	registry := app.NewRegistry(configStore, slog.Default())
	contracts := app.NewContractService(repo, registry)
	workflow := app.NewWorkflowService(repo, registry, fsm.New(), publisher)
	billing := app.NewBillingService(registry)
	schema := app.NewSchemaService(store, registry)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("contractiq", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("contractiq", "0.1.0"))
	handler.Register(api, handler.Services{
		Registry:  registry,
		Contracts: contracts,
		Workflow:  workflow,
		Billing:   billing,
		Schema:    schema,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("contractiq listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
