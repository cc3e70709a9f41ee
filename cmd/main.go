/**
 * @description
 * Entry point for the onboarding-service. Wires configuration, the Postgres
 * pool, the Redis progress store, the RabbitMQ producer and the maintenance
 * sweeper into the flow service, then serves the HTTP API with graceful
 * shutdown.
 */
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/eventra/onboarding-service/internal/api"
	"github.com/eventra/onboarding-service/internal/app"
	"github.com/eventra/onboarding-service/internal/config"
	"github.com/eventra/onboarding-service/internal/flow"
	"github.com/eventra/onboarding-service/internal/store"
	"github.com/eventra/onboarding-service/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// If a platform-provided PORT is set (e.g., Railway/Render), prefer it
	if port := os.Getenv("PORT"); port != "" {
		cfg.ServerPort = port
	}

	// Establish database connection pool
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}
	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Ensure required tables exist (idempotent)
	if _, err := dbpool.Exec(context.Background(), schema); err != nil {
		log.Printf("Warning: failed ensuring tables (may already exist): %v", err)
	}

	// Redis-backed progress slot
	progressStore := store.NewRedisProgressStore(store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisUseTLS,
	})
	defer progressStore.Close()

	// Set up RabbitMQ producer; allow nil on failure so onboarding keeps
	// working when the broker is down (events are best-effort anyway).
	var publisher app.Publisher
	if p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
		log.Printf("WARNING: Failed to connect to RabbitMQ at startup: %v. Continuing without MQ.", err)
	} else {
		publisher = p
		defer p.Close()
		log.Println("RabbitMQ producer connected")
	}

	// Repositories and the flow service
	profileRepo := store.NewPostgresProfileRepository(dbpool)
	orgRepo := store.NewPostgresOrganizationRepository(dbpool)
	progress := flow.NewProgress(progressStore)
	service := app.NewService(progress, profileRepo, orgRepo, publisher)

	// Maintenance sweeper
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	sweeper := app.NewSweeper(progressStore, orgRepo, logger, cfg.SweepSchedule)
	sweeper.Start()
	defer sweeper.Stop()

	// Router and handlers
	handler := api.NewHandler(service)
	router := api.NewRouter(handler, cfg.ClerkJWKSURL)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}

const schema = `
    CREATE TABLE IF NOT EXISTS profiles (
        user_id TEXT PRIMARY KEY,
        display_name TEXT NOT NULL,
        handle TEXT NOT NULL,
        avatar_url TEXT,
        organization TEXT,
        bio TEXT,
        skills TEXT[],
        experience_level TEXT,
        twitter TEXT,
        linkedin TEXT,
        instagram TEXT,
        website TEXT,
        phone_number TEXT,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS preferences (
        user_id TEXT PRIMARY KEY,
        event_interests TEXT[],
        looking_for TEXT[],
        notification_cadence TEXT,
        expected_event_types TEXT[],
        team_size TEXT,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS role_grants (
        user_id TEXT NOT NULL,
        role TEXT NOT NULL,
        granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (user_id, role)
    );
    CREATE TABLE IF NOT EXISTS organizations (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT NOT NULL,
        slug TEXT NOT NULL UNIQUE,
        category TEXT,
        description TEXT,
        website TEXT,
        contact_email TEXT,
        owner_id TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS organization_join_requests (
        organization_id UUID NOT NULL REFERENCES organizations(id),
        user_id TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'pending',
        requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (organization_id, user_id)
    );
`
