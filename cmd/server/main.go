// Package main runs the electional engine service:
// - HTTP API (calendar, filters, astronomy lookups, generation)
// - Websocket generation stream with progress
// - Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"electional-engine/internal/api"
	"electional-engine/internal/aspects"
	"electional-engine/internal/astrocontext"
	"electional-engine/internal/calendar"
	"electional-engine/internal/config"
	"electional-engine/internal/domain"
	"electional-engine/internal/ephemeris"
	"electional-engine/internal/generator"
	"electional-engine/internal/messaging"
	"electional-engine/internal/storage"
	chstore "electional-engine/internal/storage/clickhouse"
	"electional-engine/internal/storage/memory"
	pgstore "electional-engine/internal/storage/postgres"
	"electional-engine/internal/storage/sqlite"
)

// stores holds the storage implementations selected by configuration.
type stores struct {
	remote    storage.EventStore // nil when no authoritative database is configured
	local     storage.EventStore
	dayScores storage.DayScoreStore
	runs      storage.GenerationRunStore
}

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Parse flags (config values as defaults)
	addr := flag.String("addr", cfg.Server.Addr(), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", cfg.Storage.PostgresDSN, "PostgreSQL connection string (remote event store)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.Storage.ClickHouseDSN, "ClickHouse connection string (day scores)")
	sqlitePath := flag.String("sqlite-path", cfg.Storage.SQLitePath, "SQLite file for the local event collection")
	natsURL := flag.String("nats-url", cfg.NATS.URL, "NATS server URL (empty disables publishing)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage only")
	verbose := flag.Bool("verbose", cfg.Generator.Verbose, "Verbose component logging")
	flag.Parse()

	if *useMemory {
		*postgresDSN, *clickhouseDSN, *sqlitePath = "", "", ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	st, cleanup, err := createStores(ctx, logger, *postgresDSN, *clickhouseDSN, *sqlitePath)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Optional NATS publisher
	var publisher generator.Publisher
	if *natsURL != "" {
		nc, err := messaging.Connect(messaging.Config{
			URL:            *natsURL,
			Prefix:         cfg.NATS.Prefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectTimeout: cfg.NATS.ConnectTimeout,
		})
		if err != nil {
			logger.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		p := messaging.NewPublisher(nc, cfg.NATS.Prefix)
		publisher = p
		logger.Printf("Publishing generated events on %s", p.Subject())
	}

	// Engine
	adapter := ephemeris.NewAdapter(ephemeris.NewMeanElements())
	detector := aspects.NewDetector(adapter, aspects.Options{Verbose: *verbose})
	astro := astrocontext.NewEvaluator(nil)
	if len(cfg.Mercury.Periods) > 0 {
		astro.Extend(astrocontext.PeriodsFrom(cfg.Mercury.Periods), cfg.Mercury.HorizonEnd)
		logger.Printf("Mercury table extended by %d periods through %s",
			len(cfg.Mercury.Periods), astro.Mercury().Horizon().End.Format(domain.DateLayout))
	}
	book := calendar.New(calendar.Options{
		Remote:  st.remote,
		Local:   st.local,
		Verbose: *verbose,
	})
	gen := generator.New(generator.Options{
		Adapter:    adapter,
		Book:       book,
		Detector:   detector,
		Context:    astro,
		DayScores:  st.dayScores,
		Runs:       st.runs,
		Publisher:  publisher,
		Thresholds: cfg.Generator.Thresholds(),
		MaxPerDay:  cfg.Generator.MaxPerDay,
		MinScore:   cfg.Generator.MinScore,
		Verbose:    *verbose,
	})

	srv := api.New(api.Options{
		Book:            book,
		Generator:       gen,
		Detector:        detector,
		Context:         astro,
		DayScores:       st.dayScores,
		Runs:            st.runs,
		DefaultLocation: cfg.Location,
		CorsOrigins:     cfg.Server.CorsOrigins,
		Verbose:         *verbose,
	})

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Channel to signal completion
	done := make(chan error, 1)
	go func() {
		logger.Printf("Starting HTTP server on %s (%s)", *addr, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
			return
		}
		done <- nil
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-done:
		if err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	go func() {
		sig := <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown failed: %v", err)
	}
	cancel()

	logger.Println("Shutdown complete")
}

// createStores connects the configured backends. Missing backends fall back to
// memory; without PostgreSQL the local collection is authoritative.
func createStores(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN, sqlitePath string) (*stores, func(), error) {
	st := &stores{
		local:     memory.NewEventStore(),
		dayScores: memory.NewDayScoreStore(),
		runs:      memory.NewGenerationRunStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// SQLite (local collection)
	if sqlitePath != "" {
		local, err := sqlite.Open(sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, func() { local.Close() })
		st.local = local
	}

	// PostgreSQL (remote events + runs)
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		applied, err := pgstore.Migrate(ctx, pool)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		if len(applied) > 0 {
			logger.Printf("postgres migrations applied: %v", applied)
		}
		st.remote = pgstore.NewEventStore(pool)
		st.runs = pgstore.NewGenerationRunStore(pool)
	}

	// ClickHouse (calendar heat)
	if clickhouseDSN != "" {
		conn, err := chstore.Migrate(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		st.dayScores = chstore.NewDayScoreStore(conn)
	}

	return st, cleanup, nil
}
