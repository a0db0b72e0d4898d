package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/internal/logging"
	"github.com/me/rtsched/internal/server"
	"github.com/me/rtsched/internal/store"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML server config file")
	addr := flag.String("addr", "", "Listen address (default :8080)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	dbPath := flag.String("db", "", "Database path (default ~/.rtsched/rtsched.db, or RTSCHED_DB)")
	workers := flag.Int("workers", 0, "Frame sizes packed in parallel per cyclic analysis (default one per CPU)")
	maxBody := flag.Int64("max-body", 0, "Maximum request body size in bytes (default 1 MiB)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Flags override the config file.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *workers > 0 {
		cfg.Analysis.Workers = *workers
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	if err := logging.CheckFormat(cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".rtsched")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		cfg.DBPath = filepath.Join(dir, "rtsched.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", cfg.DBPath)

	var opts []server.Option
	if *maxBody > 0 {
		opts = append(opts, server.WithMaxBodyBytes(*maxBody))
	}
	srv := server.New(cfg, st, logger, opts...)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "workers", cfg.Analysis.Workers)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
