package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/config"
	"github.com/claude/athletconnect/internal/logging"
	"github.com/claude/athletconnect/internal/mcp"
	"github.com/claude/athletconnect/internal/scoring"
	"github.com/claude/athletconnect/internal/server"
	"github.com/claude/athletconnect/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres catalog only)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("athletconnect", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, closeLog, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	log.Info("AthletConnect starting", "version", Version)

	ctx := context.Background()

	// Catalog: embedded fixtures or Postgres
	var provider catalog.Provider
	if cfg.UsesPostgres() {
		dsn := cfg.Database.DSN()
		version, err := storage.RunMigrations(dsn)
		if err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied", "version", version)

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn, cfg.Database.MaxConns)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Pool.Close()
		log.Info("database connected")

		if cfg.Catalog.Seed {
			seed, err := catalog.DefaultSeed()
			if err != nil {
				log.Error("failed to load seed fixtures", "error", err)
				os.Exit(1)
			}
			n, err := db.SeedFixtures(ctx, seed)
			if err != nil {
				log.Error("seeding failed", "error", err)
				os.Exit(1)
			}
			log.Info("catalog seeded", "inserted", n)
		}
		provider = db
	} else {
		if *migrateOnly {
			log.Info("migrate-only: fixtures catalog has no migrations, exiting")
			return
		}
		fixtures, err := catalog.NewFixtures()
		if err != nil {
			log.Error("failed to load fixtures", "error", err)
			os.Exit(1)
		}
		provider = fixtures
		log.Info("serving embedded fixtures catalog")
	}

	scoringClient := scoring.NewClient(cfg.Scoring.BackendURL, time.Duration(cfg.Scoring.TimeoutSeconds)*time.Second)
	log.Info("scoring backend", "url", scoringClient.BaseURL())

	srv := server.New(provider, scoringClient, log, server.WithCORSOrigin(cfg.Server.CORSOrigin))
	defer srv.Close()
	srv.SetMCP(mcp.NewHTTPHandler(mcp.New(provider, scoringClient, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
