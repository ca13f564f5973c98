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

	"github.com/claude/liftlog/internal/advice"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/content"
	"github.com/claude/liftlog/internal/prefs"
	"github.com/claude/liftlog/internal/reconcile"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open local prefs store (weight unit preference survives restarts)
	prefsDB, err := prefs.Open(cfg.StateDir)
	if err != nil {
		log.Error("failed to open prefs store", "error", err)
		os.Exit(1)
	}
	defer prefsDB.Close()

	// Wire the core: content store client, session store, reconciler
	store := content.New(content.Config{
		BaseURL:    cfg.Content.BaseURL,
		ProjectID:  cfg.Content.ProjectID,
		Dataset:    cfg.Content.Dataset,
		APIVersion: cfg.Content.APIVersion,
		Token:      cfg.Content.Token,
	})
	sessions := session.New(prefsDB, log)
	watch := session.NewStopwatch()
	rec := reconcile.New(store, log)
	adviser := advice.New(cfg.Advice.BaseURL, cfg.Advice.APIKey, cfg.Advice.Model)

	srv := server.New(store, adviser, sessions, watch, rec, cfg.UserID, cfg.Auth.APIKey, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr, "user", cfg.UserID)

	httpSrv := &http.Server{Handler: srv}

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
