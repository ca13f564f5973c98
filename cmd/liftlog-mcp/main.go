package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/advice"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/content"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// Logs go to stderr; stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store := content.New(content.Config{
		BaseURL:    cfg.Content.BaseURL,
		ProjectID:  cfg.Content.ProjectID,
		Dataset:    cfg.Content.Dataset,
		APIVersion: cfg.Content.APIVersion,
		Token:      cfg.Content.Token,
	})
	adviser := advice.New(cfg.Advice.BaseURL, cfg.Advice.APIKey, cfg.Advice.Model)

	mcpServer := mcp.New(store, adviser, cfg.UserID, Version, log)

	log.Info("LiftLog MCP server starting", "version", Version, "user", cfg.UserID)
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
