// Package main runs the LiftTrack MCP server over stdio. It can talk to the
// database directly, or — with -remote — to a running LiftTrack server over
// its REST API (e.g. across a tailnet).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/lifttrack/internal/config"
	"github.com/meltforce/lifttrack/internal/mcp"
	"github.com/meltforce/lifttrack/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a running LiftTrack server (skips direct DB access)")
	userID := flag.Int("user", 1, "user ID for direct DB mode")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote)
		log.Info("MCP server starting", "mode", "remote", "url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("MCP server starting", "mode", "direct", "user", *userID)
	}

	srv := mcp.New(ds, Version, log)

	err := mcpserver.ServeStdio(srv,
		mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, *userID)
		}),
	)
	if err != nil {
		log.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
