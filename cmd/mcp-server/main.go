// cmd/mcp-server/main.go: Standalone HTTP tool server for eeformula
//
// Exposes the formula catalog as an HTTP endpoint for AI agent frameworks.
// It serves the same routes as `eeformula serve` without the CLI.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/config"
	"github.com/njchilds90/eeformula/internal/server"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	configPath := flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/eeformula/config.toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eeformula mcp-server:", err)
		os.Exit(2)
	}
	if *port > 0 {
		cfg.Server.Addr = fmt.Sprintf(":%d", *port)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "eeformula mcp-server:", err)
		os.Exit(2)
	}

	logger := cfg.Log.NewLogger(os.Stderr, false)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("eeformula tool server starting",
		"addr", cfg.Server.Addr,
		"formulas", len(eeformula.All()),
	)
	if err := server.New(cfg.Server, logger).Run(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
