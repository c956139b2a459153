// Command fluidserve runs a simulation and streams it to websocket clients.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pythonian23/stablefluid/config"
	"github.com/pythonian23/stablefluid/scene"
	"github.com/pythonian23/stablefluid/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = use config)")
	verbose := flag.Bool("v", false, "Log client traffic")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	f, err := cfg.NewFluid()
	if err != nil {
		slog.Error("failed to create fluid", "error", err)
		os.Exit(1)
	}
	brush, err := scene.NewBrush(cfg.Brush)
	if err != nil {
		slog.Error("invalid brush", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(f, scene.FromConfig(cfg.Emitters), brush, cfg.Server, logger)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shut down")
}
