package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	lsmhttp "lsmkv/internal/http"
	"lsmkv/pkg/config"
	"lsmkv/pkg/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "lsmkv: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := initLogger(&cfg); err != nil {
		return err
	}

	db, err := store.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	server := lsmhttp.NewServer(db, strconv.Itoa(cfg.Server.Port))
	server.SetReadHeaderTimeout(cfg.Server.ReadHeaderTimeout)
	if err := server.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("shutting down")

	if err := server.Stop(); err != nil {
		slog.Error("error stopping server", "error", err)
	}
	return nil
}
