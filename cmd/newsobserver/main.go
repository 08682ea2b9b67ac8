package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"newsobserver/internal/app"
	"newsobserver/internal/config"
	"newsobserver/internal/logging"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "--help", "-h", "help":
		printHelp()
		return
	case "serve", "sync", "migrate":
	default:
		fmt.Printf("unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	err = run(ctx, application, cmd)
	if closeErr := application.Close(); closeErr != nil {
		logger.Warn("application close failed", "error", closeErr)
	}
	if err != nil {
		logger.Error("application stopped", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, cmd string) error {
	switch cmd {
	case "migrate":
		return application.Migrate(ctx)
	case "sync":
		report, err := application.SyncOnce(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return application.Serve(ctx)
	}
}

func printHelp() {
	fmt.Print(`Usage:
  newsobserver [command]

Commands:
  serve     run the HTTP API (default)
  sync      fetch top headlines once and store new outlets and articles
  migrate   create the database schema and exit

Configuration is read from the YAML file named by NEWSOBSERVER_CONFIG and
environment overrides (DATABASE_DSN, NEWS_API_KEY, SYNC_KEY, ADMIN_EMAILS,
HTTP_ADDR, KAFKA_BROKERS, KAFKA_TOPIC, LOG_LEVEL).
`)
}
