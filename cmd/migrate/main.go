package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"goeda/adapters/postgres"
	"goeda/internal"
	"goeda/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the DDL instead of applying it")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [--dry-run] [database_url]")
		fmt.Fprintln(os.Stderr, "The database url defaults to DATABASE_URL.")
	}
	flag.Parse()

	_ = godotenv.Load()
	logger := internal.NewLogger(internal.ParseLogLevel(os.Getenv("LOG_LEVEL")))
	defer logger.Sync()

	runner := migration.NewRunner()
	if *dryRun {
		for _, stmt := range runner.Statements() {
			fmt.Printf("%s;\n", stmt)
		}
		return
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if flag.NArg() > 0 {
		databaseURL = flag.Arg(0)
	}
	if databaseURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runner.Run(ctx, db); err != nil {
		logger.Error("Migration %s failed: %v", runner.Version(), err)
		os.Exit(1)
	}
	logger.Info("Migration %s applied", runner.Version())
}
