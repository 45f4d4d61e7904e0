// Package main is the entry point for the shopcore database migration tool.
// It applies the embedded schema migrations for either backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/config"
	"github.com/prn-tf/shopcore/internal/repository/postgres"
	"github.com/prn-tf/shopcore/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is the slice of the database layer this tool needs.
type migrator interface {
	Migrate(ctx context.Context) error
	Version(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Shopcore Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		withDB(func(ctx context.Context, db migrator) error {
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			v, err := db.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("schema at version %d\n", v)
			return nil
		})

	case "status":
		withDB(func(ctx context.Context, db migrator) error {
			v, err := db.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("schema at version %d\n", v)
			return nil
		})

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// withDB opens the configured database and runs fn against it.
func withDB(fn func(ctx context.Context, db migrator) error) {
	cfg, err := config.Load(os.Getenv("SHOPCORE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	ctx := context.Background()

	var db migrator
	switch cfg.Database.Driver {
	case "sqlite":
		sdb, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			os.Exit(1)
		}
		db = sdb
	case "postgres":
		pdb, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			os.Exit(1)
		}
		db = pdb
	default:
		fmt.Fprintf(os.Stderr, "unknown database driver %q\n", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Shopcore Migration Tool

Usage:
  shopcore-migrate <command>

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Configuration is read the same way the server reads it; set
SHOPCORE_CONFIG to point at a config file.

Examples:
  shopcore-migrate up
  shopcore-migrate status`)
}
