// Package main is the entry point for the shopcore admin CLI.
// This tool provides administrative commands for managing users and
// their permissions directly against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/config"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
	"github.com/prn-tf/shopcore/internal/repository/postgres"
	"github.com/prn-tf/shopcore/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "version":
		fmt.Printf("Shopcore Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user-create":
		runCommand(args, cmdUserCreate)

	case "user-list":
		runCommand(args, cmdUserList)

	case "grant":
		runCommand(args, cmdGrant)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runCommand opens the database and hands control to the command body.
func runCommand(args []string, body func(ctx context.Context, users repository.UserRepository, cfg *config.Config, args []string) error) {
	configPath := os.Getenv("SHOPCORE_CONFIG")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	ctx := context.Background()

	users, closer, err := openUserRepository(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := body(ctx, users, cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func cmdUserCreate(ctx context.Context, users repository.UserRepository, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("user-create", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address (required)")
	password := fs.String("password", "", "password (generated when omitted)")
	admin := fs.Bool("admin", false, "grant the ADMIN permission")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	exists, err := users.ExistsByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("email %s is already registered", *email)
	}

	generated := false
	if *password == "" {
		*password = uuid.NewString()
		generated = true
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	hash, err := hasher.Hash(*password)
	if err != nil {
		return err
	}

	user := domain.NewUser(*name, *email, hash)
	if *admin {
		user.Permissions = append(user.Permissions, domain.PermissionAdmin)
	}

	if err := users.Create(ctx, user); err != nil {
		return err
	}

	fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
	if generated {
		fmt.Printf("generated password: %s\n", *password)
	}
	return nil
}

func cmdUserList(ctx context.Context, users repository.UserRepository, _ *config.Config, args []string) error {
	fs := flag.NewFlagSet("user-list", flag.ExitOnError)
	offset := fs.Int("offset", 0, "list offset")
	limit := fs.Int("limit", 50, "list limit")
	fs.Parse(args)

	result, err := users.List(ctx, repository.ListOptions{Offset: *offset, Limit: *limit})
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %-30s %-30s %s\n", "ID", "EMAIL", "NAME", "PERMISSIONS")
	for _, u := range result.Items {
		tags := make([]string, len(u.Permissions))
		for i, p := range u.Permissions {
			tags[i] = string(p)
		}
		fmt.Printf("%-6d %-30s %-30s %s\n", u.ID, u.Email, u.Name, strings.Join(tags, ","))
	}
	fmt.Printf("total: %d\n", result.Total)
	return nil
}

func cmdGrant(ctx context.Context, users repository.UserRepository, _ *config.Config, args []string) error {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	id := fs.Int64("id", 0, "user id (required)")
	perms := fs.String("permissions", "", "comma-separated permission tags, replacing the current set")
	fs.Parse(args)

	if *id == 0 {
		return fmt.Errorf("--id is required")
	}

	parsed, err := domain.ParsePermissions(strings.Split(*perms, ","))
	if err != nil {
		return err
	}

	if err := users.ReplacePermissions(ctx, *id, parsed); err != nil {
		return err
	}

	fmt.Printf("replaced permissions of user %d with %s\n", *id, *perms)
	return nil
}

// openUserRepository opens the configured backend and returns its user
// repository plus a closer for the underlying connection.
func openUserRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), db, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Shopcore Admin CLI

Usage:
  shopcore-admin <command> [arguments]

Commands:
  user-create   Create a user (--email, --name, --password, --admin)
  user-list     List users (--offset, --limit)
  grant         Replace a user's permission set (--id, --permissions)
  version       Print version information
  help          Show this help message

Configuration is read the same way the server reads it; set
SHOPCORE_CONFIG to point at a config file.

Examples:
  shopcore-admin user-create --email admin@example.com --name Admin --admin
  shopcore-admin user-list --limit 20
  shopcore-admin grant --id 3 --permissions USER,ITEMDELETE`)
}
