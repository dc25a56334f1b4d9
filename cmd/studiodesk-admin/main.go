package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/danicastudios/studiodesk/config"
	"github.com/danicastudios/studiodesk/internal/bootstrap"
	"github.com/danicastudios/studiodesk/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 2 * time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"assign-role": {
			name:        "assign-role",
			description: "Assign a role to an identity on behalf of a director",
			run:         runAssignRole,
		},
		"show-user": {
			name:        "show-user",
			description: "Show a user's directory role, admin flag, and profile",
			run:         runShowUser,
		},
		"clear-role-cache": {
			name:        "clear-role-cache",
			description: "Drop a user's cached role entries from Redis",
			run:         runClearRoleCache,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: studiodesk-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-20s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type assignRoleOptions struct {
	Caller   string
	Identity string
	Role     string
}

type showUserOptions struct {
	UserID string
}

type clearRoleCacheOptions struct {
	UserID string
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")

	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func runAssignRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseAssignRoleFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	roles, cleanup, err := buildRoleService(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	if assignErr := roles.Assign(ctx, service.AssignInput{
		Caller:   opts.Caller,
		Identity: opts.Identity,
		Role:     opts.Role,
	}); assignErr != nil {
		return fmt.Errorf("assign role: %w", assignErr)
	}

	return writef(os.Stdout, "Assigned role %q to %s (acting director: %s)\n", opts.Role, opts.Identity, opts.Caller)
}

func runShowUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseShowUserFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	roles, cleanup, err := buildRoleService(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := roles.Me(ctx, opts.UserID)
	if err != nil {
		return fmt.Errorf("fetch user %q: %w", opts.UserID, err)
	}

	return printUserView(os.Stdout, opts.UserID, view)
}

func printUserView(w io.Writer, userID string, view *service.CallerView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if err := writef(tw, "User:\t%s\n", userID); err != nil {
		return err
	}
	if err := writef(tw, "Role:\t%s\n", view.Role); err != nil {
		return err
	}
	if err := writef(tw, "Admin:\t%t\n", view.Admin); err != nil {
		return err
	}
	if view.Profile != nil {
		if err := writef(tw, "Name:\t%s\n", view.Profile.Name); err != nil {
			return err
		}
		if err := writef(tw, "Phone:\t%s\n", view.Profile.Phone); err != nil {
			return err
		}
	} else {
		if err := writef(tw, "Profile:\t(none)\n"); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func runClearRoleCache(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearRoleCacheFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	roles, cleanup, err := buildRoleService(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	roles.InvalidateCaller(ctx, opts.UserID)

	return writef(os.Stdout, "Cleared cached role entries for %s\n", opts.UserID)
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	return opts, nil
}

func parseAssignRoleFlags(args []string) (assignRoleOptions, error) {
	fs := flag.NewFlagSet("assign-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts assignRoleOptions
	fs.StringVar(&opts.Caller, "as", "", "User ID of the acting director (required)")
	fs.StringVar(&opts.Identity, "identity", "", "Target identity reference (required)")
	fs.StringVar(&opts.Role, "role", "", "Role to assign: director, management, or reception (required)")

	if err := fs.Parse(args); err != nil {
		return assignRoleOptions{}, err
	}
	if opts.Caller == "" || opts.Identity == "" || opts.Role == "" {
		return assignRoleOptions{}, fmt.Errorf("assign-role requires -as, -identity, and -role")
	}
	return opts, nil
}

func parseShowUserFlags(args []string) (showUserOptions, error) {
	fs := flag.NewFlagSet("show-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts showUserOptions
	fs.StringVar(&opts.UserID, "user", "", "User ID to inspect (required)")

	if err := fs.Parse(args); err != nil {
		return showUserOptions{}, err
	}
	if opts.UserID == "" {
		return showUserOptions{}, fmt.Errorf("show-user requires -user")
	}
	return opts, nil
}

func parseClearRoleCacheFlags(args []string) (clearRoleCacheOptions, error) {
	fs := flag.NewFlagSet("clear-role-cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts clearRoleCacheOptions
	fs.StringVar(&opts.UserID, "user", "", "User ID whose cached role entries to drop (required)")

	if err := fs.Parse(args); err != nil {
		return clearRoleCacheOptions{}, err
	}
	if opts.UserID == "" {
		return clearRoleCacheOptions{}, fmt.Errorf("clear-role-cache requires -user")
	}
	return opts, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
