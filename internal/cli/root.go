// Package cli defines the bookstore command line: the HTTP server and the
// maintenance commands that run against the same database.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/logger"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	version string
	cfg     *config.Config
	logger  *slog.Logger
}

// openDatabase opens the configured database. The caller closes it.
func (a *app) openDatabase() (*database.Database, error) {
	db, err := database.NewDatabase(a.cfg.Database, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "bookstore",
		Short: "bookstore - book catalog API server",
		Long: `bookstore serves a book catalog over HTTP. Users can list and search books,
like and bookmark them, and rate them from 1 to 5; every book carries the mean
of its rates.

Configuration is read from the environment and an optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.cfg = cfg
			a.logger = logger.New(cfg.Log, cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a)
		},
	}

	root.AddCommand(
		newServeCommand(a),
		newCreateUserCommand(a),
		newDeleteUserCommand(a),
		newListUsersCommand(a),
		newRecomputeRatingsCommand(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
