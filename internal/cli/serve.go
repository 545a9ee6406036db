package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookstore/internal/entrypoint"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	return entrypoint.Run(a.cfg, a.version, a.logger)
}
