package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formula form and JSON API over HTTP",
		Long: `Serve the formula form and JSON API over HTTP.

Endpoints:
  GET  /               HTML form
  POST /               form submission
  POST /api/v1/solve   {"name": "ohm", "values": {"I": 2, "R": 3}}
  POST /tool           tool call for agent frameworks
  GET  /schema         tool schema
  GET  /health         liveness check

The server drains in-flight requests on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config.Server
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, opts.logger()).Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "server", err)
	}
	return nil
}
