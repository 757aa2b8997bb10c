// Package cli implements the eeformula command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula/internal/config"
	"github.com/njchilds90/eeformula/internal/ui"
)

// RootOptions holds global flags for all commands, and the state
// PersistentPreRunE derives from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	Color      string // "auto" | "always" | "never"
	ConfigPath string

	Config    *config.Config
	Logger    *slog.Logger
	RequestID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// NewRootCommand creates the root command for the eeformula CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "eeformula",
		Short: "Electrical engineering formulas, looked up by name and evaluated",
		Long: `Look up an electrical engineering formula by (part of) its name and
evaluate it for the values you know.

Formulas: Ohm's Law, Power, energy stored in a capacitor or inductor,
LC resonant frequency, RLC series impedance, capacitive and inductive
reactance. Run "eeformula list" for the full catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags for "+c.CommandPath(), err)
	})

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "", "color output (auto|always|never)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	// Add subcommands
	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewDoctorCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFormCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil && !IsSilent(err) {
		fmt.Fprintln(os.Stderr, ui.RenderFail(err.Error()))
	}
	return GetExitCode(err)
}

// setup loads the configuration, lets flags override it and prepares the
// logger and color profile.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.Color != "" {
		cfg.Output.Color = o.Color
	}
	if !isValidFormat(cfg.Output.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Output.Format, ValidFormats))
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}

	o.Format = cfg.Output.Format
	o.Config = cfg
	o.RequestID = uuid.NewString()
	o.Logger = cfg.Log.NewLogger(cmd.ErrOrStderr(), o.Verbose).With("request_id", o.RequestID)
	ui.Configure(ui.ColorMode(cfg.Output.Color))

	o.Logger.Debug("config loaded", "path", o.ConfigPath, "format", o.Format, "color", cfg.Output.Color)
	return nil
}

// formatter returns the OutputFormatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		RequestID: o.RequestID,
	}
}

// logger returns the configured logger, or a discarding one when setup
// has not run.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
