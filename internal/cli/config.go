package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, environment and flags merged)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := rootOpts.Config.Encode(&buf); err != nil {
				return WrapExitError(ExitCommandError, "encoding config", err)
			}
			return rootOpts.formatter(cmd).Success(rootOpts.Config, buf.String())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			return rootOpts.formatter(cmd).Success(map[string]string{"path": path}, path+"\n")
		},
	})

	return cmd
}
