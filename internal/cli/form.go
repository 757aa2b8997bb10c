package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula/internal/tui"
	"github.com/njchilds90/eeformula/internal/ui"
)

// NewFormCommand creates the form command.
func NewFormCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill in the formula form in the terminal",
		Long: `Fill in the formula form in the terminal: a formula name and the
voltage, current, resistance, capacitance, inductance and frequency you
know. Press enter to calculate; the last result is printed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			answer, err := tui.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return WrapExitError(ExitCommandError, "running form", err)
			}
			rootOpts.logger().Debug("form closed", "answer", answer)
			if answer != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderAnswer(answer))
			}
			return nil
		},
	}
}
