package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula/internal/doctor"
	"github.com/njchilds90/eeformula/internal/ui"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the catalog, the expression engine and the configuration",
		Long: `Check the catalog, the expression engine and the configuration.

Checks:
  catalog      names are unique and every equation parses
  round-trip   parsed expressions re-parse from their printed and JSON forms
  cross-check  results agree with an independent evaluator
  inverse      solving for any single unknown recovers the input
  config       configuration values are valid

The command exits 1 if any check failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(rootOpts, cmd, doctor.Default())
		},
	}
}

// runDoctor prints the report. Structured output of a failed run is an
// error response carrying the report as details.
func runDoctor(opts *RootOptions, cmd *cobra.Command, d *doctor.Doctor) error {
	report := d.Run(&doctor.CheckContext{Config: opts.Config})
	for _, res := range report.Results {
		opts.logger().Debug("check", "name", res.Name, "status", res.Status.String())
	}

	out := opts.formatter(cmd)
	failed := report.Err()
	if failed != nil && out.structured() {
		_ = out.Error(CodeChecksFailed, failed.Error(), report)
		return NewSilentExit(ExitFailure, failed.Error())
	}
	if err := out.Success(report, renderReport(report, opts.Verbose)); err != nil {
		return err
	}
	if failed != nil {
		return NewSilentExit(ExitFailure, failed.Error())
	}
	return nil
}

func renderReport(report *doctor.Report, verbose bool) string {
	var sb strings.Builder
	category := ""
	for _, res := range report.Results {
		if res.Category != category {
			if category != "" {
				sb.WriteString("\n")
			}
			category = res.Category
			sb.WriteString(ui.CategoryStyle.Render(category))
			sb.WriteString("\n")
		}

		line := res.Name + ": " + res.Message
		switch res.Status {
		case doctor.StatusOK:
			sb.WriteString("  " + ui.RenderPass(line))
		case doctor.StatusWarning:
			sb.WriteString("  " + ui.RenderWarn(line))
		default:
			sb.WriteString("  " + ui.RenderFail(line))
		}
		sb.WriteString("\n")

		if res.Status != doctor.StatusOK || verbose {
			for _, d := range res.Details {
				for _, l := range strings.Split(d, "\n") {
					sb.WriteString("      " + ui.MutedStyle.Render(l) + "\n")
				}
			}
		}
		if res.FixHint != "" && res.Status != doctor.StatusOK {
			sb.WriteString("      " + ui.IconInfo + " " + res.FixHint + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(report.Summary())
	sb.WriteString("\n")
	return sb.String()
}
