package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/suggest"
	"github.com/njchilds90/eeformula/internal/ui"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Fields map[string]*string // form fields by symbol
	Set    map[string]string
}

// fieldFlags names the flag of each form field.
var fieldFlags = map[string]string{
	"V": "voltage",
	"I": "current",
	"R": "resistance",
	"C": "capacitance",
	"L": "inductance",
	"f": "frequency",
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts, Fields: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "solve <formula name>",
		Short: "Evaluate a formula for the values you know",
		Long: `Evaluate the first formula whose name contains the given text
(case-insensitive) with the values you know.

When every variable on the right-hand side is known the result is a number.
When the left-hand side and all but one right-hand variable are known, that
variable is solved for. Otherwise the partly evaluated expression is shown.

Examples:
  eeformula solve ohm -I 2 -R 3
  eeformula solve "ohm's law" -V 6 -I 2
  eeformula solve resonant -L 1e-3 -C 1e-6
  eeformula solve impedance -R 3 --set X_L=10 --set X_C=6`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, strings.Join(args, " "), cmd)
		},
	}

	for _, f := range eeformula.FormFields {
		v := new(string)
		opts.Fields[f.Symbol] = v
		cmd.Flags().StringVarP(v, fieldFlags[f.Symbol], f.Symbol, "",
			fmt.Sprintf("%s %s in %s", strings.ToLower(f.Label), f.Symbol, f.Unit))
	}
	cmd.Flags().StringToStringVar(&opts.Set, "set", nil, "bind any variable, e.g. --set X_L=10")

	return cmd
}

// bindings merges the field flags and --set values. --set wins.
func (o *SolveOptions) bindings() eeformula.Bindings {
	b := eeformula.Bindings{}
	for sym, v := range o.Fields {
		if v != nil && *v != "" {
			b[sym] = *v
		}
	}
	for k, v := range o.Set {
		b[strings.TrimSpace(k)] = v
	}
	return b
}

func runSolve(opts *SolveOptions, name string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	values := opts.bindings()

	out.VerboseLog("solving %q with %v", name, values)
	res, err := eeformula.HandleResult(name, values)
	if err != nil {
		return reportSolveError(out, name, err)
	}

	out.VerboseLog("matched %s", res.Name)
	return out.Success(res, ui.RenderAnswer(res.Text)+"\n")
}

// reportSolveError prints err the way Handle would, with suggestions for
// unknown names, and returns a silent ExitFailure.
func reportSolveError(out *OutputFormatter, name string, err error) error {
	msg := eeformula.Message(err)
	switch {
	case errors.Is(err, eeformula.ErrEmptyQuery):
		_ = out.Error(CodeEmptyQuery, msg, nil)
	case errors.Is(err, eeformula.ErrNotFound):
		suggestions := eeformula.Suggest(name, 3)
		if out.structured() {
			_ = out.Error(CodeNotFound, msg, map[string]interface{}{"suggestions": suggestions})
		} else {
			_ = out.Error(CodeNotFound, msg, nil)
			if len(suggestions) > 0 {
				fmt.Fprint(out.GetErrWriter(), "\n"+suggest.FormatSuggestion("Formula", name, suggestions))
			}
		}
	default:
		if out.structured() {
			_ = out.Error(CodeSolveFailed, msg, err.Error())
		} else {
			_ = out.Error(CodeSolveFailed, ui.FailStyle.Render(msg), nil)
		}
	}
	return NewSilentExit(ExitFailure, msg)
}
