package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/ui"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the formula catalog in lookup order",
		Long: `List the formula catalog in lookup order.

A name query matches the first formula, in this order, whose name contains
it, so "energy" finds the capacitor formula and "reactance" the capacitive
one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := eeformula.All()
			return rootOpts.formatter(cmd).Success(entries, renderCatalog(entries))
		},
	}
}

func renderCatalog(entries []eeformula.Entry) string {
	rows := [][]string{{"#", "Name", "Equation"}}
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, e.Equation})
	}
	return ui.RenderTable(rows)
}
