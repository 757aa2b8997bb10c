package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/ui"
)

// BatchFile is the YAML document the batch command reads:
//
//	queries:
//	  - name: ohm
//	    values: {I: 2, R: 3}
//	  - name: resonant
//	    values: {L: 1e-3, C: 1e-6}
type BatchFile struct {
	Queries []BatchQuery `yaml:"queries"`
}

// BatchQuery is one lookup-and-evaluate request.
type BatchQuery struct {
	Name   string             `yaml:"name" json:"name"`
	Values eeformula.Bindings `yaml:"values,omitempty" json:"values,omitempty"`
}

// BatchItem is the outcome of one query. Text is exactly what the
// interactive surfaces would show.
type BatchItem struct {
	Query  BatchQuery        `yaml:"query" json:"query"`
	Text   string            `yaml:"text" json:"text"`
	Result *eeformula.Result `yaml:"result,omitempty" json:"result,omitempty"`
	Error  string            `yaml:"error,omitempty" json:"error,omitempty"`
}

// ParseBatch decodes a batch document. Unknown keys are rejected.
func ParseBatch(r io.Reader) (*BatchFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var bf BatchFile
	if err := dec.Decode(&bf); err != nil {
		if errors.Is(err, io.EOF) {
			return &bf, nil
		}
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	return &bf, nil
}

// RunBatch evaluates every query in order.
func RunBatch(bf *BatchFile) []BatchItem {
	items := make([]BatchItem, 0, len(bf.Queries))
	for _, q := range bf.Queries {
		item := BatchItem{Query: q}
		res, err := eeformula.HandleResult(q.Name, q.Values)
		if err != nil {
			item.Text = eeformula.Message(err)
			item.Error = item.Text
		} else {
			item.Text = res.Text
			item.Result = &res
		}
		items = append(items, item)
	}
	return items
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Evaluate a YAML file of queries",
		Long: `Evaluate a YAML file of queries, one result line per query.
Use "-" to read from standard input.

File format:
  queries:
    - name: ohm
      values: {I: 2, R: 3}
    - name: resonant
      values: {L: 1e-3, C: 1e-6}

The command exits 1 if any query failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runBatch(opts *RootOptions, path string, cmd *cobra.Command) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "reading batch file", err)
		}
		r = bytes.NewReader(data)
	}

	out := opts.formatter(cmd)
	bf, err := ParseBatch(r)
	if err != nil {
		msg := "invalid batch file: " + err.Error()
		_ = out.Error(CodeBadInput, msg, nil)
		return NewSilentExit(ExitCommandError, msg)
	}

	items := RunBatch(bf)
	failed := 0
	var sb strings.Builder
	for _, it := range items {
		if it.Error != "" {
			failed++
			sb.WriteString(ui.FailStyle.Render(it.Text))
		} else {
			sb.WriteString(ui.RenderAnswer(it.Text))
		}
		sb.WriteString("\n")
	}
	opts.logger().Debug("batch done", "path", path, "queries", len(items), "failed", failed)

	if err := out.Success(items, sb.String()); err != nil {
		return err
	}
	if failed > 0 {
		return NewSilentExit(ExitFailure, fmt.Sprintf("%d of %d queries failed", failed, len(items)))
	}
	return nil
}
