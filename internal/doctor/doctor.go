// Package doctor runs self-checks over the formula catalog, the symbolic
// kernel and the loaded configuration.
package doctor

import (
	"errors"
	"fmt"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/config"
)

// ErrChecksFailed is returned by Report.Err when any check errored.
var ErrChecksFailed = errors.New("doctor checks failed")

// Status is the outcome of one check.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status name in JSON and YAML reports.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Categories group checks in the report.
const (
	CategoryCatalog = "Catalog"
	CategoryKernel  = "Kernel"
	CategoryConfig  = "Configuration"
)

// CheckResult is what a check reports.
type CheckResult struct {
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Status   Status   `json:"status" yaml:"status"`
	Message  string   `json:"message" yaml:"message"`
	Details  []string `json:"details,omitempty" yaml:"details,omitempty"`
	FixHint  string   `json:"fix_hint,omitempty" yaml:"fix_hint,omitempty"`
}

// CheckContext is the input shared by all checks.
type CheckContext struct {
	Entries []eeformula.Entry
	Config  *config.Config
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Description() string
	Category() string
	Run(ctx *CheckContext) *CheckResult
}

// BaseCheck carries the descriptive fields every check shares.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
	CheckCategory    string
}

func (b BaseCheck) Name() string        { return b.CheckName }
func (b BaseCheck) Description() string { return b.CheckDescription }
func (b BaseCheck) Category() string    { return b.CheckCategory }

// Doctor runs registered checks in order.
type Doctor struct {
	checks []Check
}

// New returns a Doctor with no checks.
func New() *Doctor { return &Doctor{} }

// Default returns a Doctor with every built-in check registered.
func Default() *Doctor {
	d := New()
	d.Register(
		NewCatalogCheck(),
		NewRoundTripCheck(),
		NewCrossCheck(),
		NewInverseCheck(),
		NewConfigCheck(),
	)
	return d
}

// Register appends checks.
func (d *Doctor) Register(checks ...Check) {
	d.checks = append(d.checks, checks...)
}

// Checks returns the registered checks.
func (d *Doctor) Checks() []Check { return d.checks }

// Run executes every check. A panicking check is reported as an error
// rather than aborting the run.
func (d *Doctor) Run(ctx *CheckContext) *Report {
	if ctx.Entries == nil {
		ctx.Entries = eeformula.All()
	}
	report := &Report{}
	for _, c := range d.checks {
		res := runOne(c, ctx)
		if res.Name == "" {
			res.Name = c.Name()
		}
		res.Category = c.Category()
		report.Results = append(report.Results, res)
	}
	return report
}

func runOne(c Check, ctx *CheckContext) (res *CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			res = &CheckResult{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("check panicked: %v", r)}
		}
	}()
	return c.Run(ctx)
}

// Report collects the results of a run.
type Report struct {
	Results []*CheckResult `json:"results" yaml:"results"`
}

// Counts returns the number of results per status.
func (r *Report) Counts() (ok, warnings, errs int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			ok++
		case StatusWarning:
			warnings++
		case StatusError:
			errs++
		}
	}
	return ok, warnings, errs
}

// Summary is a one-line tally.
func (r *Report) Summary() string {
	ok, warnings, errs := r.Counts()
	return fmt.Sprintf("%d passed, %d warnings, %d failed", ok, warnings, errs)
}

// Err is ErrChecksFailed when any check errored.
func (r *Report) Err() error {
	if _, _, errs := r.Counts(); errs > 0 {
		return fmt.Errorf("%w: %s", ErrChecksFailed, r.Summary())
	}
	return nil
}
