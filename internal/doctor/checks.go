package doctor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Knetic/govaluate"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/symbol"
)

// SampleValues are typical magnitudes for every catalog variable. The
// checks evaluate each formula at these points.
var SampleValues = map[string]float64{
	"V":   12,
	"I":   2,
	"R":   3,
	"C":   1e-6,
	"L":   1e-3,
	"f":   50,
	"X_L": 10,
	"X_C": 6,
}

// relTol is the relative agreement required between independent
// computations of the same quantity.
const relTol = 1e-9

func agree(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// ============================================================
// CatalogCheck
// ============================================================

// CatalogCheck validates the catalog invariants.
type CatalogCheck struct {
	BaseCheck
}

// NewCatalogCheck creates a new catalog check.
func NewCatalogCheck() *CatalogCheck {
	return &CatalogCheck{BaseCheck{
		CheckName:        "catalog",
		CheckDescription: "Names are unique and every equation has one '=' and a parseable right-hand side",
		CheckCategory:    CategoryCatalog,
	}}
}

// Run validates ctx.Entries.
func (c *CatalogCheck) Run(ctx *CheckContext) *CheckResult {
	if len(ctx.Entries) == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: "catalog is empty"}
	}
	if err := eeformula.Validate(ctx.Entries); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "catalog has invalid entries",
			Details: []string{err.Error()},
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d formulas valid", len(ctx.Entries)),
	}
}

// ============================================================
// RoundTripCheck
// ============================================================

// RoundTripCheck verifies that every right-hand side survives printing and
// JSON encoding unchanged.
type RoundTripCheck struct {
	BaseCheck
}

// NewRoundTripCheck creates a new round-trip check.
func NewRoundTripCheck() *RoundTripCheck {
	return &RoundTripCheck{BaseCheck{
		CheckName:        "round-trip",
		CheckDescription: "Parsed expressions re-parse from their printed and JSON forms",
		CheckCategory:    CategoryKernel,
	}}
}

// Run re-parses each right-hand side.
func (c *RoundTripCheck) Run(ctx *CheckContext) *CheckResult {
	var details []string
	for _, e := range ctx.Entries {
		_, rhs, err := e.Parse()
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		again, err := symbol.Parse(rhs.String())
		if err != nil || !again.Equal(rhs) {
			details = append(details, fmt.Sprintf("%s: %q does not re-parse to itself", e.Name, rhs.String()))
			continue
		}
		if err := jsonRoundTrip(rhs); err != nil {
			details = append(details, fmt.Sprintf("%s: %v", e.Name, err))
		}
	}
	if len(details) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%d formula(s) do not round-trip", len(details)),
			Details: details,
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "all expressions round-trip"}
}

func jsonRoundTrip(e symbol.Expr) error {
	s, err := symbol.ToJSON(e)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return err
	}
	back, err := symbol.FromJSON(m)
	if err != nil {
		return err
	}
	if !back.Equal(e) {
		return fmt.Errorf("JSON round trip changed %s into %s", e, back)
	}
	return nil
}

// ============================================================
// CrossCheck
// ============================================================

// CrossCheck evaluates every formula with an independent expression
// engine and compares the numbers.
type CrossCheck struct {
	BaseCheck
}

// NewCrossCheck creates a new cross check.
func NewCrossCheck() *CrossCheck {
	return &CrossCheck{BaseCheck{
		CheckName:        "cross-check",
		CheckDescription: "Results agree with an independent evaluator at sample values",
		CheckCategory:    CategoryKernel,
	}}
}

var govaluateFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sqrt takes one argument, got %d", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("sqrt: argument is %T, not a number", args[0])
		}
		return math.Sqrt(x), nil
	},
}

// Reference evaluates the right-hand side of e with govaluate.
func Reference(e eeformula.Entry, values map[string]float64) (float64, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(e.RHS(), govaluateFunctions)
	if err != nil {
		return 0, err
	}
	params := map[string]interface{}{"pi": math.Pi}
	for k, v := range values {
		params[k] = v
	}
	out, err := expr.Evaluate(params)
	if err != nil {
		return 0, err
	}
	f, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("result is %T, not a number", out)
	}
	return f, nil
}

// Run compares both engines on every entry.
func (c *CrossCheck) Run(ctx *CheckContext) *CheckResult {
	var details []string
	for _, e := range ctx.Entries {
		want, err := Reference(e, SampleValues)
		if err != nil {
			details = append(details, fmt.Sprintf("%s: reference: %v", e.Name, err))
			continue
		}
		res, err := eeformula.Evaluate(e, eeformula.FromFloats(SampleValues))
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		if res.Value == nil {
			details = append(details, fmt.Sprintf("%s: not fully evaluated: %s", e.Name, res.Rendered))
			continue
		}
		if !agree(*res.Value, want, relTol) {
			details = append(details, fmt.Sprintf("%s: got %s, reference %s", e.Name,
				strconv.FormatFloat(*res.Value, 'g', -1, 64), strconv.FormatFloat(want, 'g', -1, 64)))
		}
	}
	if len(details) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%d formula(s) disagree with the reference evaluator", len(details)),
			Details: details,
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d formulas agree with the reference evaluator", len(ctx.Entries)),
	}
}

// ============================================================
// InverseCheck
// ============================================================

// InverseCheck evaluates each formula forward, then binds the result and
// solves for each right-hand variable in turn, expecting the sample value
// back.
type InverseCheck struct {
	BaseCheck
}

// NewInverseCheck creates a new inverse check.
func NewInverseCheck() *InverseCheck {
	return &InverseCheck{BaseCheck{
		CheckName:        "inverse",
		CheckDescription: "Solving for any single unknown recovers the sample value",
		CheckCategory:    CategoryKernel,
	}}
}

// Run solves every (formula, variable) pair.
func (c *InverseCheck) Run(ctx *CheckContext) *CheckResult {
	var details []string
	solved := 0
	for _, e := range ctx.Entries {
		target, rhs, err := e.Parse()
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		forward, err := eeformula.Evaluate(e, eeformula.FromFloats(SampleValues))
		if err != nil || forward.Value == nil {
			details = append(details, fmt.Sprintf("%s: forward evaluation failed", e.Name))
			continue
		}
		for _, drop := range symbol.Symbols(rhs) {
			values := make(map[string]float64, len(SampleValues))
			for k, v := range SampleValues {
				if k != drop {
					values[k] = v
				}
			}
			values[target] = *forward.Value
			res, err := eeformula.Evaluate(e, eeformula.FromFloats(values))
			switch {
			case err != nil:
				details = append(details, fmt.Sprintf("%s for %s: %v", e.Name, drop, err))
			case res.Solved != drop:
				details = append(details, fmt.Sprintf("%s for %s: not solved (%s)", e.Name, drop, res.Rendered))
			case !containsRoot(res.Roots, SampleValues[drop]):
				details = append(details, fmt.Sprintf("%s for %s: roots %v miss %v", e.Name, drop, res.Roots, SampleValues[drop]))
			default:
				solved++
			}
		}
	}
	if len(details) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%d inverse problem(s) failed", len(details)),
			Details: details,
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: fmt.Sprintf("%d inverse problems solved", solved)}
}

func containsRoot(roots []float64, want float64) bool {
	for _, r := range roots {
		if math.Abs(r-want) <= 1e-6*math.Abs(want) {
			return true
		}
	}
	return false
}

// ============================================================
// ConfigCheck
// ============================================================

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	BaseCheck
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck() *ConfigCheck {
	return &ConfigCheck{BaseCheck{
		CheckName:        "config",
		CheckDescription: "Configuration values are valid",
		CheckCategory:    CategoryConfig,
	}}
}

// Run validates ctx.Config.
func (c *ConfigCheck) Run(ctx *CheckContext) *CheckResult {
	if ctx.Config == nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "no configuration loaded",
			FixHint: "Pass --config or create ~/.config/eeformula/config.toml",
		}
	}
	if err := ctx.Config.Validate(); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: err.Error(),
			FixHint: "Fix the value in the config file or the EEFORMULA_* environment",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("listening on %s, log level %s", ctx.Config.Server.Addr, ctx.Config.Log.Level),
	}
}
