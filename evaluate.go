package eeformula

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/njchilds90/eeformula/symbol"
)

// ErrInvalidValue is wrapped when a bound value is not a finite number.
var ErrInvalidValue = errors.New("invalid value")

// SolveError is the single failure channel of Evaluate. Its message is the
// line shown to the user.
type SolveError struct {
	Err error
}

func (e *SolveError) Error() string { return "Error solving formula: " + e.Err.Error() }
func (e *SolveError) Unwrap() error { return e.Err }

// Bindings maps a variable name to the text the caller supplied for it.
// An empty (or blank) value means the variable is unknown.
type Bindings map[string]string

// Known returns the bound values as floats, skipping blank ones. Every
// non-blank value must parse as a finite number, whether or not the
// formula uses it.
func (b Bindings) Known() (map[string]float64, error) {
	out := make(map[string]float64, len(b))
	for _, name := range b.names() {
		raw := strings.TrimSpace(b[name])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !symbol.IsFinite(v) {
			return nil, fmt.Errorf("%w for %s: %q", ErrInvalidValue, name, b[name])
		}
		out[name] = v
	}
	return out, nil
}

func (b Bindings) names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FromFloats builds Bindings from numeric values.
func FromFloats(values map[string]float64) Bindings {
	b := make(Bindings, len(values))
	for k, v := range values {
		b[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return b
}

// Result is a successful evaluation.
type Result struct {
	Name     string `json:"name" yaml:"name"`
	Equation string `json:"equation" yaml:"equation"`
	// Target is the symbol on the left of the '='.
	Target string `json:"target" yaml:"target"`
	// Value is set when the right-hand side folded to a number.
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	// Solved names the right-hand variable solved for when the target was
	// bound and exactly one variable remained; Roots holds its real roots.
	Solved string    `json:"solved,omitempty" yaml:"solved,omitempty"`
	Roots  []float64 `json:"roots,omitempty" yaml:"roots,omitempty"`
	// Residual is the expression left when neither of the above applied.
	Residual string `json:"residual,omitempty" yaml:"residual,omitempty"`
	// Unknowns lists the variables still unbound in Residual.
	Unknowns []string `json:"unknowns,omitempty" yaml:"unknowns,omitempty"`
	// Rendered is the part of Text after the arrow.
	Rendered string `json:"rendered" yaml:"rendered"`
	Text     string `json:"text" yaml:"text"`
}

// IsNumeric reports whether the evaluation produced numbers rather than a
// residual expression.
func (r Result) IsNumeric() bool { return r.Value != nil || len(r.Roots) > 0 }

// Evaluate substitutes the known values into entry's right-hand side and
// evaluates it numerically.
//
// When every right-hand variable is bound the result is a number. When the
// left-hand variable is bound and exactly one right-hand variable is not,
// that variable is solved for ("R = 3"): exactly when the expression is
// linear in it, by Newton iteration otherwise. If that equation has no real
// root the residual is shown equated to the target, as in
// "I**2 = -5 (no real root)". Otherwise the partially evaluated expression
// is returned; it is not an error. Bound names the formula does not use are
// ignored.
//
// Every failure is a *SolveError.
func Evaluate(entry Entry, bindings Bindings) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, &SolveError{Err: fmt.Errorf("%v", r)}
		}
	}()

	target, rhs, err := entry.Parse()
	if err != nil {
		return Result{}, &SolveError{Err: err}
	}
	known, err := bindings.Known()
	if err != nil {
		return Result{}, &SolveError{Err: err}
	}

	free := symbol.FreeSymbols(rhs)
	values := make(map[string]symbol.Expr, len(known))
	for name, v := range known {
		if _, ok := free[name]; ok {
			values[name] = symbol.NFloat(v)
		}
	}
	out, err := symbol.Evalf(symbol.Subs(rhs, sortedKeys(known), values))
	if err != nil {
		return Result{}, &SolveError{Err: err}
	}

	res = Result{Name: entry.Name, Equation: entry.Equation, Target: target}
	switch {
	case isNum(out):
		v := out.(*symbol.Num).Float64()
		if !symbol.IsFinite(v) {
			return Result{}, &SolveError{Err: fmt.Errorf("%w: %s", symbol.ErrNotFinite, out)}
		}
		res.Value = &v
		res.Rendered = symbol.FormatFloat(v)
	default:
		unknowns := symbol.Symbols(out)
		lhs, lhsBound := known[target]
		res.Residual = out.String()
		res.Unknowns = unknowns
		res.Rendered = res.Residual
		if len(unknowns) == 1 && lhsBound {
			roots := solveFor(out, unknowns[0], lhs)
			if len(roots) == 0 {
				res.Rendered = fmt.Sprintf("%s = %s (no real root)", res.Residual, symbol.FormatFloat(lhs))
				break
			}
			res.Residual, res.Unknowns = "", nil
			res.Solved = unknowns[0]
			res.Roots = roots
			res.Rendered = renderRoots(unknowns[0], roots)
		}
	}
	res.Text = fmt.Sprintf("%s: %s → %s", entry.Name, entry.Equation, res.Rendered)
	return res, nil
}

// solveFor finds the real roots of expr = target in name.
func solveFor(expr symbol.Expr, name string, target float64) []float64 {
	f := symbol.AddOf(expr, symbol.NFloat(-target))
	if roots, ok := solveLinear(f, name); ok {
		return roots
	}
	r := symbol.SolveNewton(f, name, symbol.NewtonOptions{Scale: math.Max(math.Abs(target), 1e-300)})
	return r.Floats()
}

// solveLinear solves f = 0 exactly when f is a*name + b with constant a.
func solveLinear(f symbol.Expr, name string) ([]float64, bool) {
	a, ok := symbol.Diff(f, name).Eval()
	if !ok || a.IsZero() {
		return nil, false
	}
	b, ok := symbol.Simplify(f.Sub(name, symbol.N(0))).Eval()
	if !ok {
		return nil, false
	}
	roots := symbol.SolveLinear(a, b).Floats()
	if len(roots) != 1 || !symbol.IsFinite(roots[0]) {
		return nil, false
	}
	return roots, true
}

func renderRoots(name string, roots []float64) string {
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = symbol.FormatFloat(r)
	}
	return name + " = " + strings.Join(parts, " or ")
}

func isNum(e symbol.Expr) bool {
	_, ok := e.(*symbol.Num)
	return ok
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
