package symbol

import (
	"math"
	"sort"
)

// SolveResult holds the real roots found by a solver.
type SolveResult struct {
	Solutions []Expr
	ExactForm bool
	Error     string
}

// Floats returns the solutions as float64 values.
func (r SolveResult) Floats() []float64 {
	out := make([]float64, 0, len(r.Solutions))
	for _, s := range r.Solutions {
		if n, ok := s.Eval(); ok {
			out = append(out, n.Float64())
		}
	}
	return out
}

// SolveLinear solves a*x + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	if aok && bok {
		if an.IsZero() {
			if bn.IsZero() {
				return SolveResult{Error: "identity (0 = 0): infinite solutions"}
			}
			return SolveResult{Error: "no solution (inconsistent)"}
		}
		return SolveResult{Solutions: []Expr{numMul(numNeg(bn), numRecip(an))}, ExactForm: !an.approx && !bn.approx}
	}
	return SolveResult{Solutions: []Expr{MulOf(N(-1), b, PowOf(a, N(-1)))}}
}

// NewtonOptions tunes SolveNewton. Zero values select the defaults.
type NewtonOptions struct {
	// Starts are the initial guesses. Defaults to ±10^k for k in
	// [-15, 15], which covers component values from femtofarads to
	// gigahertz.
	Starts []float64
	// Tol is the relative step size at which an iteration has converged.
	Tol float64
	// MaxIter bounds the iterations per starting point.
	MaxIter int
	// Scale is the magnitude the residual is measured against when a
	// converged point is accepted as a root.
	Scale float64
}

func defaultStarts() []float64 {
	starts := make([]float64, 0, 62)
	for k := -15; k <= 15; k++ {
		x := math.Pow(10, float64(k))
		starts = append(starts, x, -x)
	}
	return starts
}

// SolveNewton finds the real roots of expr = 0 in varName by Newton
// iteration from every starting point, keeping the distinct roots in
// ascending order. expr must have no other free symbols.
func SolveNewton(expr Expr, varName string, opts NewtonOptions) SolveResult {
	if len(opts.Starts) == 0 {
		opts.Starts = defaultStarts()
	}
	if opts.Tol <= 0 {
		opts.Tol = 1e-12
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 100
	}
	scale := math.Abs(opts.Scale)
	if scale == 0 {
		scale = 1
	}

	deriv := Diff(expr, varName)
	f := func(x float64) float64 {
		v, err := EvalFloat(expr, map[string]float64{varName: x})
		if err != nil {
			return math.NaN()
		}
		return v
	}
	df := func(x float64) float64 {
		v, err := EvalFloat(deriv, map[string]float64{varName: x})
		if err != nil {
			return math.NaN()
		}
		return v
	}

	var roots []float64
	for _, x := range opts.Starts {
		for iter := 0; iter < opts.MaxIter; iter++ {
			fx := f(x)
			dfx := df(x)
			if !IsFinite(fx) || !IsFinite(dfx) || dfx == 0 {
				break
			}
			step := fx / dfx
			x -= step
			if !IsFinite(x) {
				break
			}
			if math.Abs(step) <= opts.Tol*math.Abs(x) || step == 0 {
				if r := f(x); IsFinite(r) && math.Abs(r) <= 1e-9*scale {
					roots = appendRoot(roots, x)
				}
				break
			}
		}
	}
	sort.Float64s(roots)
	solutions := make([]Expr, len(roots))
	for i, r := range roots {
		solutions[i] = NFloat(r)
	}
	if len(solutions) == 0 {
		return SolveResult{Error: "no real root found"}
	}
	return SolveResult{Solutions: solutions}
}

func appendRoot(roots []float64, x float64) []float64 {
	for _, r := range roots {
		if math.Abs(r-x) <= 1e-6*math.Max(math.Abs(r), math.Abs(x)) {
			return roots
		}
	}
	return append(roots, x)
}
