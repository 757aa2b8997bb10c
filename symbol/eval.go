package symbol

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFinite is returned when a closed expression has no finite value
	// (1/0, sqrt(-1), 0**0).
	ErrNotFinite = errors.New("expression does not evaluate to a finite number")

	// ErrUnbound is returned by EvalFloat for a symbol missing from env.
	ErrUnbound = errors.New("unbound symbol")
)

// Evalf numerically evaluates e: every number becomes a float, constants
// are replaced by their values and every closed subtree is folded. If free
// symbols remain the partially evaluated expression is returned; it is not
// an error.
func Evalf(e Expr) (Expr, error) {
	out := evalf(e)
	if _, ok := out.(*Num); ok {
		return out, nil
	}
	if len(FreeSymbols(out)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFinite, out)
	}
	return out, nil
}

func evalf(e Expr) Expr {
	var out Expr
	switch v := e.(type) {
	case *Num:
		return v.toApprox()
	case *Sym:
		return v
	case *Const:
		return NFloat(v.value)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = evalf(t)
		}
		out = AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = evalf(f)
		}
		out = MulOf(factors...)
	case *Pow:
		out = PowOf(evalf(v.base), evalf(v.exp))
	case *Func:
		out = funcOf(v.name, evalf(v.arg)).Simplify()
	default:
		out = e
	}
	if n, ok := out.Eval(); ok {
		return n.toApprox()
	}
	return out
}

// Subs substitutes every binding into e, in the order of names.
func Subs(e Expr, names []string, values map[string]Expr) Expr {
	for _, name := range names {
		if v, ok := values[name]; ok {
			e = e.Sub(name, v)
		}
	}
	return e.Simplify()
}

// EvalFloat evaluates e in plain float64 arithmetic with the symbols bound
// by env. It does not simplify, which makes it the fast path for the
// Newton iteration. Results may be NaN or ±Inf.
func EvalFloat(e Expr, env map[string]float64) (float64, error) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), nil
	case *Const:
		return v.value, nil
	case *Sym:
		x, ok := env[v.name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnbound, v.name)
		}
		return x, nil
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			x, err := EvalFloat(t, env)
			if err != nil {
				return 0, err
			}
			acc += x
		}
		return acc, nil
	case *Mul:
		acc := 1.0
		for _, f := range v.factors {
			x, err := EvalFloat(f, env)
			if err != nil {
				return 0, err
			}
			acc *= x
		}
		return acc, nil
	case *Pow:
		b, err := EvalFloat(v.base, env)
		if err != nil {
			return 0, err
		}
		x, err := EvalFloat(v.exp, env)
		if err != nil {
			return 0, err
		}
		return math.Pow(b, x), nil
	case *Func:
		x, err := EvalFloat(v.arg, env)
		if err != nil {
			return 0, err
		}
		return functions[v.name](x), nil
	}
	return 0, fmt.Errorf("cannot evaluate %T", e)
}
