// Package eeformula looks up electrical engineering formulas by name and
// evaluates them for the values a caller knows.
//
// The catalog is a fixed, ordered table. A query is matched against it by
// case-insensitive substring containment (first entry wins), the entry's
// right-hand side is parsed with the symbol package, known values are
// substituted and the result is folded numerically. Results that still
// contain unbound variables are returned as residual expressions.
//
// Quick start:
//
//	fmt.Println(eeformula.Handle("ohm", eeformula.Bindings{"I": "2", "R": "3"}))
//	// Ohm's Law: V = I * R → 6
package eeformula

import (
	"fmt"
	"strings"

	"github.com/njchilds90/eeformula/symbol"
)

// Entry is one catalog formula. Equation is always "<symbol> = <expression>".
type Entry struct {
	Name     string `json:"name" yaml:"name"`
	Equation string `json:"equation" yaml:"equation"`
}

// catalog is authored order; Resolve depends on it.
var catalog = []Entry{
	{Name: "Ohm's Law", Equation: "V = I * R"},
	{Name: "Power", Equation: "P = V * I"},
	{Name: "Energy Stored in Capacitor", Equation: "E = 1/2 * C * V**2"},
	{Name: "Energy Stored in Inductor", Equation: "E = 1/2 * L * I**2"},
	{Name: "Resonant Frequency (LC Circuit)", Equation: "f = 1 / (2 * pi * sqrt(L * C))"},
	{Name: "Impedance (RLC series circuit)", Equation: "Z = sqrt(R**2 + (X_L - X_C)**2)"},
	{Name: "Capacitive Reactance", Equation: "X_C = 1 / (2 * pi * f * C)"},
	{Name: "Inductive Reactance", Equation: "X_L = 2 * pi * f * L"},
}

// All returns a copy of the catalog in authored order.
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the catalog names in authored order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}
	return names
}

// Parse splits the equation on its '=' and returns the name of the
// left-hand symbol together with the parsed right-hand side.
func (e Entry) Parse() (string, symbol.Expr, error) {
	eq, err := symbol.ParseEquation(e.Equation)
	if err != nil {
		return "", nil, err
	}
	lhs, ok := eq.LHS.(*symbol.Sym)
	if !ok {
		return "", nil, fmt.Errorf("left-hand side %q is not a single symbol", strings.TrimSpace(eq.LHS.String()))
	}
	return lhs.Name(), eq.RHS, nil
}

// RHS returns the text to the right of the '='.
func (e Entry) RHS() string {
	_, rhs, _ := strings.Cut(e.Equation, "=")
	return strings.TrimSpace(rhs)
}

// Variables lists the free symbols of the right-hand side, sorted.
func (e Entry) Variables() ([]string, error) {
	_, rhs, err := e.Parse()
	if err != nil {
		return nil, err
	}
	return symbol.Symbols(rhs), nil
}

// Validate checks that names are non-empty and unique and that every
// equation has exactly one '=', a single-symbol left-hand side and a
// right-hand side that parses. All problems are reported, not just the
// first.
func Validate(entries []Entry) error {
	var problems []string
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("entry %d: empty name", i))
			continue
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate name", name))
		}
		seen[name] = true
		if n := strings.Count(e.Equation, "="); n != 1 {
			problems = append(problems, fmt.Sprintf("%s: equation has %d '=' signs, want 1", name, n))
			continue
		}
		if _, _, err := e.Parse(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
