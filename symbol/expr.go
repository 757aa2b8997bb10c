// Package symbol is the small symbolic math kernel behind the formula
// evaluator.
//
// Expressions are immutable trees built from exact rationals, floating
// point approximations, named symbols, the constant pi, sums, products,
// powers and a handful of elementary functions. Constructors (AddOf, MulOf,
// PowOf) simplify eagerly so that substituting numbers folds the tree down
// to a single *Num wherever possible; anything left over is a residual
// expression that still prints and parses back.
package symbol

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational or floating point approximation
// ============================================================

// Num holds its value as a big.Rat. Approximate numbers (parsed decimals,
// substituted measurements, evaluated constants) carry approx=true and print
// in float notation; the flag is contagious through arithmetic.
type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbol: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat panics on NaN and ±Inf; check with IsFinite first when the value
// comes from outside.
func NFloat(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		panic(fmt.Sprintf("symbol: non-finite value %v", f))
	}
	return &Num{val: r, approx: true}
}

// IsFinite reports whether f can be held by a Num.
func IsFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsApprox() bool        { return n.approx }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.approx {
		return FormatFloat(n.Float64())
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.approx || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	if n.approx {
		return map[string]interface{}{"type": "num", "value": strconv.FormatFloat(n.Float64(), 'g', -1, 64), "approx": true}
	}
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func (n *Num) toApprox() *Num {
	if n.approx {
		return n
	}
	return &Num{val: n.val, approx: true}
}

// FormatFloat renders f with at most 15 significant digits, dropping
// trailing zeros: 6, 0.5, 5032.92121842731, 1e-06.
func FormatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', 15, 64)
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbol: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), approx: a.approx}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string {
	if base, sub, ok := strings.Cut(s.name, "_"); ok && base != "" && sub != "" {
		return base + "_{" + sub + "}"
	}
	return s.name
}
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const: named numeric constant
// ============================================================

// Const stays symbolic through simplification and only turns into a
// number under Eval / Evalf.
type Const struct {
	name  string
	value float64
	latex string
}

// Pi is the circle constant. It is the only constant the parser knows.
var Pi = &Const{name: "pi", value: math.Pi, latex: `\pi`}

var constants = map[string]*Const{Pi.name: Pi}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Value() float64        { return c.value }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	// Bare symbols are collected first; scaled terms c*x then fold into a
	// bare x when one is present, so x - x cancels.
	numAccum := N(0)
	symCoeffs := map[string]*Num{}
	symOrder := []string{}
	for _, t := range flat {
		if v, ok := t.(*Sym); ok {
			if _, seen := symCoeffs[v.name]; !seen {
				symOrder = append(symOrder, v.name)
				symCoeffs[v.name] = N(0)
			}
			symCoeffs[v.name] = numAdd(symCoeffs[v.name], N(1))
		}
	}
	others := []Expr{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *Sym:
		case *Mul:
			if c, name, ok := scaledSym(v); ok {
				if coeff, seen := symCoeffs[name]; seen {
					symCoeffs[name] = numAdd(coeff, c)
					continue
				}
			}
			others = append(others, t)
		default:
			others = append(others, t)
		}
	}
	result := []Expr{}
	sort.Strings(symOrder)
	for _, name := range symOrder {
		coeff := symCoeffs[name]
		switch {
		case coeff.IsZero():
			continue
		case coeff.IsOne():
			result = append(result, S(name))
		default:
			result = append(result, MulOf(coeff, S(name)))
		}
	}
	result = append(result, others...)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// scaledSym matches c*x.
func scaledSym(m *Mul) (*Num, string, bool) {
	if len(m.factors) != 2 {
		return nil, "", false
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return nil, "", false
	}
	x, ok := m.factors[1].(*Sym)
	if !ok {
		return nil, "", false
	}
	return c, x.name, true
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		s, neg := t.String(), false
		if abs, ok := negated(t); ok {
			s, neg = abs.String(), true
		}
		switch {
		case i == 0 && neg:
			b.WriteString("-" + s)
		case i == 0:
			b.WriteString(s)
		case neg:
			b.WriteString(" - " + s)
		default:
			b.WriteString(" + " + s)
		}
	}
	return b.String()
}

// negated returns -t when t carries a negative leading coefficient.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return MulOf(rest...), true
		}
	}
	return nil, false
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	others = others[:0]
	for i := range ks {
		others = append(others, ks[i].e)
	}

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// String writes products as numerator/denominator so that residual
// expressions read like the formulas they came from: 2*I/sqrt(R),
// C*V**2/2, -X_C.
func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	var numer []string
	var denom []Expr
	sign := ""
	for i, f := range m.factors {
		if c, ok := f.(*Num); ok && i == 0 {
			switch {
			case c.approx || c.IsInteger():
				if c.IsNegOne() && !c.approx {
					sign = "-"
				} else {
					numer = append(numer, c.String())
				}
			default:
				p := new(big.Rat).SetInt(c.val.Num())
				switch {
				case p.Cmp(big.NewRat(-1, 1)) == 0:
					sign = "-"
				case p.Cmp(big.NewRat(1, 1)) != 0:
					numer = append(numer, p.RatString())
				}
				denom = append(denom, &Num{val: new(big.Rat).SetInt(c.val.Denom())})
			}
			continue
		}
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() {
				denom = append(denom, PowOf(p.base, numNeg(e)))
				continue
			}
		}
		numer = append(numer, parenthesize(f, false))
	}
	out := strings.Join(numer, "*")
	if out == "" {
		out = "1"
	}
	out = sign + out
	if len(denom) > 0 {
		out += "/" + parenthesize(MulOf(denom...), true)
	}
	return out
}

// parenthesize wraps sums, and in a denominator also products, in
// parentheses.
func parenthesize(e Expr, inDenom bool) string {
	switch e.(type) {
	case *Add:
		return "(" + e.String() + ")"
	case *Mul:
		if inDenom {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(append([]Expr{dfi}, others...)...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf is base**(1/2); there is no separate square-root node.
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		// 0**0 is indeterminate, 0**negative divides by zero: leave both
		// unevaluated so Eval reports them as non-finite.
		if expIsNum && (en.IsZero() || en.IsNegative()) {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if baseIsNum && bn.IsOne() && !bn.approx {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if en.IsInteger() && !en.approx {
			e := en.val.Num().Int64()
			if e >= -20 && e <= 20 {
				result := N(1)
				for i := int64(0); i < abs64(e); i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					return numRecip(result)
				}
				return result
			}
		}
		if bn.approx || en.approx {
			pf := math.Pow(bn.Float64(), en.Float64())
			if IsFinite(pf) {
				return NFloat(pf)
			}
		}
	}
	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// String prints exponents of 1/2 as sqrt and negative exponents as a
// quotient, whether or not the exponent is approximate, so an evaluated
// residual reads 1/(314.159265358979*C) rather than a raw power.
func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.Equal(F(1, 2)):
			return "sqrt(" + p.base.String() + ")"
		case en.IsNegative():
			return "1/" + parenthesize(PowOf(p.base, numNeg(en)), true)
		}
	}
	baseStr := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym, *Const:
	case *Num:
		if e.IsNegative() || !(e.IsInteger() || e.approx) {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "**" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.Equal(F(1, 2)) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	expStr := p.exp.LaTeX()
	_, baseIsAdd := p.base.(*Add)
	_, baseIsMul := p.base.(*Mul)
	if baseIsAdd || baseIsMul {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + expStr + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	_, expIsNum := p.exp.(*Num)
	if expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	_, baseIsNum := p.base.(*Num)
	if baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		pf := math.Pow(b.Float64(), e.Float64())
		if !IsFinite(pf) {
			return nil, false
		}
		return NFloat(pf), true
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// functions maps every function name the parser accepts (besides sqrt) to
// its float implementation.
var functions = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"exp": math.Exp,
	"ln":  math.Log,
	"log": math.Log,
	"abs": math.Abs,
}

func funcOf(name string, arg Expr) *Func {
	if name == "log" {
		name = "ln"
	}
	return &Func{name: name, arg: arg}
}

func SinOf(arg Expr) Expr { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr  { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr { return funcOf("abs", arg).Simplify() }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		switch {
		case f.name == "ln" && n.IsOne():
			return N(0)
		case (f.name == "sin" || f.name == "tan") && n.IsZero():
			return N(0)
		case (f.name == "cos" || f.name == "exp") && n.IsZero():
			return N(1)
		case f.name == "abs" && !n.IsNegative():
			return n
		case f.name == "abs":
			return numNeg(n)
		case n.approx:
			if v := functions[f.name](n.Float64()); IsFinite(v) {
				return NFloat(v)
			}
		}
	}
	if inner, ok := arg.(*Func); ok {
		if (f.name == "ln" && inner.name == "exp") || (f.name == "exp" && inner.name == "ln") {
			return inner.arg
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v := functions[f.name](n.Float64())
	if !IsFinite(v) {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns RHS - LHS, which is zero wherever the equation holds.
func (e *Equation) Residual() Expr {
	return AddOf(e.RHS, MulOf(N(-1), e.LHS))
}

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// FreeSymbols returns the set of symbol names occurring in e. Constants
// such as pi are not free.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// Symbols returns the free symbols of e in sorted order.
func Symbols(e Expr) []string {
	set := FreeSymbols(e)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}
