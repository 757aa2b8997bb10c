package symbol

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"text/scanner"
)

// ErrParse is wrapped by every error Parse and ParseEquation return.
var ErrParse = errors.New("parse error")

// ParseError locates a syntax problem in the source text.
type ParseError struct {
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at column %d: %s", ErrParse, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Parse reads an arithmetic expression in the usual infix syntax:
//
//	+ - * /      binary and unary arithmetic
//	** or ^      right-associative power, binding tighter than unary minus
//	sqrt(x)      square root; sin cos tan exp ln log abs are also known
//	pi           the circle constant
//	X_L, f, ...  any other identifier is a free symbol
//
// Integer and rational literals stay exact; decimal literals (0.5, 1e-6)
// become approximate numbers.
func Parse(src string) (Expr, error) {
	p := newParser(src)
	e, err := p.parse()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseEquation splits src on its single '=' and parses both sides.
func ParseEquation(src string) (*Equation, error) {
	lhs, rhs, ok := strings.Cut(src, "=")
	if !ok {
		return nil, &ParseError{Column: 1, Msg: "equation has no '='"}
	}
	if i := strings.IndexByte(rhs, '='); i >= 0 {
		return nil, &ParseError{Column: len(lhs) + 2 + i, Msg: "equation has more than one '='"}
	}
	l, err := Parse(lhs)
	if err != nil {
		return nil, fmt.Errorf("left-hand side: %w", err)
	}
	r, err := Parse(rhs)
	if err != nil {
		return nil, fmt.Errorf("right-hand side: %w", err)
	}
	return Eq(l, r), nil
}

type parser struct {
	s   scanner.Scanner
	tok rune
	err *ParseError
}

func newParser(src string) *parser {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(msg)
	}
	return p
}

// parse runs the descent. Syntax errors unwind via panic(*ParseError) and
// are turned back into an error here.
func (p *parser) parse() (e Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			e, err = nil, pe
		}
	}()
	p.next()
	if p.tok == scanner.EOF {
		p.fail("empty expression")
	}
	e = p.sum()
	if p.tok != scanner.EOF {
		p.fail(fmt.Sprintf("unexpected %q", p.s.TokenText()))
	}
	return e, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) fail(msg string) {
	panic(&ParseError{Column: p.s.Position.Column, Msg: msg})
}

func (p *parser) expect(r rune) {
	if p.tok != r {
		found := p.s.TokenText()
		if p.tok == scanner.EOF {
			found = "end of input"
		}
		p.fail(fmt.Sprintf("expected %q, found %q", string(r), found))
	}
	p.next()
}

// sum := product { ('+'|'-') product }
func (p *parser) sum() Expr {
	e := p.product()
	for {
		switch p.tok {
		case '+':
			p.next()
			e = AddOf(e, p.product())
		case '-':
			p.next()
			e = AddOf(e, MulOf(N(-1), p.product()))
		default:
			return e
		}
	}
}

// product := unary { ('*'|'/') unary }
func (p *parser) product() Expr {
	e := p.unary()
	for {
		switch {
		case p.tok == '*' && p.s.Peek() != '*':
			p.next()
			e = MulOf(e, p.unary())
		case p.tok == '/':
			p.next()
			d := p.unary()
			if n, ok := d.(*Num); ok && n.IsZero() {
				p.fail("division by zero")
			}
			e = MulOf(e, PowOf(d, N(-1)))
		default:
			return e
		}
	}
}

// unary := ('+'|'-') unary | power
func (p *parser) unary() Expr {
	switch p.tok {
	case '+':
		p.next()
		return p.unary()
	case '-':
		p.next()
		return MulOf(N(-1), p.unary())
	}
	return p.power()
}

// power := atom [ ('**'|'^') unary ]
func (p *parser) power() Expr {
	base := p.atom()
	switch {
	case p.tok == '*' && p.s.Peek() == '*':
		p.next()
		p.next()
	case p.tok == '^':
		p.next()
	default:
		return base
	}
	return PowOf(base, p.unary())
}

// atom := number | ident [ '(' sum ')' ] | '(' sum ')'
func (p *parser) atom() Expr {
	switch p.tok {
	case '(':
		p.next()
		e := p.sum()
		p.expect(')')
		return e
	case scanner.Int, scanner.Float:
		return p.number()
	case scanner.Ident:
		return p.identifier()
	case scanner.EOF:
		p.fail("unexpected end of input")
	}
	p.fail(fmt.Sprintf("unexpected %q", p.s.TokenText()))
	return nil
}

func (p *parser) number() Expr {
	text := p.s.TokenText()
	approx := p.tok == scanner.Float
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		p.fail(fmt.Sprintf("malformed number %q", text))
	}
	p.next()
	return &Num{val: r, approx: approx}
}

func (p *parser) identifier() Expr {
	name := p.s.TokenText()
	p.next()
	if p.tok != '(' {
		if c, ok := constants[name]; ok {
			return c
		}
		if _, isFunc := functions[name]; isFunc || name == "sqrt" {
			p.fail(fmt.Sprintf("function %s needs an argument", name))
		}
		return S(name)
	}
	p.next()
	arg := p.sum()
	p.expect(')')
	if name == "sqrt" {
		return SqrtOf(arg)
	}
	if _, ok := functions[name]; !ok {
		p.fail(fmt.Sprintf("unknown function %q", name))
	}
	return funcOf(name, arg).Simplify()
}
