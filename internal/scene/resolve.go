package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/scanner"
)

// Status is the outcome of resolving a uniform value.
type Status uint8

const (
	Ok Status = iota
	NotFound
	Recursion
	Invalid
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case NotFound:
		return "not found"
	case Recursion:
		return "recursion"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Result of resolving one uniform. For NotFound and Recursion, Name is the uniform
// that could not be resolved; for Invalid, Err holds the parse error.
type Result struct {
	Status Status
	Value  float64
	Name   string
	Err    error
}

// Resolver computes uniform values, evaluating formulas that refer to other
// uniforms. Results are memoised.
type Resolver struct {
	byName map[string]*Uniform
	done   map[string]Result
	active map[string]bool
}

func NewResolver(s *Scene) *Resolver {
	r := &Resolver{
		byName: make(map[string]*Uniform, len(s.Uniforms)),
		done:   make(map[string]Result),
		active: make(map[string]bool),
	}
	for i := range s.Uniforms {
		u := &s.Uniforms[i]
		if _, dup := r.byName[u.Name]; !dup {
			r.byName[u.Name] = u
		}
	}
	return r
}

// Get resolves the uniform called name.
func (r *Resolver) Get(name string) Result {
	if res, ok := r.done[name]; ok {
		return res
	}
	u, ok := r.byName[name]
	if !ok {
		return Result{Status: NotFound, Name: name}
	}
	if r.active[name] {
		return Result{Status: Recursion, Name: name}
	}

	var res Result
	switch u.Kind {
	case UniformFormula:
		r.active[name] = true
		res = r.eval(u.Formula)
		delete(r.active, name)
	case UniformBool:
		if u.Value != 0 {
			res = Result{Value: 1}
		}
	case UniformInt:
		res = Result{Value: math.Trunc(u.Value)}
	default:
		res = Result{Value: u.Value}
	}
	r.done[name] = res
	return res
}

func (r *Resolver) eval(formula string) Result {
	p := &formulaParser{resolve: r.Get}
	p.s.Init(strings.NewReader(formula))
	p.s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanInts
	p.s.Error = func(_ *scanner.Scanner, msg string) { p.fail(fmt.Errorf("%s", msg)) }
	p.next()

	v := p.expr()
	if p.res.Status == Ok && p.err == nil && p.tok != scanner.EOF {
		p.fail(fmt.Errorf("unexpected %q", p.s.TokenText()))
	}
	if p.err != nil {
		return Result{Status: Invalid, Err: p.err}
	}
	if p.res.Status != Ok {
		return p.res
	}
	return Result{Value: v}
}

// formulaParser evaluates + - * / with parentheses, unary minus, numbers, uniform
// names and the functions listed in formulaFuncs.
type formulaParser struct {
	s       scanner.Scanner
	tok     rune
	resolve func(string) Result
	res     Result
	err     error
}

var formulaFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

var formulaConsts = map[string]float64{
	"pi": math.Pi,
}

func (p *formulaParser) next() { p.tok = p.s.Scan() }

func (p *formulaParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *formulaParser) stopped() bool {
	return p.err != nil || p.res.Status != Ok
}

func (p *formulaParser) expr() float64 {
	v := p.term()
	for !p.stopped() && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		rhs := p.term()
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v
}

func (p *formulaParser) term() float64 {
	v := p.unary()
	for !p.stopped() && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		rhs := p.unary()
		if op == '*' {
			v *= rhs
		} else {
			v /= rhs
		}
	}
	return v
}

func (p *formulaParser) unary() float64 {
	if p.tok == '-' {
		p.next()
		return -p.unary()
	}
	return p.primary()
}

func (p *formulaParser) primary() float64 {
	if p.stopped() {
		return 0
	}
	switch p.tok {
	case scanner.Int, scanner.Float:
		v, err := strconv.ParseFloat(p.s.TokenText(), 64)
		if err != nil {
			p.fail(err)
		}
		p.next()
		return v
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		if fn, ok := formulaFuncs[name]; ok && p.tok == '(' {
			return fn(p.paren())
		}
		if c, ok := formulaConsts[name]; ok {
			return c
		}
		res := p.resolve(name)
		switch res.Status {
		case Ok:
			return res.Value
		case Invalid:
			p.fail(fmt.Errorf("uniform %q: %w", name, res.Err))
		default:
			p.res = res
		}
		return 0
	case '(':
		return p.paren()
	case scanner.EOF:
		p.fail(fmt.Errorf("unexpected end of formula"))
	default:
		p.fail(fmt.Errorf("unexpected %q", p.s.TokenText()))
	}
	return 0
}

func (p *formulaParser) paren() float64 {
	if p.tok != '(' {
		p.fail(fmt.Errorf("expected '('"))
		return 0
	}
	p.next()
	v := p.expr()
	if p.stopped() {
		return 0
	}
	if p.tok != ')' {
		p.fail(fmt.Errorf("expected ')'"))
		return 0
	}
	p.next()
	return v
}
