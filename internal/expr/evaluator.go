// Package expr implements the calculator's closed-grammar expression
// evaluator. Input originates from untrusted chat text, so evaluation never
// delegates to any general-purpose scripting facility: the grammar is fixed
// (numbers, + - * / ^ %, unary sign, parentheses, whitelisted functions and
// constants) and both input length and parse depth are bounded.
package expr

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// DefaultMaxLength caps expression text length before any parsing.
	DefaultMaxLength = 100

	// DefaultOverflowThreshold is the magnitude above which results are
	// reported as overflow.
	DefaultOverflowThreshold = 1e100

	// maxParseDepth bounds parser recursion so deeply nested input cannot
	// exhaust the stack.
	maxParseDepth = 64

	// factorial grows past any float64 above 170!.
	maxFactorialArg = 170
)

// function is a whitelisted single-argument function.
type function func(x float64) (float64, error)

// builtinFunctions is the full set of functions the evaluator knows how to
// compute. Options.Functions selects a subset of these by name.
var builtinFunctions = map[string]function{
	"sqrt": func(x float64) (float64, error) {
		if x < 0 {
			return 0, newError(KindDomain, "sqrt of a negative number")
		}
		return math.Sqrt(x), nil
	},
	"sin": noDomain(math.Sin),
	"cos": noDomain(math.Cos),
	"tan": noDomain(math.Tan),
	"asin": func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, newError(KindDomain, "asin argument outside [-1, 1]")
		}
		return math.Asin(x), nil
	},
	"acos": func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, newError(KindDomain, "acos argument outside [-1, 1]")
		}
		return math.Acos(x), nil
	},
	"atan": noDomain(math.Atan),
	"sinh": noDomain(math.Sinh),
	"cosh": noDomain(math.Cosh),
	"tanh": noDomain(math.Tanh),
	"exp":  noDomain(math.Exp),
	"log": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, newError(KindDomain, "log of a non-positive number")
		}
		return math.Log(x), nil
	},
	"log10": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, newError(KindDomain, "log10 of a non-positive number")
		}
		return math.Log10(x), nil
	},
	"log2": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, newError(KindDomain, "log2 of a non-positive number")
		}
		return math.Log2(x), nil
	},
	"abs": noDomain(math.Abs),
	"factorial": func(x float64) (float64, error) {
		if x < 0 || x != math.Trunc(x) {
			return 0, newError(KindDomain, "factorial of a negative or non-integer number")
		}
		if x > maxFactorialArg {
			return 0, newError(KindOverflow, "factorial result too large")
		}
		r := 1.0
		for i := 2.0; i <= x; i++ {
			r *= i
		}
		return r, nil
	},
}

// builtinConstants holds the constants the evaluator can resolve.
var builtinConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func noDomain(f func(float64) float64) function {
	return func(x float64) (float64, error) { return f(x), nil }
}

// DefaultFunctions lists every builtin function name.
func DefaultFunctions() []string {
	names := make([]string, 0, len(builtinFunctions))
	for name := range builtinFunctions {
		names = append(names, name)
	}
	return names
}

// DefaultConstants lists every builtin constant name.
func DefaultConstants() []string {
	names := make([]string, 0, len(builtinConstants))
	for name := range builtinConstants {
		names = append(names, name)
	}
	return names
}

// Options configures an Evaluator. Zero values fall back to the defaults, so
// Options{} yields a fully featured evaluator.
type Options struct {
	MaxLength         int
	Functions         []string
	Constants         []string
	OverflowThreshold float64
}

// Evaluator validates and computes calculator expressions. It is stateless
// after construction and safe for concurrent use from multiple sessions.
type Evaluator struct {
	maxLength int
	overflow  float64
	functions map[string]function
	constants map[string]float64
}

// New builds an Evaluator from opts. Unknown function or constant names are
// rejected because they would silently shrink the grammar surface.
func New(opts Options) (*Evaluator, error) {
	ev := &Evaluator{
		maxLength: opts.MaxLength,
		overflow:  opts.OverflowThreshold,
		functions: make(map[string]function),
		constants: make(map[string]float64),
	}
	if ev.maxLength <= 0 {
		ev.maxLength = DefaultMaxLength
	}
	if ev.overflow <= 0 {
		ev.overflow = DefaultOverflowThreshold
	}

	names := opts.Functions
	if names == nil {
		names = DefaultFunctions()
	}
	for _, name := range names {
		fn, ok := builtinFunctions[name]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", name)
		}
		ev.functions[name] = fn
	}

	consts := opts.Constants
	if consts == nil {
		consts = DefaultConstants()
	}
	for _, name := range consts {
		v, ok := builtinConstants[name]
		if !ok {
			return nil, fmt.Errorf("unknown constant %q", name)
		}
		ev.constants[name] = v
	}

	return ev, nil
}

// MaxLength reports the configured expression length cap.
func (ev *Evaluator) MaxLength() int {
	return ev.maxLength
}

// ConstantText returns the canonical decimal literal for a known constant,
// suitable for insertion into a session buffer.
func (ev *Evaluator) ConstantText(name string) (string, bool) {
	v, ok := ev.constants[name]
	if !ok {
		return "", false
	}
	return CanonicalText(v), true
}

// IsFunction reports whether name is on the evaluator's function whitelist.
func (ev *Evaluator) IsFunction(name string) bool {
	_, ok := ev.functions[name]
	return ok
}

// Evaluate computes text's numeric value. Trailing unclosed parentheses are
// closed automatically before validation, matching the button flow where a
// function press leaves an open "sqrt(" in the buffer.
func (ev *Evaluator) Evaluate(text string) (float64, error) {
	text = autoClose(text)

	if err := ev.Validate(text); err != nil {
		return 0, err
	}

	tokens, err := scan(text)
	if err != nil {
		return 0, err
	}

	p := &parser{ev: ev, tokens: tokens}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, newError(KindSyntax, fmt.Sprintf("unexpected %q", p.tokens[p.pos].text))
	}

	return ev.check(v)
}

// EvaluateText is Evaluate with the result rendered in canonical decimal
// form for display and last-result chaining.
func (ev *Evaluator) EvaluateText(text string) (string, error) {
	v, err := ev.Evaluate(text)
	if err != nil {
		return "", err
	}
	return CanonicalText(v), nil
}

// check classifies non-finite and out-of-range intermediate values.
func (ev *Evaluator) check(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, newError(KindDomain, "result is undefined")
	}
	if math.IsInf(v, 0) || math.Abs(v) > ev.overflow {
		return 0, newError(KindOverflow, "result too large")
	}
	return v, nil
}

// autoClose appends the closing parentheses still missing at the end of text.
func autoClose(text string) string {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	for ; depth > 0; depth-- {
		text += ")"
	}
	return text
}

// CanonicalText renders v in its shortest decimal form: integers print
// without a fractional part ("14", not "14.000000") and fractions carry no
// trailing zeros. Extreme magnitudes switch to exponent notation, which the
// lexer accepts back. The form is stable: re-evaluating it yields v again.
func CanonicalText(v float64) string {
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-4 && abs < 1e15) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
