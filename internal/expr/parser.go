package expr

import (
	"fmt"
	"math"
)

// parser is a recursive-descent parser that computes the value as it
// descends. Precedence, loosest first: additive, multiplicative, unary sign,
// power (right-associative), then atoms. "-2^2" is -(2^2) and "2^-3" parses
// with the sign bound to the exponent.
type parser struct {
	ev     *Evaluator
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) peekOperator() (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.kind != tokOperator {
		return "", false
	}
	return tok.text, true
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxParseDepth {
		return newError(KindSyntax, "expression too deeply nested")
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseExpr() (float64, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOperator()
		if !ok || (op != "+" && op != "-") {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if v, err = p.apply(op, v, rhs); err != nil {
			return 0, err
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOperator()
		if !ok || (op != "*" && op != "/" && op != "%") {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if v, err = p.apply(op, v, rhs); err != nil {
			return 0, err
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	if op, ok := p.peekOperator(); ok && (op == "+" || op == "-") {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			v = -v
		}
		return v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	v, err := p.parseAtom()
	if err != nil {
		return 0, err
	}
	op, ok := p.peekOperator()
	if !ok || op != "^" {
		return v, nil
	}
	p.pos++
	exponent, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return p.apply("^", v, exponent)
}

func (p *parser) parseAtom() (float64, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	tok, ok := p.next()
	if !ok {
		return 0, newError(KindSyntax, "unexpected end of expression")
	}

	switch tok.kind {
	case tokNumber:
		return tok.val, nil

	case tokIdent:
		if v, ok := p.ev.constants[tok.text]; ok {
			return v, nil
		}
		fn, ok := p.ev.functions[tok.text]
		if !ok {
			return 0, newError(KindInvalidCharacter, fmt.Sprintf("unknown name %q", tok.text))
		}
		return p.parseCall(tok.text, fn)

	case tokLeftParen:
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRightParen, ")"); err != nil {
			return 0, err
		}
		return v, nil

	default:
		return 0, newError(KindSyntax, fmt.Sprintf("unexpected %q", tok.text))
	}
}

func (p *parser) parseCall(name string, fn function) (float64, error) {
	if err := p.expect(tokLeftParen, "("); err != nil {
		return 0, newError(KindSyntax, fmt.Sprintf("%s must be followed by (", name))
	}
	arg, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if err := p.expect(tokRightParen, ")"); err != nil {
		return 0, err
	}
	v, err := fn(arg)
	if err != nil {
		return 0, err
	}
	return p.ev.check(v)
}

func (p *parser) expect(kind tokenKind, text string) error {
	tok, ok := p.next()
	if !ok || tok.kind != kind {
		return newError(KindSyntax, fmt.Sprintf("expected %q", text))
	}
	return nil
}

// apply computes one binary operation with zero-divisor and range checks.
func (p *parser) apply(op string, x, y float64) (float64, error) {
	var v float64
	switch op {
	case "+":
		v = x + y
	case "-":
		v = x - y
	case "*":
		v = x * y
	case "/":
		if y == 0 {
			return 0, newError(KindDivisionByZero, "division by zero")
		}
		v = x / y
	case "%":
		if y == 0 {
			return 0, newError(KindDivisionByZero, "modulo by zero")
		}
		v = math.Mod(x, y)
	case "^":
		v = math.Pow(x, y)
	default:
		return 0, newError(KindSyntax, fmt.Sprintf("unknown operator %q", op))
	}
	return p.ev.check(v)
}
