package expr

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOperator
	tokLeftParen
	tokRightParen
)

type token struct {
	kind tokenKind
	text string
	val  float64 // set for tokNumber
	pos  int
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '^', '%':
		return true
	}
	return false
}

// scan splits text into tokens. It accepts digits, '.', lowercase
// identifiers, the operator set, parentheses and blanks; anything else is an
// invalid-character error. Number literals may carry a scientific-notation
// suffix so canonical results like "1e+20" round-trip through the lexer.
func scan(text string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case isDigit(c) || c == '.':
			start := i
			tok, next, err := scanNumber(text, i)
			if err != nil {
				return nil, err
			}
			tok.pos = start
			tokens = append(tokens, tok)
			i = next

		case isLetter(c):
			start := i
			for i < len(text) && (isLetter(text[i]) || isDigit(text[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: text[start:i], pos: start})

		case isOperator(c):
			tokens = append(tokens, token{kind: tokOperator, text: string(c), pos: i})
			i++

		case c == '(':
			tokens = append(tokens, token{kind: tokLeftParen, text: "(", pos: i})
			i++

		case c == ')':
			tokens = append(tokens, token{kind: tokRightParen, text: ")", pos: i})
			i++

		default:
			return nil, newError(KindInvalidCharacter, fmt.Sprintf("invalid character %q", string(text[i])))
		}
	}

	return tokens, nil
}

// scanNumber consumes one numeric literal starting at i and returns the token
// plus the index just past it.
func scanNumber(text string, i int) (token, int, error) {
	start := i

	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i < len(text) && text[i] == '.' {
		i++
		for i < len(text) && isDigit(text[i]) {
			i++
		}
	}
	if text[start:i] == "." {
		return token{}, 0, newError(KindSyntax, "stray decimal point")
	}

	// Optional exponent, consumed only when digits actually follow so the
	// constant "e" keeps working ("2*e" is not an exponent).
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < len(text) && (text[j] == '+' || text[j] == '-') {
			j++
		}
		if j < len(text) && isDigit(text[j]) {
			for j < len(text) && isDigit(text[j]) {
				j++
			}
			i = j
		}
	}

	lit := text[start:i]
	val, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return token{}, 0, newError(KindSyntax, fmt.Sprintf("malformed number %q", lit))
	}

	return token{kind: tokNumber, text: lit, val: val}, i, nil
}
