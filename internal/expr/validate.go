package expr

import (
	"fmt"
	"strings"
)

// Validate rejects an expression before any computation happens. It scans
// character and token classes only — the text is never interpreted. The
// checks, in order: length cap, character whitelist, known identifiers,
// balanced parentheses, and operator adjacency (two binary operators in a
// row are allowed only as a unary-sign sequence like "5*-3").
func (ev *Evaluator) Validate(text string) error {
	if len(text) > ev.maxLength {
		return newError(KindTooLong, fmt.Sprintf("expression longer than %d characters", ev.maxLength))
	}
	if strings.TrimSpace(text) == "" {
		return newError(KindSyntax, "empty expression")
	}

	tokens, err := scan(text)
	if err != nil {
		return err
	}

	for _, tok := range tokens {
		if tok.kind != tokIdent {
			continue
		}
		if _, ok := ev.functions[tok.text]; ok {
			continue
		}
		if _, ok := ev.constants[tok.text]; ok {
			continue
		}
		return newError(KindInvalidCharacter, fmt.Sprintf("unknown name %q", tok.text))
	}

	depth := 0
	for _, tok := range tokens {
		switch tok.kind {
		case tokLeftParen:
			depth++
		case tokRightParen:
			depth--
			if depth < 0 {
				return newError(KindUnbalancedParens, "unmatched closing parenthesis")
			}
		}
	}
	if depth != 0 {
		return newError(KindUnbalancedParens, "unclosed parenthesis")
	}

	return checkOperatorRuns(tokens)
}

// checkOperatorRuns rejects adjacent binary operators unless the run is a
// single operator followed by one unary sign.
func checkOperatorRuns(tokens []token) error {
	run := 0
	for _, tok := range tokens {
		if tok.kind != tokOperator {
			run = 0
			continue
		}
		run++
		if run == 2 && (tok.text == "+" || tok.text == "-") {
			continue
		}
		if run > 1 {
			return newError(KindSyntax, fmt.Sprintf("operator %q cannot follow another operator", tok.text))
		}
	}
	return nil
}
