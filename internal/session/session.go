// Package session holds the per-user calculator state: an expression buffer
// mutated by discrete edit operations under shape-preserving rules, plus the
// last computed result for chaining. The session never evaluates anything
// itself; callers run the evaluator over Expression() and feed the result
// back through SetResult.
package session

import (
	"strings"
	"sync"
	"unicode/utf8"

	"chatcalc/internal/expr"
)

const operatorChars = "+-*/^%"

// Session is one user's mutable expression buffer. All methods are safe for
// concurrent use; each call either applies fully or leaves the state
// untouched. Disallowed edits (over-length, duplicate decimal point, stray
// operator) are silent no-ops rather than errors: they are blocked UI
// actions, not exceptional conditions.
type Session struct {
	mu         sync.Mutex
	maxLength  int
	expression string
	lastResult string
	hasResult  bool
}

func newSession(maxLength int) *Session {
	if maxLength <= 0 {
		maxLength = expr.DefaultMaxLength
	}
	return &Session{maxLength: maxLength}
}

// Expression returns the current buffer text.
func (s *Session) Expression() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expression
}

// DisplayText renders the buffer for presentation; an empty buffer shows as
// "0" like a cleared pocket calculator.
func (s *Session) DisplayText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expression == "" {
		return "0"
	}
	return s.expression
}

// LastResult returns the canonical text of the last computed value, if any.
func (s *Session) LastResult() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult, s.hasResult
}

// AppendDigit appends one digit. A number segment that is exactly "0" is
// replaced rather than extended, so "07" can never form.
func (s *Session) AppendDigit(d byte) {
	if d < '0' || d > '9' {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if numberSegment(s.expression) == "0" {
		s.expression = s.expression[:len(s.expression)-1] + string(d)
		return
	}
	s.appendIfFits(string(d))
}

// AppendDecimalPoint starts or extends the current number segment with a
// decimal point. A segment already holding one is left unchanged; outside a
// number segment the point opens a new "0." operand.
func (s *Session) AppendDecimalPoint() {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := numberSegment(s.expression)
	if strings.Contains(seg, ".") {
		return
	}
	if seg == "" {
		s.appendIfFits("0.")
		return
	}
	s.appendIfFits(".")
}

// AppendOperator appends a binary operator. A trailing operator run is
// replaced rather than extended ("5+" then "-" gives "5-"), except that a
// minus directly after "(" or after * / ^ % is kept as a unary sign
// ("5*-3"). On an empty buffer the operator chains off the last result when
// one exists; without one only a leading minus is accepted.
func (s *Session) AppendOperator(op string) {
	if len(op) != 1 || !strings.Contains(operatorChars, op) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expression == "" {
		if s.hasResult {
			s.setIfFits(s.lastResult + op)
			return
		}
		if op == "-" {
			s.appendIfFits(op)
		}
		return
	}

	last := s.expression[len(s.expression)-1]
	switch {
	case last == '(':
		if op == "-" {
			s.appendIfFits(op)
		}

	case op == "-" && strings.ContainsRune("*/^%", rune(last)):
		s.appendIfFits(op)

	case strings.ContainsRune(operatorChars, rune(last)):
		trimmed := strings.TrimRight(s.expression, operatorChars)
		if trimmed == "" && op != "-" {
			return
		}
		s.setIfFits(trimmed + op)

	default:
		s.appendIfFits(op)
	}
}

// AppendFunction appends a function call opener such as "sqrt(". The closing
// parenthesis is supplied explicitly by the user or automatically at
// evaluation time.
func (s *Session) AppendFunction(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendIfFits(name + "(")
}

// AppendConstant appends a constant's decimal literal, e.g. the expansion of
// pi. The session stores plain text only; resolving names to literals is the
// caller's job.
func (s *Session) AppendConstant(literal string) {
	if literal == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendIfFits(literal)
}

// AppendParen appends an opening or closing parenthesis. Balance is not
// enforced here; the evaluator deals with it.
func (s *Session) AppendParen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.appendIfFits("(")
		return
	}
	s.appendIfFits(")")
}

// ClearEntry removes the most recent logical token: a trailing number
// segment, a trailing "name(" function opener, or a single trailing
// operator or parenthesis.
func (s *Session) ClearEntry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expression == "" {
		return
	}

	last := s.expression[len(s.expression)-1]
	switch {
	case isDigitOrPoint(last):
		i := len(s.expression)
		for i > 0 && isDigitOrPoint(s.expression[i-1]) {
			i--
		}
		s.expression = s.expression[:i]

	case last == '(':
		s.expression = s.expression[:functionStart(s.expression)]

	default:
		s.expression = s.expression[:len(s.expression)-1]
	}
}

// ClearAll resets the buffer and forgets the last result.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expression = ""
	s.lastResult = ""
	s.hasResult = false
}

// Backspace removes exactly the last character; no-op on an empty buffer.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expression == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.expression)
	s.expression = s.expression[:len(s.expression)-size]
}

// SetResult stores v as the last result and replaces the buffer with its
// canonical text, so the next digit or operator continues from it.
func (s *Session) SetResult(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = expr.CanonicalText(v)
	s.hasResult = true
	s.expression = s.lastResult
}

// SetExpression replaces the whole buffer with free text, as when a user
// types an expression instead of pressing buttons. Returns false without
// mutating when the text exceeds the length cap.
func (s *Session) SetExpression(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(text) > s.maxLength {
		return false
	}
	s.expression = text
	return true
}

// appendIfFits appends text unless it would push the buffer past the cap.
func (s *Session) appendIfFits(text string) {
	if len(s.expression)+len(text) > s.maxLength {
		return
	}
	s.expression += text
}

func (s *Session) setIfFits(text string) {
	if len(text) > s.maxLength {
		return
	}
	s.expression = text
}

// numberSegment returns the trailing run of digits and decimal points — the
// number currently being typed, or "" when the buffer ends elsewhere.
func numberSegment(s string) string {
	i := len(s)
	for i > 0 && isDigitOrPoint(s[i-1]) {
		i--
	}
	return s[i:]
}

// functionStart locates where a trailing "name(" opener begins, given that s
// ends with '('. A bare parenthesis returns the index of the '(' itself.
func functionStart(s string) int {
	i := len(s) - 1
	j := i
	for j > 0 && isNameByte(s[j-1]) {
		j--
	}
	// Skip digits that belong to a preceding number, not the name ("2log10(").
	for j < i && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	return j
}

func isDigitOrPoint(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

func isNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
