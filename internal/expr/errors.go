package expr

import "errors"

// ErrorKind classifies why an expression was rejected or failed to compute.
type ErrorKind string

const (
	KindTooLong          ErrorKind = "too_long"
	KindInvalidCharacter ErrorKind = "invalid_character"
	KindUnbalancedParens ErrorKind = "unbalanced_parens"
	KindSyntax           ErrorKind = "syntax"
	KindDivisionByZero   ErrorKind = "division_by_zero"
	KindDomain           ErrorKind = "domain"
	KindOverflow         ErrorKind = "overflow"
)

// Error is a classified evaluation failure. All failures returned by
// Validate and Evaluate are of this type; none are fatal to the process.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf extracts the ErrorKind from err, or KindSyntax if err is not a
// classified evaluation error.
func KindOf(err error) ErrorKind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindSyntax
}
