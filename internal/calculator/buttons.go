package calculator

import (
	"fmt"
	"strings"
)

// OpKind tags one symbolic edit operation. Keypad identifiers are parsed
// into these at the delivery boundary; the session never sees raw button
// text.
type OpKind int

const (
	OpDigit OpKind = iota
	OpDecimalPoint
	OpOperator
	OpFunction
	OpConstant
	OpParen
	OpClearEntry
	OpClearAll
	OpBackspace
	OpEvaluate
)

// String names the kind for metrics and logs.
func (k OpKind) String() string {
	switch k {
	case OpDigit:
		return "digit"
	case OpDecimalPoint:
		return "decimal_point"
	case OpOperator:
		return "operator"
	case OpFunction:
		return "function"
	case OpConstant:
		return "constant"
	case OpParen:
		return "paren"
	case OpClearEntry:
		return "clear_entry"
	case OpClearAll:
		return "clear_all"
	case OpBackspace:
		return "backspace"
	case OpEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

// Op is one decoded user action.
type Op struct {
	Kind     OpKind
	Digit    byte   // OpDigit
	Operator string // OpOperator
	Name     string // OpFunction, OpConstant
	Open     bool   // OpParen
}

// ParseButton decodes a keypad identifier into an Op. The vocabulary:
// num_0..num_9, num_dot, op_+ op_- op_* op_/ op_^ op_%, func_<name>,
// const_<name>, paren_open, paren_close, clear_entry, clear_all, backspace,
// calculate.
func ParseButton(data string) (Op, error) {
	switch data {
	case "num_dot":
		return Op{Kind: OpDecimalPoint}, nil
	case "paren_open":
		return Op{Kind: OpParen, Open: true}, nil
	case "paren_close":
		return Op{Kind: OpParen}, nil
	case "clear_entry":
		return Op{Kind: OpClearEntry}, nil
	case "clear_all":
		return Op{Kind: OpClearAll}, nil
	case "backspace":
		return Op{Kind: OpBackspace}, nil
	case "calculate":
		return Op{Kind: OpEvaluate}, nil
	}

	prefix, arg, ok := strings.Cut(data, "_")
	if !ok || arg == "" {
		return Op{}, fmt.Errorf("unknown button %q", data)
	}

	switch prefix {
	case "num":
		if len(arg) != 1 || arg[0] < '0' || arg[0] > '9' {
			return Op{}, fmt.Errorf("unknown digit button %q", data)
		}
		return Op{Kind: OpDigit, Digit: arg[0]}, nil

	case "op":
		if len(arg) != 1 || !strings.Contains("+-*/^%", arg) {
			return Op{}, fmt.Errorf("unknown operator button %q", data)
		}
		return Op{Kind: OpOperator, Operator: arg}, nil

	case "func":
		return Op{Kind: OpFunction, Name: arg}, nil

	case "const":
		return Op{Kind: OpConstant, Name: arg}, nil
	}

	return Op{}, fmt.Errorf("unknown button %q", data)
}
