package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by the middle-end wraps exactly one.
var (
	ErrMalformedProgram       = errors.New("malformed program")
	ErrUnresolvedDefinition   = errors.New("unresolved definition")
	ErrNonTerminatingFixpoint = errors.New("fixpoint did not terminate")
)

// Error carries the location of a middle-end failure
type Error struct {
	Kind  error
	Func  string
	Block string
	Label string
	Var   string
	Msg   string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Func != "" {
		fmt.Fprintf(&sb, ": function %s", e.Func)
	}
	if e.Block != "" {
		fmt.Fprintf(&sb, ": block %s", e.Block)
	}
	if e.Label != "" {
		fmt.Fprintf(&sb, ": label %s", e.Label)
	}
	if e.Var != "" {
		fmt.Fprintf(&sb, ": variable %s", e.Var)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// Malformed reports a structural problem in block `block`
func Malformed(block, label, format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedProgram, Block: block, Label: label, Msg: fmt.Sprintf(format, args...)}
}

// WithFunc annotates err with a function name when it is an *Error
func WithFunc(err error, fn string) error {
	var e *Error
	if errors.As(err, &e) && e.Func == "" {
		cp := *e
		cp.Func = fn
		return &cp
	}
	return err
}
