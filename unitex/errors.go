package unitex

import (
	"errors"
	"fmt"
)

// All parse-time errors carry the byte offset of the failure in the input.
// An offset of -1 means the error is not tied to a position (table load).

// SyntaxError reports a grammar violation: a second division after a
// denominator, an unmatched parenthesis, an empty factor sequence, or a
// stray character the tokenizer cannot start a factor with.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// MalformedNumberError reports a lexeme that starts like a number but does
// not satisfy the number grammar, including exponents after '^'.
type MalformedNumberError struct {
	Offset int
	Lexeme string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q at offset %d", e.Lexeme, e.Offset)
}

// UnrecognizedUnitError reports a letter run that resolves to no listed
// unit, with or without a prefix decomposition.
type UnrecognizedUnitError struct {
	Offset int
	Symbol string
}

func (e *UnrecognizedUnitError) Error() string {
	return fmt.Sprintf("unrecognized unit %q at offset %d", e.Symbol, e.Offset)
}

// UnterminatedMarkError reports a '{' with no matching '}'.
type UnterminatedMarkError struct {
	Offset int
}

func (e *UnterminatedMarkError) Error() string {
	return fmt.Sprintf("unterminated mark at offset %d", e.Offset)
}

// DefinitionsError reports a problem with the definitions table: a
// duplicate symbol at construction time (Offset -1), or a currency mark
// whose code is not listed (Offset of the mark).
type DefinitionsError struct {
	Offset  int
	Message string
}

func (e *DefinitionsError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("definitions error: %s", e.Message)
	}
	return fmt.Sprintf("definitions error at offset %d: %s", e.Offset, e.Message)
}

// UnrepresentableUnitError is the error surface reserved for bridges that
// map parsed atoms onto an embedding application's native unit system. The
// core never returns it; bridge implementations do when an atom (typically
// a currency or user mark) has no native analogue.
type UnrepresentableUnitError struct {
	Atom   Atom
	Reason string
}

func (e *UnrepresentableUnitError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unrepresentable unit %s", e.Atom)
	}
	return fmt.Sprintf("unrepresentable unit %s: %s", e.Atom, e.Reason)
}

// ErrorOffset extracts the input byte offset from any of the parse-time
// error types. It returns false for errors without a position, including
// load-time DefinitionsErrors.
func ErrorOffset(err error) (int, bool) {
	var (
		syn  *SyntaxError
		num  *MalformedNumberError
		unit *UnrecognizedUnitError
		mark *UnterminatedMarkError
		defs *DefinitionsError
	)
	switch {
	case errors.As(err, &syn):
		return syn.Offset, true
	case errors.As(err, &num):
		return num.Offset, true
	case errors.As(err, &unit):
		return unit.Offset, true
	case errors.As(err, &mark):
		return mark.Offset, true
	case errors.As(err, &defs):
		if defs.Offset < 0 {
			return 0, false
		}
		return defs.Offset, true
	}
	return 0, false
}
