// Package errors declares the sentinel error categories used across the
// translator, mirroring the taxonomy described for the format: format
// errors, symbol errors, structural errors, and non-fatal warnings.
package errors

import "fmt"

// Format errors: corrupt or unrecognised binary input.
var (
	ErrBadMagic       = fmt.Errorf("bad magic number")
	ErrUnknownVersion = fmt.Errorf("unsupported container version")
	ErrBadPadding     = fmt.Errorf("padding word is not 0xffffffff")
	ErrSectionOverrun = fmt.Errorf("read past end of section")
	ErrUnknownOpCode  = fmt.Errorf("unknown opcode")
	ErrUnexpectedEnd  = fmt.Errorf("unexpected end of word stream")
)

// Symbol errors: ill-formed text input.
var (
	ErrUnknownSymbol    = fmt.Errorf("unknown symbol")
	ErrDuplicateLabel   = fmt.Errorf("duplicate label")
	ErrDanglingLabel    = fmt.Errorf("dangling label")
	ErrScopeConflict    = fmt.Errorf("scope or type conflict")
	ErrDuplicateID      = fmt.Errorf("duplicate identifier")
	ErrIdentifierSpace  = fmt.Errorf("identifier space exhausted")
)

// Structural errors: malformed text shape.
var (
	ErrUnmatchedBrace    = fmt.Errorf("unmatched brace")
	ErrUnexpectedToken   = fmt.Errorf("unexpected token")
	ErrExpressionUnclosed = fmt.Errorf("expression left open at line end")
)

// MakeError wraps a sentinel error with formatted detail, in the style
// of %w-based wrapping so callers can still errors.Is against the
// sentinel.
func MakeError(err error, detailsBody string, args ...any) error {
	return fmt.Errorf("%w: "+detailsBody, append([]any{err}, args...)...)
}
