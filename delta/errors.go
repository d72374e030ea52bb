package delta

import "errors"

// Errors returned by delta operations. The document and editor layers wrap
// these with call context, so errors.Is works across the whole engine.
var (
	// ErrLengthMismatch indicates a delta's base length exceeds the length
	// of the delta or document it is applied to.
	ErrLengthMismatch = errors.New("base length exceeds target length")

	// ErrOutOfRange indicates an offset or length outside the valid range.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidOperation indicates a zero or negative length operation or
	// a malformed embed payload.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrParse indicates malformed wire JSON.
	ErrParse = errors.New("malformed delta JSON")
)
