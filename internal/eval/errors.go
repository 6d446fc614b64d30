package eval

import "errors"

// Sentinels the root package inspects (via errors.Is) to decide which
// public error type to wrap a failure in. Value-category sentinels are
// wrapped as RollValueError; the ceiling sentinels are wrapped as
// TooManyRolls.
var (
	ErrDivideByZero  = errors.New("division by zero")
	ErrBadOperator   = errors.New("set operator is not valid for its target")
	ErrBadSelector   = errors.New("malformed selector")
	ErrNegativeCount = errors.New("selector cannot select a negative count")
	ErrBadDiceSize   = errors.New("die size cannot be negative")
	ErrBadDiceCount  = errors.New("dice count must be at least 1")
	ErrTooManyRolls  = errors.New("roll ceiling exceeded")
	ErrTooComplex    = errors.New("expression too complex: AST operation ceiling exceeded")
)
