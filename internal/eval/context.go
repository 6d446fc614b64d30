package eval

import "fmt"

// DefaultMaxRolls and DefaultMaxASTOperations are the documented, override-
// able ceiling defaults named in the engine's external-interface contract.
const (
	DefaultMaxRolls         = 1000
	DefaultMaxASTOperations = 10000
)

// Context is a per-top-level-evaluation budget tracker. It is created fresh
// for each call to Evaluate and discarded afterward; it is never shared
// across concurrent evaluations.
type Context struct {
	rollsPerformed int
	astOperations  int
	maxRolls       int
	maxASTOps      int
}

// NewContext returns a Context with the given ceilings. A ceiling of 0 or
// less falls back to its documented default.
func NewContext(maxRolls, maxASTOps int) *Context {
	if maxRolls <= 0 {
		maxRolls = DefaultMaxRolls
	}
	if maxASTOps <= 0 {
		maxASTOps = DefaultMaxASTOperations
	}
	return &Context{maxRolls: maxRolls, maxASTOps: maxASTOps}
}

func (c *Context) RollsPerformed() int { return c.rollsPerformed }
func (c *Context) ASTOperations() int  { return c.astOperations }

// tickOp increments the AST-operation counter; call once per node visited.
func (c *Context) tickOp() error {
	c.astOperations++
	if c.astOperations > c.maxASTOps {
		return fmt.Errorf("%w (max %d)", ErrTooComplex, c.maxASTOps)
	}
	return nil
}

// tickRoll increments the roll counter; call once per die face generated,
// before the face is actually drawn from the RNG source, so that a ceiling
// fails before any further allocation happens.
func (c *Context) tickRoll() error {
	c.rollsPerformed++
	if c.rollsPerformed > c.maxRolls {
		return fmt.Errorf("%w (max %d)", ErrTooManyRolls, c.maxRolls)
	}
	return nil
}
