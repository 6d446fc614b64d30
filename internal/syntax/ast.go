// Package syntax defines the immutable abstract syntax tree produced by
// parsing a dice expression. Every node implements Node, a tagged-variant
// interface modeled on the polymorphic AST node pattern used elsewhere in
// this codebase: a Type() tag plus one As<Variant>() accessor per variant,
// each of which panics if called against a node of the wrong type.
package syntax

import "fmt"

// NodeType identifies which variant of Node a given value actually holds.
type NodeType int

const (
	NExpression NodeType = iota
	NAnnotatedNumber
	NLiteral
	NParenthetical
	NUnOp
	NBinOp
	NOperatedSet
	NOperatedDice
	NNumberSet
	NDice
)

func (t NodeType) String() string {
	switch t {
	case NExpression:
		return "Expression"
	case NAnnotatedNumber:
		return "AnnotatedNumber"
	case NLiteral:
		return "Literal"
	case NParenthetical:
		return "Parenthetical"
	case NUnOp:
		return "UnOp"
	case NBinOp:
		return "BinOp"
	case NOperatedSet:
		return "OperatedSet"
	case NOperatedDice:
		return "OperatedDice"
	case NNumberSet:
		return "NumberSet"
	case NDice:
		return "Dice"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is implemented by every AST node variant. As<Variant> accessors panic
// when called on a node whose Type() does not match; callers are expected to
// switch on Type() before calling one.
type Node interface {
	Type() NodeType

	AsExpression() Expression
	AsAnnotatedNumber() AnnotatedNumber
	AsLiteral() Literal
	AsParenthetical() Parenthetical
	AsUnOp() UnOp
	AsBinOp() BinOp
	AsOperatedSet() OperatedSet
	AsOperatedDice() OperatedDice
	AsNumberSet() NumberSet
	AsDice() Dice
}

// base is embedded in every node variant and supplies panicking defaults for
// every As<Variant> accessor; each variant overrides only the one that
// matches its own Type().
type base struct {
	t NodeType
}

func (b base) Type() NodeType { return b.t }

func wrongType(want NodeType, have NodeType) string {
	return fmt.Sprintf("node is a %s, not a %s", have, want)
}

func (b base) AsExpression() Expression {
	panic(wrongType(NExpression, b.t))
}
func (b base) AsAnnotatedNumber() AnnotatedNumber {
	panic(wrongType(NAnnotatedNumber, b.t))
}
func (b base) AsLiteral() Literal {
	panic(wrongType(NLiteral, b.t))
}
func (b base) AsParenthetical() Parenthetical {
	panic(wrongType(NParenthetical, b.t))
}
func (b base) AsUnOp() UnOp {
	panic(wrongType(NUnOp, b.t))
}
func (b base) AsBinOp() BinOp {
	panic(wrongType(NBinOp, b.t))
}
func (b base) AsOperatedSet() OperatedSet {
	panic(wrongType(NOperatedSet, b.t))
}
func (b base) AsOperatedDice() OperatedDice {
	panic(wrongType(NOperatedDice, b.t))
}
func (b base) AsNumberSet() NumberSet {
	panic(wrongType(NNumberSet, b.t))
}
func (b base) AsDice() Dice {
	panic(wrongType(NDice, b.t))
}

// SelectorCategory identifies how a SetSelector picks members of a set.
type SelectorCategory int

const (
	// SelNone selects members whose value equals the selector's Num exactly
	// (a "literal" selector).
	SelNone SelectorCategory = iota
	SelHighest
	SelLowest
	SelGreater
	SelLess
)

func (c SelectorCategory) String() string {
	switch c {
	case SelNone:
		return "literal"
	case SelHighest:
		return "h"
	case SelLowest:
		return "l"
	case SelGreater:
		return ">"
	case SelLess:
		return "<"
	default:
		return fmt.Sprintf("SelectorCategory(%d)", int(c))
	}
}

// SetSelector picks members of a selectable set by category and threshold.
type SetSelector struct {
	Category SelectorCategory
	Num      float64
}

// OperatorCode identifies a set operator.
type OperatorCode int

const (
	OpKeep OperatorCode = iota
	OpDrop
	OpReroll
	OpRerollOnce
	OpRerollAdd
	OpExplode
	OpMin
	OpMax
)

func (o OperatorCode) String() string {
	switch o {
	case OpKeep:
		return "k"
	case OpDrop:
		return "p"
	case OpReroll:
		return "rr"
	case OpRerollOnce:
		return "ro"
	case OpRerollAdd:
		return "ra"
	case OpExplode:
		return "e"
	case OpMin:
		return "mi"
	case OpMax:
		return "ma"
	default:
		return fmt.Sprintf("OperatorCode(%d)", int(o))
	}
}

// SetOperator is an operator code plus the selectors it is applied against;
// the effective selection is the union of all Selectors' picks.
type SetOperator struct {
	Op        OperatorCode
	Selectors []SetSelector
	// Num is the operator's own argument, used by mi/ma (the clamp value).
	// Unused by operators that take their argument entirely from Selectors.
	Num float64
}

// Expression is the root of a parsed dice expression: a single Roll child
// plus an optional detached comment split off by the parser when comment
// mode is enabled.
type Expression struct {
	base
	Roll    Node
	Comment *string
}

func NewExpression(roll Node, comment *string) Node {
	return Expression{base: base{NExpression}, Roll: roll, Comment: comment}
}
func (n Expression) AsExpression() Expression { return n }

// AnnotatedNumber wraps a child number-producing node with an ordered list
// of bracketed annotation strings; multiple annotations on one number are
// joined with a single space when rendered.
type AnnotatedNumber struct {
	base
	Child       Node
	Annotations []string
}

func NewAnnotatedNumber(child Node, annotations []string) Node {
	return AnnotatedNumber{base: base{NAnnotatedNumber}, Child: child, Annotations: annotations}
}
func (n AnnotatedNumber) AsAnnotatedNumber() AnnotatedNumber { return n }

// Literal is a constant number, integer or decimal.
type Literal struct {
	base
	Value float64
}

func NewLiteral(value float64) Node {
	return Literal{base: base{NLiteral}, Value: value}
}
func (n Literal) AsLiteral() Literal { return n }

// Parenthetical wraps a single child expression in parens.
type Parenthetical struct {
	base
	Child Node
}

func NewParenthetical(child Node) Node {
	return Parenthetical{base: base{NParenthetical}, Child: child}
}
func (n Parenthetical) AsParenthetical() Parenthetical { return n }

// UnOp is a unary + or - applied to a single child.
type UnOp struct {
	base
	Op    string
	Child Node
}

func NewUnOp(op string, child Node) Node {
	return UnOp{base: base{NUnOp}, Op: op, Child: child}
}
func (n UnOp) AsUnOp() UnOp { return n }

// BinOp is a binary arithmetic or comparison operator with two children.
type BinOp struct {
	base
	Op    string
	Left  Node
	Right Node
}

func NewBinOp(op string, left, right Node) Node {
	return BinOp{base: base{NBinOp}, Op: op, Left: left, Right: right}
}
func (n BinOp) AsBinOp() BinOp { return n }

// OperatedSet is a NumberSet producer with an ordered list of set operators
// applied to it. Only k and p are valid against a NumberSet (checked at
// evaluation time, since the grammar does not distinguish them positionally).
type OperatedSet struct {
	base
	Set       Node // always a NumberSet
	Operators []SetOperator
}

func NewOperatedSet(set Node, ops []SetOperator) Node {
	return OperatedSet{base: base{NOperatedSet}, Set: set, Operators: ops}
}
func (n OperatedSet) AsOperatedSet() OperatedSet { return n }

// OperatedDice is a Dice producer with an ordered list of set operators
// applied to it. All eight operator codes are valid against Dice.
type OperatedDice struct {
	base
	Dice      Node // always a Dice
	Operators []SetOperator
}

func NewOperatedDice(dice Node, ops []SetOperator) Node {
	return OperatedDice{base: base{NOperatedDice}, Dice: dice, Operators: ops}
}
func (n OperatedDice) AsOperatedDice() OperatedDice { return n }

// NumberSet is an ordered list of child expressions written as "(a, b, c)".
// A single child with no trailing comma is parsed as a Parenthetical
// instead, never as a NumberSet.
type NumberSet struct {
	base
	Children []Node
}

func NewNumberSet(children []Node) Node {
	return NumberSet{base: base{NNumberSet}, Children: children}
}
func (n NumberSet) AsNumberSet() NumberSet { return n }

// Dice is an "NdM" atom: Num dice of Size faces each.
type Dice struct {
	base
	Num  int
	Size int
}

func NewDice(num, size int) Node {
	return Dice{base: base{NDice}, Num: num, Size: size}
}
func (n Dice) AsDice() Dice { return n }
