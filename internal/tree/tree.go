// Package tree implements the mutable Expression Tree produced by
// evaluating a dice AST. Every node variant implements Number, the
// polymorphic capability set shared by renderers and the set-operation
// engine: total/keptset computation always walks children on demand, so a
// tree is never left with a stale cached total after a set_child or drop
// mutation.
package tree

import "github.com/dekarrin/diceroll/internal/syntax"

// Number is implemented by every Expression Tree node.
type Number interface {
	// Number is the node's raw arithmetic value, ignoring Kept.
	Number() float64
	// Total is Number() if Kept() is true, else 0.
	Total() float64
	// Set is the ordered multiset of leaf-level numeric values contributed
	// by this subtree, including values belonging to dropped nodes.
	Set() []float64
	// KeptSet is like Set but excludes any value under a dropped node.
	KeptSet() []float64

	Kept() bool
	SetKept(bool)
	Drop()

	Annotation() string
	SetAnnotation(string)

	Children() []Number
	Left() Number
	Right() Number
	SetChild(i int, n Number)
}

// common is embedded by every variant and supplies the Kept/Annotation
// storage and accessors via promoted pointer-receiver methods.
type common struct {
	kept       bool
	annotation string
}

func newCommon() common { return common{kept: true} }

func (c *common) Kept() bool           { return c.kept }
func (c *common) SetKept(k bool)       { c.kept = k }
func (c *common) Drop()                { c.kept = false }
func (c *common) Annotation() string   { return c.annotation }
func (c *common) SetAnnotation(a string) { c.annotation = a }

func totalIfKept(n Number) float64 {
	if n.Kept() {
		return n.Number()
	}
	return 0
}

// --- Expression ---

type Expression struct {
	common
	Roll    Number
	Comment string
}

func NewExpression(roll Number) *Expression {
	return &Expression{common: newCommon(), Roll: roll}
}

func (n *Expression) Number() float64    { return n.Roll.Total() }
func (n *Expression) Total() float64     { return totalIfKept(n) }
func (n *Expression) Set() []float64     { return n.Roll.Set() }
func (n *Expression) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	return n.Roll.KeptSet()
}
func (n *Expression) Children() []Number { return []Number{n.Roll} }
func (n *Expression) Left() Number       { return n.Roll }
func (n *Expression) Right() Number      { return n.Roll }
func (n *Expression) SetChild(i int, c Number) {
	if i != 0 {
		panic("Expression: child index out of range")
	}
	n.Roll = c
}

// --- Literal ---

// Literal is a leaf holding a history of numeric values: rerolls,
// min/max clamps, and pre-explode faces accumulate here with the current
// face always the last entry.
type Literal struct {
	common
	Values   []float64
	Exploded bool
}

func NewLiteral(value float64) *Literal {
	return &Literal{common: newCommon(), Values: []float64{value}}
}

func (n *Literal) Number() float64        { return n.Values[len(n.Values)-1] }
func (n *Literal) Total() float64         { return totalIfKept(n) }
func (n *Literal) Set() []float64         { return []float64{n.Number()} }
func (n *Literal) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	return []float64{n.Number()}
}
func (n *Literal) Children() []Number        { return nil }
func (n *Literal) Left() Number              { return nil }
func (n *Literal) Right() Number             { return nil }
func (n *Literal) SetChild(i int, c Number)  { panic("Literal: has no children") }

// Reroll appends a new current face to the value history.
func (n *Literal) Reroll(face float64) { n.Values = append(n.Values, face) }

// --- UnOp ---

type UnOp struct {
	common
	Op    string
	Value Number
}

func NewUnOp(op string, value Number) *UnOp {
	return &UnOp{common: newCommon(), Op: op, Value: value}
}

func (n *UnOp) Number() float64 {
	switch n.Op {
	case "-":
		return -n.Value.Total()
	default:
		return n.Value.Total()
	}
}
func (n *UnOp) Total() float64     { return totalIfKept(n) }
func (n *UnOp) Set() []float64     { return n.Value.Set() }
func (n *UnOp) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	return n.Value.KeptSet()
}
func (n *UnOp) Children() []Number { return []Number{n.Value} }
func (n *UnOp) Left() Number       { return n.Value }
func (n *UnOp) Right() Number      { return n.Value }
func (n *UnOp) SetChild(i int, c Number) {
	if i != 0 {
		panic("UnOp: child index out of range")
	}
	n.Value = c
}

// --- BinOp ---

type BinOp struct {
	common
	Op          string
	Left_, Right_ Number
}

func NewBinOp(op string, left, right Number) *BinOp {
	return &BinOp{common: newCommon(), Op: op, Left_: left, Right_: right}
}

func (n *BinOp) Number() float64 { return n.Total() }

// Total computes the operator table directly (rather than via Number then
// gating on Kept) since comparison results are themselves the "total" of a
// BinOp and there is no separate pre-kept value distinct from it.
func (n *BinOp) Total() float64 {
	if !n.kept {
		return 0
	}
	l, r := n.Left_.Total(), n.Right_.Total()
	return applyBinOp(n.Op, l, r)
}
func (n *BinOp) Set() []float64 { return append(n.Left_.Set(), n.Right_.Set()...) }
func (n *BinOp) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	return append(n.Left_.KeptSet(), n.Right_.KeptSet()...)
}
func (n *BinOp) Children() []Number { return []Number{n.Left_, n.Right_} }
func (n *BinOp) Left() Number       { return n.Left_ }
func (n *BinOp) Right() Number      { return n.Right_ }
func (n *BinOp) SetChild(i int, c Number) {
	switch i {
	case 0:
		n.Left_ = c
	case 1:
		n.Right_ = c
	default:
		panic("BinOp: child index out of range")
	}
}

// applyBinOp evaluates op against two already-totaled operands. Division by
// zero is the evaluator's responsibility to reject before constructing a
// BinOp node; by the time Total() is called the division has already been
// validated once, but guards remain here so a direct caller of the tree API
// never panics or silently produces Inf/NaN.
func applyBinOp(op string, l, r float64) float64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		if r == 0 {
			return 0
		}
		return l / r
	case "//":
		if r == 0 {
			return 0
		}
		q := l / r
		if q < 0 {
			return -float64(int64(-q))
		}
		return float64(int64(q))
	case "%":
		if r == 0 {
			return 0
		}
		return modSignOfDividend(l, r)
	case "==":
		return boolNum(l == r)
	case "!=":
		return boolNum(l != r)
	case ">":
		return boolNum(l > r)
	case "<":
		return boolNum(l < r)
	case ">=":
		return boolNum(l >= r)
	case "<=":
		return boolNum(l <= r)
	default:
		panic("BinOp: unknown operator " + op)
	}
}

func boolNum(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func modSignOfDividend(l, r float64) float64 {
	m := l - r*float64(int64(l/r))
	return m
}

// --- Parenthetical ---

type Parenthetical struct {
	common
	Value Number
}

func NewParenthetical(value Number) *Parenthetical {
	return &Parenthetical{common: newCommon(), Value: value}
}

func (n *Parenthetical) Number() float64 { return n.Value.Total() }
func (n *Parenthetical) Total() float64  { return totalIfKept(n) }
func (n *Parenthetical) Set() []float64  { return n.Value.Set() }
func (n *Parenthetical) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	return n.Value.KeptSet()
}
func (n *Parenthetical) Children() []Number { return []Number{n.Value} }
func (n *Parenthetical) Left() Number       { return n.Value }
func (n *Parenthetical) Right() Number      { return n.Value }
func (n *Parenthetical) SetChild(i int, c Number) {
	if i != 0 {
		panic("Parenthetical: child index out of range")
	}
	n.Value = c
}

// --- Set ---

// Set holds an ordered collection of arbitrary Number children, the result
// of evaluating a NumberSet (optionally OperatedSet) AST node. Operations
// records the SetOperators applied to it, in application order, so a
// renderer can print the operator suffix (e.g. "kh1") alongside the values
// it acted on.
type Set struct {
	common
	Values     []Number
	Operations []syntax.SetOperator
}

func NewSet(values []Number) *Set {
	return &Set{common: newCommon(), Values: values}
}

func (n *Set) Number() float64 {
	var total float64
	for _, v := range n.Values {
		total += v.Total()
	}
	return total
}
func (n *Set) Total() float64 { return totalIfKept(n) }
func (n *Set) Set() []float64 {
	var out []float64
	for _, v := range n.Values {
		out = append(out, v.Set()...)
	}
	return out
}
func (n *Set) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	var out []float64
	for _, v := range n.Values {
		out = append(out, v.KeptSet()...)
	}
	return out
}
func (n *Set) Children() []Number { return n.Values }
func (n *Set) Left() Number {
	if len(n.Values) == 0 {
		return nil
	}
	return n.Values[0]
}
func (n *Set) Right() Number {
	if len(n.Values) == 0 {
		return nil
	}
	return n.Values[len(n.Values)-1]
}
func (n *Set) SetChild(i int, c Number) { n.Values[i] = c }

// --- Die ---

// Die is a single randomized sample; Values records its full roll history
// (rerolls, min/max clamps, pre-explode faces), current face last.
type Die struct {
	common
	Size   int
	Values []*Literal
}

func NewDie(size int, face float64) *Die {
	return &Die{common: newCommon(), Size: size, Values: []*Literal{NewLiteral(face)}}
}

// NewEmptyDie constructs a die with no face history at all, the
// representation of a d0: it never rolled and reads as 0 until a Reroll
// (from ro/rr/ra) gives it its first real face.
func NewEmptyDie(size int) *Die {
	return &Die{common: newCommon(), Size: size}
}

// Current returns the die's latest face, or nil for an empty d0 die.
func (n *Die) Current() *Literal {
	if len(n.Values) == 0 {
		return nil
	}
	return n.Values[len(n.Values)-1]
}

func (n *Die) Number() float64 {
	if c := n.Current(); c != nil {
		return c.Number()
	}
	return 0
}
func (n *Die) Total() float64 { return totalIfKept(n) }
func (n *Die) Set() []float64 {
	if n.Current() == nil {
		return nil
	}
	return []float64{n.Number()}
}
func (n *Die) KeptSet() []float64 {
	if !n.kept || n.Current() == nil {
		return nil
	}
	return []float64{n.Number()}
}
func (n *Die) Children() []Number       { return nil }
func (n *Die) Left() Number             { return nil }
func (n *Die) Right() Number            { return nil }
func (n *Die) SetChild(i int, c Number) { panic("Die: has no children") }

// Reroll appends a new current face to the roll history.
func (n *Die) Reroll(face float64) {
	n.Values = append(n.Values, NewLiteral(face))
}

// MarkExploded flags the die's current face as having triggered another
// die's addition to the parent Dice. A d0 die with no face yet never
// explodes, since it never rolls.
func (n *Die) MarkExploded() {
	if c := n.Current(); c != nil {
		c.Exploded = true
	}
}

// --- Dice ---

// Dice is deliberately not composed of generic Number Children: per the
// tree-abstraction design, callers search for the Dice node itself rather
// than descending into its Die values through the polymorphic Children
// accessor, so Children() always returns an empty slice for Dice.
type Dice struct {
	common
	Size       int
	Values     []*Die
	Operations []syntax.SetOperator
}

func NewDice(size int, dice []*Die) *Dice {
	return &Dice{common: newCommon(), Size: size, Values: dice}
}

// AddDie appends a freshly rolled die of the same size (used by e and ra).
func (n *Dice) AddDie(face float64) *Die {
	d := NewDie(n.Size, face)
	n.Values = append(n.Values, d)
	return d
}

func (n *Dice) Number() float64 {
	var total float64
	for _, d := range n.Values {
		total += d.Total()
	}
	return total
}
func (n *Dice) Total() float64 { return totalIfKept(n) }
func (n *Dice) Set() []float64 {
	var out []float64
	for _, d := range n.Values {
		out = append(out, d.Set()...)
	}
	return out
}
func (n *Dice) KeptSet() []float64 {
	if !n.kept {
		return nil
	}
	var out []float64
	for _, d := range n.Values {
		out = append(out, d.KeptSet()...)
	}
	return out
}
func (n *Dice) Children() []Number       { return nil }
func (n *Dice) Left() Number             { return nil }
func (n *Dice) Right() Number            { return nil }
func (n *Dice) SetChild(i int, c Number) { panic("Dice: has no children (use Values)") }
