// Package eval walks a parsed dice AST (internal/syntax) and produces a
// mutable Expression Tree (internal/tree), performing randomized rolls
// through an injected rng.Source and applying the set-operation engine
// described alongside it in setops.go. It never mutates the AST it reads.
package eval

import (
	"fmt"
	"strings"

	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/dekarrin/diceroll/internal/syntax"
	"github.com/dekarrin/diceroll/internal/tree"
)

// Evaluator performs a single top-level evaluation. It is not reused across
// calls; Evaluate constructs a fresh one per call via its Context and
// rng.Source arguments.
type Evaluator struct {
	ctx *Context
	src rng.Source
}

// Evaluate walks ast (expected to be a syntax.Expression node) and returns
// the resulting Expression Tree.
func Evaluate(ast syntax.Node, ctx *Context, src rng.Source) (*tree.Expression, error) {
	e := &Evaluator{ctx: ctx, src: src}
	n, err := e.eval(ast)
	if err != nil {
		return nil, err
	}
	ex, ok := n.(*tree.Expression)
	if !ok {
		return nil, fmt.Errorf("eval: top-level AST node was not an Expression")
	}
	return ex, nil
}

func (e *Evaluator) eval(n syntax.Node) (tree.Number, error) {
	if err := e.ctx.tickOp(); err != nil {
		return nil, err
	}

	switch n.Type() {
	case syntax.NExpression:
		ex := n.AsExpression()
		roll, err := e.eval(ex.Roll)
		if err != nil {
			return nil, err
		}
		result := tree.NewExpression(roll)
		if ex.Comment != nil {
			result.Comment = *ex.Comment
		}
		return result, nil

	case syntax.NAnnotatedNumber:
		an := n.AsAnnotatedNumber()
		child, err := e.eval(an.Child)
		if err != nil {
			return nil, err
		}
		child.SetAnnotation(strings.Join(an.Annotations, " "))
		return child, nil

	case syntax.NLiteral:
		lit := n.AsLiteral()
		return tree.NewLiteral(lit.Value), nil

	case syntax.NParenthetical:
		p := n.AsParenthetical()
		child, err := e.eval(p.Child)
		if err != nil {
			return nil, err
		}
		return tree.NewParenthetical(child), nil

	case syntax.NUnOp:
		u := n.AsUnOp()
		child, err := e.eval(u.Child)
		if err != nil {
			return nil, err
		}
		return tree.NewUnOp(u.Op, child), nil

	case syntax.NBinOp:
		return e.evalBinOp(n.AsBinOp())

	case syntax.NNumberSet:
		ns := n.AsNumberSet()
		children := make([]tree.Number, len(ns.Children))
		for i, c := range ns.Children {
			v, err := e.eval(c)
			if err != nil {
				return nil, err
			}
			children[i] = v
		}
		return tree.NewSet(children), nil

	case syntax.NOperatedSet:
		os := n.AsOperatedSet()
		setVal, err := e.eval(os.Set)
		if err != nil {
			return nil, err
		}
		set, ok := setVal.(*tree.Set)
		if !ok {
			return nil, fmt.Errorf("%w: OperatedSet child was not a Set", ErrBadOperator)
		}
		for _, op := range os.Operators {
			if err := e.applySetOp(set, op); err != nil {
				return nil, err
			}
		}
		set.Operations = append(set.Operations, os.Operators...)
		return set, nil

	case syntax.NDice:
		d := n.AsDice()
		return e.rollDice(d.Num, d.Size)

	case syntax.NOperatedDice:
		od := n.AsOperatedDice()
		diceVal, err := e.eval(od.Dice)
		if err != nil {
			return nil, err
		}
		dice, ok := diceVal.(*tree.Dice)
		if !ok {
			return nil, fmt.Errorf("%w: OperatedDice child was not Dice", ErrBadOperator)
		}
		for _, op := range od.Operators {
			if err := e.applyDiceOp(dice, op); err != nil {
				return nil, err
			}
		}
		dice.Operations = append(dice.Operations, od.Operators...)
		return dice, nil

	default:
		return nil, fmt.Errorf("eval: unhandled AST node type %s", n.Type())
	}
}

func (e *Evaluator) evalBinOp(b syntax.BinOp) (tree.Number, error) {
	left, err := e.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(b.Right)
	if err != nil {
		return nil, err
	}

	if (b.Op == "/" || b.Op == "//" || b.Op == "%") && right.Total() == 0 {
		return nil, fmt.Errorf("%w: right-hand side of %q evaluated to 0", ErrDivideByZero, b.Op)
	}

	return tree.NewBinOp(b.Op, left, right), nil
}

// rollDice materializes num dice of the given size. Size 0 is a
// deliberately benign edge case: the evaluator never rolls for it and
// produces dice with an empty face history (Number() reads as 0). num < 1
// is a value error, not a syntax error: "0d6" is a syntactically well-formed
// Dice node, it just names an empty roll, the same distinction size 0 gets.
func (e *Evaluator) rollDice(num, size int) (*tree.Dice, error) {
	if num < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadDiceCount, num)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadDiceSize, size)
	}

	dice := make([]*tree.Die, 0, num)
	for i := 0; i < num; i++ {
		if size == 0 {
			dice = append(dice, tree.NewEmptyDie(0))
			continue
		}
		if err := e.ctx.tickRoll(); err != nil {
			return nil, err
		}
		face := e.src.Next(size)
		dice = append(dice, tree.NewDie(size, float64(face)))
	}
	return tree.NewDice(size, dice), nil
}

func diceMembers(values []*tree.Die) []member {
	members := make([]member, len(values))
	for i, d := range values {
		members[i] = member{idx: i, value: d.Number(), kept: d.Kept()}
	}
	return members
}

func setMembers(values []tree.Number) []member {
	members := make([]member, len(values))
	for i, v := range values {
		members[i] = member{idx: i, value: v.Total(), kept: v.Kept()}
	}
	return members
}

// applySetOp applies an operator to a plain Set; only k (keep) and p (drop)
// are meaningful against an arbitrary-member set.
func (e *Evaluator) applySetOp(set *tree.Set, op syntax.SetOperator) error {
	if op.Op != syntax.OpKeep && op.Op != syntax.OpDrop {
		return fmt.Errorf("%w: %q is not valid on a set (only k and p are)", ErrBadOperator, op.Op)
	}

	idxSet, err := selectIndices(setMembers(set.Values), op.Selectors)
	if err != nil {
		return err
	}

	switch op.Op {
	case syntax.OpKeep:
		for i, v := range set.Values {
			if !idxSet[i] {
				v.Drop()
			}
		}
	case syntax.OpDrop:
		for i := range idxSet {
			set.Values[i].Drop()
		}
	}
	return nil
}

// applyDiceOp applies one set operator to a Dice in declaration order,
// implementing the per-operator semantics described in §4.4.2.
func (e *Evaluator) applyDiceOp(dice *tree.Dice, op syntax.SetOperator) error {
	switch op.Op {
	case syntax.OpKeep, syntax.OpDrop:
		idxSet, err := selectIndices(diceMembers(dice.Values), op.Selectors)
		if err != nil {
			return err
		}
		if op.Op == syntax.OpKeep {
			for i, d := range dice.Values {
				if !idxSet[i] {
					d.Drop()
				}
			}
		} else {
			for i := range idxSet {
				dice.Values[i].Drop()
			}
		}
		return nil

	case syntax.OpReroll:
		for {
			idxSet, err := selectIndices(diceMembers(dice.Values), op.Selectors)
			if err != nil {
				return err
			}
			if len(idxSet) == 0 {
				return nil
			}
			for i := range idxSet {
				if err := e.ctx.tickRoll(); err != nil {
					return err
				}
				face := e.src.Next(dice.Size)
				dice.Values[i].Reroll(float64(face))
			}
		}

	case syntax.OpRerollOnce:
		idxSet, err := selectIndices(diceMembers(dice.Values), op.Selectors)
		if err != nil {
			return err
		}
		for i := range idxSet {
			if err := e.ctx.tickRoll(); err != nil {
				return err
			}
			face := e.src.Next(dice.Size)
			dice.Values[i].Reroll(float64(face))
		}
		return nil

	case syntax.OpRerollAdd:
		idxSet, err := selectIndices(diceMembers(dice.Values), op.Selectors)
		if err != nil {
			return err
		}
		if firstIndex(idxSet) >= 0 {
			if err := e.ctx.tickRoll(); err != nil {
				return err
			}
			face := e.src.Next(dice.Size)
			dice.AddDie(float64(face))
		}
		return nil

	case syntax.OpExplode:
		triggered := make(map[*tree.Die]bool)
		for {
			idxSet, err := selectIndices(diceMembers(dice.Values), op.Selectors)
			if err != nil {
				return err
			}
			var fresh []int
			for i := range idxSet {
				if !triggered[dice.Values[i]] {
					fresh = append(fresh, i)
				}
			}
			if len(fresh) == 0 {
				return nil
			}
			for _, i := range fresh {
				d := dice.Values[i]
				triggered[d] = true
				d.MarkExploded()
				if err := e.ctx.tickRoll(); err != nil {
					return err
				}
				face := e.src.Next(dice.Size)
				dice.AddDie(float64(face))
			}
		}

	case syntax.OpMin:
		for _, d := range dice.Values {
			if !d.Kept() {
				continue
			}
			if d.Number() < op.Num {
				d.Reroll(op.Num)
			}
		}
		return nil

	case syntax.OpMax:
		for _, d := range dice.Values {
			if !d.Kept() {
				continue
			}
			if d.Number() > op.Num {
				d.Reroll(op.Num)
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown operator code", ErrBadOperator)
	}
}
