// Package render turns an evaluated Expression Tree (internal/tree) back
// into human-readable text. It is a visitor over the tree's node kinds,
// modeled on the dispatch style this codebase already uses for its other
// tree-shaped data (one method per node kind, switched on by the caller),
// but formalized as a true visitor: the tree package itself knows nothing
// about rendering, and a caller can swap Stringifier implementations to
// change how the same tree prints.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/diceroll/internal/syntax"
	"github.com/dekarrin/diceroll/internal/tree"
	"github.com/dekarrin/rosed"
)

// Stringifier renders each Expression-Tree node kind to text. Composite
// nodes are expected to call back into the same Stringifier to render their
// children, so a caller only ever invokes VisitExpression on the root.
type Stringifier interface {
	VisitExpression(*tree.Expression) string
	VisitLiteral(*tree.Literal) string
	VisitUnOp(*tree.UnOp) string
	VisitBinOp(*tree.BinOp) string
	VisitParenthetical(*tree.Parenthetical) string
	VisitSet(*tree.Set) string
	VisitDice(*tree.Dice) string
	VisitDie(*tree.Die) string
}

// visit dispatches n to the Stringifier method matching its concrete type.
// It exists because tree.Number does not carry an Accept method of its own
// (the tree package stays render-agnostic); every Visit* method on both
// Stringifier implementations funnels its children through this instead of
// a manual type switch of its own.
func visit(v Stringifier, n tree.Number) string {
	switch t := n.(type) {
	case *tree.Expression:
		return v.VisitExpression(t)
	case *tree.Literal:
		return v.VisitLiteral(t)
	case *tree.UnOp:
		return v.VisitUnOp(t)
	case *tree.BinOp:
		return v.VisitBinOp(t)
	case *tree.Parenthetical:
		return v.VisitParenthetical(t)
	case *tree.Set:
		return v.VisitSet(t)
	case *tree.Dice:
		return v.VisitDice(t)
	case *tree.Die:
		return v.VisitDie(t)
	default:
		return fmt.Sprintf("<unrenderable %T>", n)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func withAnnotation(s string, n tree.Number) string {
	if a := n.Annotation(); a != "" {
		return s + "[" + a + "]"
	}
	return s
}

// formatOperators renders the operator suffix a Dice or Set's applied
// Operations contribute to its head (e.g. "kh3", "ro<3", "e6kh3"), in
// application order, the same notation the parser accepts as input.
func formatOperators(ops []syntax.SetOperator) string {
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(formatOperator(op))
	}
	return sb.String()
}

func formatOperator(op syntax.SetOperator) string {
	if op.Op == syntax.OpMin || op.Op == syntax.OpMax {
		return op.Op.String() + formatFloat(op.Num)
	}
	var sb strings.Builder
	sb.WriteString(op.Op.String())
	for _, sel := range op.Selectors {
		if sel.Category != syntax.SelNone {
			sb.WriteString(sel.Category.String())
		}
		sb.WriteString(formatFloat(sel.Num))
	}
	return sb.String()
}

// SimpleStringifier renders plain text: no bold/strikethrough decoration, a
// trailing "(dropped)" marker on excluded values, an arrow for a min/max
// clamp's before/after faces, and a trailing "!" on an exploded die's
// triggering face.
type SimpleStringifier struct{}

func (s SimpleStringifier) VisitExpression(n *tree.Expression) string {
	body := visit(s, n.Roll)
	out := fmt.Sprintf("%s = `%s`", body, formatFloat(n.Total()))
	if n.Comment != "" {
		out += " // " + n.Comment
	}
	return out
}

func (s SimpleStringifier) VisitLiteral(n *tree.Literal) string {
	return withAnnotation(formatFloat(n.Number()), n)
}

func (s SimpleStringifier) VisitUnOp(n *tree.UnOp) string {
	return n.Op + visit(s, n.Value)
}

func (s SimpleStringifier) VisitBinOp(n *tree.BinOp) string {
	return fmt.Sprintf("%s %s %s", visit(s, n.Left()), n.Op, visit(s, n.Right()))
}

func (s SimpleStringifier) VisitParenthetical(n *tree.Parenthetical) string {
	return "(" + visit(s, n.Value) + ")"
}

func (s SimpleStringifier) VisitSet(n *tree.Set) string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = renderMember(s, v)
	}
	return "(" + strings.Join(parts, ", ") + ")" + formatOperators(n.Operations)
}

func (s SimpleStringifier) VisitDice(n *tree.Dice) string {
	parts := make([]string, len(n.Values))
	for i, d := range n.Values {
		parts[i] = s.VisitDie(d)
	}
	return fmt.Sprintf("%dd%d%s (%s)", len(n.Values), n.Size, formatOperators(n.Operations), strings.Join(parts, ", "))
}

func (s SimpleStringifier) VisitDie(n *tree.Die) string {
	text := dieFaceHistory(n, "->", "")
	if !n.Kept() {
		text += " (dropped)"
	}
	return text
}

func renderMember(s Stringifier, n tree.Number) string {
	text := visit(s, n)
	if !n.Kept() {
		text = "(dropped) " + text
	}
	return text
}

// dieFaceHistory renders a Die's Values history. clampArrow separates a
// min/max-clamped before/after pair; explodeMark is appended to an exploded
// face (empty for SimpleStringifier).
func dieFaceHistory(n *tree.Die, clampArrow, explodeBold string) string {
	if len(n.Values) == 0 {
		return "0"
	}
	parts := make([]string, len(n.Values))
	for i, lit := range n.Values {
		face := formatFloat(lit.Number())
		if lit.Exploded {
			face += "!"
			if explodeBold != "" {
				face = explodeBold + face + explodeBold
			}
		}
		parts[i] = face
	}
	if len(parts) > 1 {
		return strings.Join(parts, " "+clampArrow+" ")
	}
	return parts[0]
}

// MarkdownStringifier renders the same shapes as SimpleStringifier but
// bolds a die's current face when it reads the maximum possible value for
// its size, strikes through dropped values, and marks an exploded face with
// "N!" in bold. Multi-die renders are wrapped to 60 columns with rosed,
// matching this codebase's other use of rosed for long generated text.
type MarkdownStringifier struct{}

func (s MarkdownStringifier) VisitExpression(n *tree.Expression) string {
	body := visit(s, n.Roll)
	out := fmt.Sprintf("%s = `%s`", body, formatFloat(n.Total()))
	if n.Comment != "" {
		out += " // " + n.Comment
	}
	return rosed.Edit(out).Wrap(60).String()
}

func (s MarkdownStringifier) VisitLiteral(n *tree.Literal) string {
	return withAnnotation(formatFloat(n.Number()), n)
}

func (s MarkdownStringifier) VisitUnOp(n *tree.UnOp) string {
	return n.Op + visit(s, n.Value)
}

func (s MarkdownStringifier) VisitBinOp(n *tree.BinOp) string {
	return fmt.Sprintf("%s %s %s", visit(s, n.Left()), n.Op, visit(s, n.Right()))
}

func (s MarkdownStringifier) VisitParenthetical(n *tree.Parenthetical) string {
	return "(" + visit(s, n.Value) + ")"
}

func (s MarkdownStringifier) VisitSet(n *tree.Set) string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = renderMarkdownMember(v)
	}
	return "(" + strings.Join(parts, ", ") + ")" + formatOperators(n.Operations)
}

func renderMarkdownMember(n tree.Number) string {
	text := visit(MarkdownStringifier{}, n)
	if !n.Kept() {
		text = "~~" + text + "~~"
	}
	return text
}

func (s MarkdownStringifier) VisitDice(n *tree.Dice) string {
	parts := make([]string, len(n.Values))
	for i, d := range n.Values {
		parts[i] = s.VisitDie(d)
	}
	return fmt.Sprintf("%dd%d%s (%s)", len(n.Values), n.Size, formatOperators(n.Operations), strings.Join(parts, ", "))
}

func (s MarkdownStringifier) VisitDie(n *tree.Die) string {
	text := dieFaceHistory(n, "->", "**")
	if n.Number() == float64(n.Size) && n.Size > 0 {
		text = "**" + text + "**"
	}
	if !n.Kept() {
		text = "~~" + text + "~~"
	}
	return text
}
