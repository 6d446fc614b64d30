// Package parse implements a Pratt parser over the token stream produced by
// internal/lex, building the immutable AST defined in internal/syntax. The
// technique — nud for a token's "null denotation" (how it starts an
// expression), led for its "left denotation" (how it continues one), and an
// lbp (left binding power) driving the precedence loop — is the same
// hand-rolled parsing approach this engine's lexer/parser pair is modeled
// on; only the grammar is new.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dekarrin/diceroll/internal/lex"
	"github.com/dekarrin/diceroll/internal/syntax"
)

// unarybp is the binding power unary +/- parse their operand with: tighter
// than multiplicative (20) so unary never captures a following binary
// operator, but looser than dice atoms and their postfix suffixes (100,
// 110) so "-1d6" parses as -(1d6), not (-1)d6.
const unaryBP = 90

type parser struct {
	stream *lex.Stream
}

// Parse tokenizes and parses expr into an Expression AST node. When
// allowComments is true, a trailing word (or run of words) that keeps the
// expression from parsing as a whole is progressively split off the end
// and retried as a comment; otherwise any such trailing text is a syntax
// error.
func Parse(expr string, allowComments bool) (syntax.Node, error) {
	roll, err := parseFull(expr)
	if err == nil {
		return syntax.NewExpression(roll, nil), nil
	}
	if !allowComments {
		return nil, err
	}

	candidate := expr
	for {
		trimmed := strings.TrimRightFunc(candidate, unicode.IsSpace)
		cut := strings.LastIndexFunc(trimmed, unicode.IsSpace)
		if cut < 0 {
			return nil, err
		}
		candidate = trimmed[:cut]

		roll, rollErr := parseFull(candidate)
		if rollErr == nil {
			comment := strings.TrimSpace(expr[len(candidate):])
			return syntax.NewExpression(roll, &comment), nil
		}
	}
}

// parseFull parses s and additionally requires that the entire token
// stream was consumed; trailing tokens of any kind are a syntax error here,
// since comment-splitting is handled one level up by Parse.
func parseFull(s string) (syntax.Node, error) {
	stream, err := lex.Lex(s)
	if err != nil {
		return nil, err
	}

	p := &parser{stream: &stream}
	roll, err := parseExpr(p, 0)
	if err != nil {
		return nil, err
	}

	if tok := p.stream.Peek(); tok.Class != lex.ClassEndOfText {
		return nil, lex.SyntaxError{
			Message: fmt.Sprintf("unexpected trailing text starting with %q", tok.Lexeme),
			Line:    tok.Line, Col: tok.Col,
		}
	}
	return roll, nil
}

func parseExpr(p *parser, rbp int) (syntax.Node, error) {
	if p.stream.Remaining() < 1 {
		return nil, fmt.Errorf("no tokens to parse")
	}

	t := p.stream.Next()
	left, err := nud(p, t)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, lex.SyntaxError{
			Message: fmt.Sprintf("unexpected %s\n(%[1]s cannot be at the start of an expression)", t.Class.Human()),
			Line:    t.Line, Col: t.Col,
		}
	}

	for rbp < p.stream.Peek().Class.Lbp() {
		t = p.stream.Next()
		left, err = led(p, left, t)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func nud(p *parser, t lex.Token) (syntax.Node, error) {
	switch t.Class {
	case lex.ClassNumber:
		v, err := strconv.ParseFloat(t.Lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("lexer produced unparseable number %q", t.Lexeme)
		}
		return syntax.NewLiteral(v), nil
	case lex.ClassMinus:
		operand, err := parseExpr(p, unaryBP)
		if err != nil {
			return nil, err
		}
		return syntax.NewUnOp("-", operand), nil
	case lex.ClassPlus:
		operand, err := parseExpr(p, unaryBP)
		if err != nil {
			return nil, err
		}
		return syntax.NewUnOp("+", operand), nil
	case lex.ClassLParen:
		return parseGroupOrSet(p)
	default:
		return nil, nil
	}
}

func parseGroupOrSet(p *parser) (syntax.Node, error) {
	if p.stream.Peek().Class == lex.ClassRParen {
		p.stream.Next()
		return syntax.NewNumberSet(nil), nil
	}

	first, err := parseExpr(p, 0)
	if err != nil {
		return nil, err
	}

	if p.stream.Peek().Class != lex.ClassComma {
		if err := expect(p, lex.ClassRParen); err != nil {
			return nil, err
		}
		return syntax.NewParenthetical(first), nil
	}

	children := []syntax.Node{first}
	for p.stream.Peek().Class == lex.ClassComma {
		p.stream.Next()
		if p.stream.Peek().Class == lex.ClassRParen {
			break // trailing comma
		}
		next, err := parseExpr(p, 0)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if err := expect(p, lex.ClassRParen); err != nil {
		return nil, err
	}
	return syntax.NewNumberSet(children), nil
}

func expect(p *parser, want lex.Class) error {
	t := p.stream.Next()
	if t.Class != want {
		return lex.SyntaxError{
			Message: fmt.Sprintf("expected %s but found %s", want.Human(), t.Class.Human()),
			Line:    t.Line, Col: t.Col,
		}
	}
	return nil
}

func led(p *parser, left syntax.Node, t lex.Token) (syntax.Node, error) {
	switch t.Class {
	case lex.ClassPlus, lex.ClassMinus, lex.ClassStar, lex.ClassSlash, lex.ClassSlashSlash,
		lex.ClassPercent, lex.ClassEq, lex.ClassNeq, lex.ClassGe, lex.ClassLe, lex.ClassGt, lex.ClassLt:
		right, err := parseExpr(p, t.Class.Lbp())
		if err != nil {
			return nil, err
		}
		return syntax.NewBinOp(t.Lexeme, left, right), nil
	case lex.ClassD:
		return ledDice(p, left, t)
	case lex.ClassKeep, lex.ClassDrop, lex.ClassReroll, lex.ClassRerollOnce,
		lex.ClassRerollAdd, lex.ClassExplode, lex.ClassMin, lex.ClassMax:
		return ledSetOperator(p, left, t)
	case lex.ClassAnnotation:
		return ledAnnotation(left, t), nil
	default:
		return nil, lex.SyntaxError{
			Message: fmt.Sprintf("unexpected %s", t.Class.Human()),
			Line:    t.Line, Col: t.Col,
		}
	}
}

func ledDice(p *parser, left syntax.Node, t lex.Token) (syntax.Node, error) {
	if left.Type() != syntax.NLiteral {
		return nil, lex.SyntaxError{Message: "dice count must be a literal number", Line: t.Line, Col: t.Col}
	}
	lit := left.AsLiteral()
	num := int(lit.Value)

	sizeTok := p.stream.Next()
	if sizeTok.Class != lex.ClassNumber {
		return nil, lex.SyntaxError{Message: "expected die size after 'd'", Line: sizeTok.Line, Col: sizeTok.Col}
	}
	sizeF, err := strconv.ParseFloat(sizeTok.Lexeme, 64)
	if err != nil {
		return nil, fmt.Errorf("lexer produced unparseable number %q", sizeTok.Lexeme)
	}
	size := int(sizeF)
	if size < 0 {
		return nil, lex.SyntaxError{Message: "die size cannot be negative", Line: sizeTok.Line, Col: sizeTok.Col}
	}

	return syntax.NewDice(num, size), nil
}

func ledAnnotation(left syntax.Node, t lex.Token) syntax.Node {
	if left.Type() == syntax.NAnnotatedNumber {
		an := left.AsAnnotatedNumber()
		annotations := append(append([]string{}, an.Annotations...), t.Lexeme)
		return syntax.NewAnnotatedNumber(an.Child, annotations)
	}
	return syntax.NewAnnotatedNumber(left, []string{t.Lexeme})
}

func ledSetOperator(p *parser, left syntax.Node, t lex.Token) (syntax.Node, error) {
	op, err := parseSetOperator(p, t)
	if err != nil {
		return nil, err
	}

	switch left.Type() {
	case syntax.NDice:
		return syntax.NewOperatedDice(left, []syntax.SetOperator{op}), nil
	case syntax.NOperatedDice:
		od := left.AsOperatedDice()
		ops := append(append([]syntax.SetOperator{}, od.Operators...), op)
		return syntax.NewOperatedDice(od.Dice, ops), nil
	case syntax.NNumberSet:
		if op.Op != syntax.OpKeep && op.Op != syntax.OpDrop {
			return nil, lex.SyntaxError{Message: fmt.Sprintf("operator %q is only valid on dice, not a set", op.Op), Line: t.Line, Col: t.Col}
		}
		return syntax.NewOperatedSet(left, []syntax.SetOperator{op}), nil
	case syntax.NOperatedSet:
		if op.Op != syntax.OpKeep && op.Op != syntax.OpDrop {
			return nil, lex.SyntaxError{Message: fmt.Sprintf("operator %q is only valid on dice, not a set", op.Op), Line: t.Line, Col: t.Col}
		}
		os := left.AsOperatedSet()
		ops := append(append([]syntax.SetOperator{}, os.Operators...), op)
		return syntax.NewOperatedSet(os.Set, ops), nil
	default:
		return nil, lex.SyntaxError{Message: fmt.Sprintf("operator %q is not valid here", t.Lexeme), Line: t.Line, Col: t.Col}
	}
}

func opCodeFor(c lex.Class) syntax.OperatorCode {
	switch c {
	case lex.ClassKeep:
		return syntax.OpKeep
	case lex.ClassDrop:
		return syntax.OpDrop
	case lex.ClassReroll:
		return syntax.OpReroll
	case lex.ClassRerollOnce:
		return syntax.OpRerollOnce
	case lex.ClassRerollAdd:
		return syntax.OpRerollAdd
	case lex.ClassExplode:
		return syntax.OpExplode
	case lex.ClassMin:
		return syntax.OpMin
	case lex.ClassMax:
		return syntax.OpMax
	default:
		panic("not a set operator token class")
	}
}

// parseSetOperator parses the selector clause (if any) following an
// operator keyword. mi/ma take their argument directly as a clamp value
// with an implicit "all members" selection; every other operator takes one
// or more selectors (h/l/>/< plus a number, or a bare number for a
// literal-value selector), each immediately followed by another selector's
// leading token accumulating onto the same operator (e.g. "kh2l1" is one
// k operator with two selectors, not two operators).
func parseSetOperator(p *parser, opTok lex.Token) (syntax.SetOperator, error) {
	code := opCodeFor(opTok.Class)

	if code == syntax.OpMin || code == syntax.OpMax {
		numTok := p.stream.Next()
		if numTok.Class != lex.ClassNumber {
			return syntax.SetOperator{}, lex.SyntaxError{Message: fmt.Sprintf("expected number after %q", opTok.Lexeme), Line: numTok.Line, Col: numTok.Col}
		}
		v, _ := strconv.ParseFloat(numTok.Lexeme, 64)
		return syntax.SetOperator{Op: code, Num: v}, nil
	}

	sel, err := parseSelector(p, opTok)
	if err != nil {
		return syntax.SetOperator{}, err
	}
	selectors := []syntax.SetSelector{sel}

	for isSelectorStart(p.stream.Peek().Class) {
		sel, err := parseSelector(p, opTok)
		if err != nil {
			return syntax.SetOperator{}, err
		}
		selectors = append(selectors, sel)
	}

	return syntax.SetOperator{Op: code, Selectors: selectors}, nil
}

// isSelectorStart reports whether c begins another selector continuing the
// current operator, as opposed to a new operator keyword or anything else
// that ends the operator clause.
func isSelectorStart(c lex.Class) bool {
	switch c {
	case lex.ClassHighest, lex.ClassLowest, lex.ClassGt, lex.ClassLt, lex.ClassNumber:
		return true
	default:
		return false
	}
}

func parseSelector(p *parser, opTok lex.Token) (syntax.SetSelector, error) {
	peek := p.stream.Peek()
	switch peek.Class {
	case lex.ClassHighest:
		p.stream.Next()
		return numberedSelector(p, syntax.SelHighest)
	case lex.ClassLowest:
		p.stream.Next()
		return numberedSelector(p, syntax.SelLowest)
	case lex.ClassGt:
		p.stream.Next()
		return numberedSelector(p, syntax.SelGreater)
	case lex.ClassLt:
		p.stream.Next()
		return numberedSelector(p, syntax.SelLess)
	case lex.ClassNumber:
		p.stream.Next()
		v, _ := strconv.ParseFloat(peek.Lexeme, 64)
		return syntax.SetSelector{Category: syntax.SelNone, Num: v}, nil
	default:
		return syntax.SetSelector{}, lex.SyntaxError{Message: fmt.Sprintf("expected a selector after %q", opTok.Lexeme), Line: peek.Line, Col: peek.Col}
	}
}

func numberedSelector(p *parser, cat syntax.SelectorCategory) (syntax.SetSelector, error) {
	numTok := p.stream.Next()
	if numTok.Class != lex.ClassNumber {
		return syntax.SetSelector{}, lex.SyntaxError{Message: "expected number after selector", Line: numTok.Line, Col: numTok.Col}
	}
	v, _ := strconv.ParseFloat(numTok.Lexeme, 64)
	return syntax.SetSelector{Category: cat, Num: v}, nil
}
