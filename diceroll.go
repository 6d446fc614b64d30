// Package diceroll parses and evaluates tabletop dice expressions such as
// "4d6kh3" or "2d20kl1+5 // advantage save" and renders the result as a
// human-readable breakdown. It is the thin public facade over the
// internal parser/evaluator/tree pipeline: Parse and Roll do the one-shot
// work, Roller adds an AST cache for repeated use of the same expression
// text.
package diceroll

import (
	"errors"
	"math"

	"github.com/dekarrin/diceroll/internal/cache"
	"github.com/dekarrin/diceroll/internal/eval"
	"github.com/dekarrin/diceroll/internal/lex"
	"github.com/dekarrin/diceroll/internal/parse"
	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/dekarrin/diceroll/internal/syntax"
	"github.com/dekarrin/diceroll/internal/tree"
	"github.com/dekarrin/diceroll/render"
)

// AdvType selects whether a top-level 1d20 roll is made with advantage or
// disadvantage. It is applied by Roll as a rewrite of the parsed AST before
// handing it to the evaluator, not as evaluator-internal behavior: a 1d20
// becomes a 2d20kh1 (ADV) or 2d20kl1 (DIS) before a single die is rolled.
type AdvType int

const (
	NONE AdvType = 0
	ADV  AdvType = 1
	DIS  AdvType = -1
)

func (a AdvType) String() string {
	switch a {
	case ADV:
		return "ADV"
	case DIS:
		return "DIS"
	default:
		return "NONE"
	}
}

// CritResult classifies a natural-20 or natural-1 on a bare top-level d20.
type CritResult int

const (
	CritNone CritResult = iota
	Crit
	Fail
)

func (c CritResult) String() string {
	switch c {
	case Crit:
		return "CRIT"
	case Fail:
		return "FAIL"
	default:
		return "NONE"
	}
}

// DefaultMaxRolls and DefaultMaxASTOperations are the engine's default
// per-call ceilings, re-exported from the internal evaluator so callers (the
// HTTP server's GET /info, config validation) can reference them without an
// internal import.
const (
	DefaultMaxRolls         = eval.DefaultMaxRolls
	DefaultMaxASTOperations = eval.DefaultMaxASTOperations
)

// RollResult is the outcome of evaluating one dice expression.
type RollResult struct {
	AST     syntax.Node
	Expr    *tree.Expression
	Total   int
	Result  string
	Comment string
	Crit    CritResult
}

// Options configures a single Roll/Parse call. A zero Options rolls with no
// advantage, the engine's default ceilings, crypto/rand as the RNG source,
// and a SimpleStringifier for rendering.
type Options struct {
	Advantage     AdvType
	AllowComments bool
	MaxRolls      int
	MaxASTOps     int
	Source        rng.Source
	Stringifier   render.Stringifier
}

func (o Options) withDefaults() Options {
	if o.Source == nil {
		o.Source = rng.Crypto{}
	}
	if o.Stringifier == nil {
		o.Stringifier = render.SimpleStringifier{}
	}
	return o
}

// Parse parses expr into an AST without evaluating it. It is exported for
// callers that want to inspect or cache the AST themselves (Roller does
// this internally).
func Parse(expr string, allowComments bool) (syntax.Node, error) {
	ast, err := parse.Parse(expr, allowComments)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return ast, nil
}

// Roll parses and evaluates expr in one step, applying opts.Advantage as a
// top-level AST rewrite and rendering the result with opts.Stringifier.
func Roll(expr string, opts Options) (RollResult, error) {
	opts = opts.withDefaults()

	ast, err := Parse(expr, opts.AllowComments)
	if err != nil {
		return RollResult{}, err
	}
	return rollAST(ast, opts)
}

func rollAST(ast syntax.Node, opts Options) (RollResult, error) {
	ast = applyAdvantage(ast, opts.Advantage)

	ctx := eval.NewContext(opts.MaxRolls, opts.MaxASTOps)
	exprVal, err := eval.Evaluate(ast, ctx, opts.Source)
	if err != nil {
		return RollResult{}, wrapEvalError(err)
	}

	rendered := opts.Stringifier.VisitExpression(exprVal)

	return RollResult{
		AST:     ast,
		Expr:    exprVal,
		Total:   truncateToInt(exprVal.Total()),
		Result:  rendered,
		Comment: exprVal.Comment,
		Crit:    classifyCrit(ast, exprVal),
	}, nil
}

// applyAdvantage rewrites a bare top-level "NdM" Dice atom with num=1,
// size=20 into a 2d20kh1/2d20kl1 OperatedDice node. Any other shape
// (already-operated dice, arithmetic, sets, a different die size) passes
// through unchanged: advantage only ever touches a literal top-level d20.
func applyAdvantage(ast syntax.Node, adv AdvType) syntax.Node {
	if adv == NONE {
		return ast
	}
	expr := ast.AsExpression()
	roll := expr.Roll
	if roll.Type() != syntax.NDice {
		return ast
	}
	d := roll.AsDice()
	if d.Num != 1 || d.Size != 20 {
		return ast
	}

	sel := syntax.SelHighest
	if adv == DIS {
		sel = syntax.SelLowest
	}
	op := syntax.SetOperator{
		Op:        syntax.OpKeep,
		Selectors: []syntax.SetSelector{{Category: sel, Num: 1}},
	}
	rewritten := syntax.NewOperatedDice(syntax.NewDice(2, 20), []syntax.SetOperator{op})
	return syntax.NewExpression(rewritten, expr.Comment)
}

// classifyCrit implements the exact shape test: the top-level roll (after
// any advantage rewrite) must be a single d20, Dice or the OperatedDice an
// advantage rewrite produces, with exactly one currently-kept die reading
// 20 (Crit) or 1 (Fail).
func classifyCrit(ast syntax.Node, ex *tree.Expression) CritResult {
	expr := ast.AsExpression()
	roll := expr.Roll

	var diceNode syntax.Node
	switch roll.Type() {
	case syntax.NDice:
		diceNode = roll
	case syntax.NOperatedDice:
		diceNode = roll.AsOperatedDice().Dice
	default:
		return CritNone
	}
	if diceNode.AsDice().Size != 20 {
		return CritNone
	}

	dice, ok := ex.Roll.(*tree.Dice)
	if !ok {
		return CritNone
	}
	var kept []*tree.Die
	for _, d := range dice.Values {
		if d.Kept() {
			kept = append(kept, d)
		}
	}
	if len(kept) != 1 {
		return CritNone
	}
	switch kept[0].Number() {
	case 20:
		return Crit
	case 1:
		return Fail
	default:
		return CritNone
	}
}

func truncateToInt(f float64) int {
	return int(math.Trunc(f))
}

// Roller is a reusable façade over Parse+Roll that caches parsed ASTs by
// their literal expression text, avoiding a re-parse of expressions rolled
// repeatedly (e.g. a saved macro rolled many times in a session). The
// cache is bypassed entirely, both on read and write, for any call with
// AllowComments set, since a comment-bearing expression's parse result
// depends on exactly where the parser chose to split the comment and is
// not safe to key purely on the input string across calls with different
// options.
type Roller struct {
	cache *cache.LFU
}

// NewRoller returns a Roller with the engine's default cache capacity.
func NewRoller() *Roller {
	return &Roller{cache: cache.New(cache.DefaultCapacity)}
}

// NewRollerWithCapacity returns a Roller whose AST cache holds up to
// capacity entries instead of the default.
func NewRollerWithCapacity(capacity int) *Roller {
	return &Roller{cache: cache.New(capacity)}
}

// Roll evaluates expr, reusing a cached AST when one is available.
func (r *Roller) Roll(expr string, opts Options) (RollResult, error) {
	opts = opts.withDefaults()

	if opts.AllowComments {
		ast, err := Parse(expr, true)
		if err != nil {
			return RollResult{}, err
		}
		return rollAST(ast, opts)
	}

	if cached, ok := r.cache.Get(expr); ok {
		return rollAST(cached.(syntax.Node), opts)
	}

	ast, err := Parse(expr, false)
	if err != nil {
		return RollResult{}, err
	}
	r.cache.Put(expr, ast)
	return rollAST(ast, opts)
}

func wrapParseError(err error) error {
	var synErr lex.SyntaxError
	if errors.As(err, &synErr) {
		return newRollSyntaxError(synErr.Message, synErr.Line, synErr.Col)
	}
	return newRollSyntaxError(err.Error(), 0, 0)
}

func wrapEvalError(err error) error {
	switch {
	case errors.Is(err, eval.ErrTooManyRolls), errors.Is(err, eval.ErrTooComplex):
		return newTooManyRolls(err.Error(), unwrapSentinel(err))
	case errors.Is(err, eval.ErrDivideByZero):
		return newRollValueError(err.Error(), ErrDivideByZero)
	case errors.Is(err, eval.ErrNegativeCount):
		return newRollValueError(err.Error(), ErrNegativeCount)
	case errors.Is(err, eval.ErrBadDiceSize):
		return newRollValueError(err.Error(), ErrBadDiceSize)
	case errors.Is(err, eval.ErrBadDiceCount):
		return newRollValueError(err.Error(), ErrBadDiceCount)
	case errors.Is(err, eval.ErrBadSelector), errors.Is(err, eval.ErrBadOperator):
		return newRollValueError(err.Error(), ErrBadSelector)
	default:
		return newRollValueError(err.Error())
	}
}

func unwrapSentinel(err error) error {
	if errors.Is(err, eval.ErrTooManyRolls) {
		return ErrTooManyRolls
	}
	return ErrTooComplex
}
