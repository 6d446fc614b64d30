package render

import (
	"testing"

	"github.com/dekarrin/diceroll/internal/eval"
	"github.com/dekarrin/diceroll/internal/parse"
	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/stretchr/testify/assert"
)

func Test_SimpleStringifier_simpleDiceWithModifier(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1d20+5", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(14))
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Equal("1d20 (14) + 5 = `19`", out)
}

func Test_SimpleStringifier_droppedDiceMarked(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("4d6kh3", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(2, 6, 4, 1))
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Contains(out, "1 (dropped)")
	assert.Equal("4d6kh3 (2, 6, 4, 1 (dropped)) = `12`", out)
}

func Test_SimpleStringifier_operatorSuffixAppendedToDiceHead(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("2d6ro<3", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(1, 5, 4))
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Contains(out, "2d6ro<3 (")
}

func Test_SimpleStringifier_operatorSuffixAppendedToSetHead(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("(1,2,3)kh1", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted())
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Contains(out, ")kh1")
}

func Test_SimpleStringifier_multipleOperatorsAppendInOrder(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("4d6e6kh3", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(6, 3, 2, 6, 4, 5))
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Contains(out, "d6e6kh3 (")
}

func Test_MarkdownStringifier_maxFaceIsBolded(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1d6", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(6))
	if !assert.NoError(err) {
		return
	}

	out := MarkdownStringifier{}.VisitExpression(ex)
	assert.Contains(out, "**6**")
}

func Test_MarkdownStringifier_droppedDiceStruckThrough(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("2d6kh1", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(3, 5))
	if !assert.NoError(err) {
		return
	}

	out := MarkdownStringifier{}.VisitExpression(ex)
	assert.Contains(out, "~~3~~")
}

func Test_MarkdownStringifier_explodedFaceMarkedBoldBang(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1d6e6", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(6, 4))
	if !assert.NoError(err) {
		return
	}

	out := MarkdownStringifier{}.VisitExpression(ex)
	assert.Contains(out, "**6!**")
}

func Test_SimpleStringifier_literalWithAnnotation(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("5[fire]", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted())
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Equal("5[fire] = `5`", out)
}

func Test_SimpleStringifier_commentIsAppended(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1d20 advantage save", true)
	if !assert.NoError(err) {
		return
	}
	ex, err := eval.Evaluate(ast, eval.NewContext(0, 0), rng.NewScripted(11))
	if !assert.NoError(err) {
		return
	}

	out := SimpleStringifier{}.VisitExpression(ex)
	assert.Equal("1d20 (11) = `11` // advantage save", out)
}
