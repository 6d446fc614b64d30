package parse

import (
	"testing"

	"github.com/dekarrin/diceroll/internal/syntax"
	"github.com/stretchr/testify/assert"
)

func Test_Parse_simpleDiceWithModifier(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("1d20+5", false)
	if !assert.NoError(err) {
		return
	}

	expr := node.AsExpression()
	assert.Nil(expr.Comment)

	bin := expr.Roll.AsBinOp()
	assert.Equal("+", bin.Op)
	assert.Equal(syntax.NDice, bin.Left.Type())
	assert.Equal(1, bin.Left.AsDice().Num)
	assert.Equal(20, bin.Left.AsDice().Size)
	assert.Equal(syntax.NLiteral, bin.Right.Type())
	assert.Equal(float64(5), bin.Right.AsLiteral().Value)
}

func Test_Parse_keepHighest(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("4d6kh3", false)
	if !assert.NoError(err) {
		return
	}

	od := node.AsExpression().Roll.AsOperatedDice()
	assert.Equal(4, od.Dice.AsDice().Num)
	assert.Equal(6, od.Dice.AsDice().Size)
	if assert.Len(od.Operators, 1) {
		op := od.Operators[0]
		assert.Equal(syntax.OpKeep, op.Op)
		if assert.Len(op.Selectors, 1) {
			assert.Equal(syntax.SelHighest, op.Selectors[0].Category)
			assert.Equal(float64(3), op.Selectors[0].Num)
		}
	}
}

func Test_Parse_rerollOnceLessThan(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("2d6ro<3", false)
	if !assert.NoError(err) {
		return
	}

	od := node.AsExpression().Roll.AsOperatedDice()
	if assert.Len(od.Operators, 1) {
		op := od.Operators[0]
		assert.Equal(syntax.OpRerollOnce, op.Op)
		if assert.Len(op.Selectors, 1) {
			assert.Equal(syntax.SelLess, op.Selectors[0].Category)
			assert.Equal(float64(3), op.Selectors[0].Num)
		}
	}
}

func Test_Parse_minimumClamp(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("8d6mi2", false)
	if !assert.NoError(err) {
		return
	}

	od := node.AsExpression().Roll.AsOperatedDice()
	if assert.Len(od.Operators, 1) {
		op := od.Operators[0]
		assert.Equal(syntax.OpMin, op.Op)
		assert.Equal(float64(2), op.Num)
		assert.Empty(op.Selectors)
	}
}

func Test_Parse_explodeThenKeepHighest(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("4d6e6kh3", false)
	if !assert.NoError(err) {
		return
	}

	od := node.AsExpression().Roll.AsOperatedDice()
	if assert.Len(od.Operators, 2) {
		assert.Equal(syntax.OpExplode, od.Operators[0].Op)
		assert.Equal(syntax.OpKeep, od.Operators[1].Op)
	}
}

func Test_Parse_setOfMixedTermsKeepHighest(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("(1d4+1, 3, 2d6kl1)kh1", false)
	if !assert.NoError(err) {
		return
	}

	os := node.AsExpression().Roll.AsOperatedSet()
	assert.Equal(syntax.NNumberSet, os.Set.Type())
	assert.Len(os.Set.AsNumberSet().Children, 3)
	if assert.Len(os.Operators, 1) {
		assert.Equal(syntax.OpKeep, os.Operators[0].Op)
	}
}

func Test_Parse_setOperatorOtherThanKeepOrDrop_isRejected(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("(1,2,3)e6", false)
	assert.Error(err)
}

func Test_Parse_singleParenthesizedTerm_isNotASet(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("(1d6)", false)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(syntax.NParenthetical, node.AsExpression().Roll.Type())
}

func Test_Parse_withoutComments_trailingTextIsSyntaxError(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("1d20 advantage save", false)
	assert.Error(err)
}

func Test_Parse_withComments_trailingTextIsSplitOff(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("1d20 advantage save", true)
	if !assert.NoError(err) {
		return
	}

	expr := node.AsExpression()
	if assert.NotNil(expr.Comment) {
		assert.Equal("advantage save", *expr.Comment)
	}
	assert.Equal(syntax.NDice, expr.Roll.Type())
}

func Test_Parse_diceCountMustBeLiteral(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("(1+1)d6", false)
	assert.Error(err)
}

func Test_Parse_annotation(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("5[fire]", false)
	if !assert.NoError(err) {
		return
	}

	an := node.AsExpression().Roll.AsAnnotatedNumber()
	assert.Equal([]string{"fire"}, an.Annotations)
	assert.Equal(float64(5), an.Child.AsLiteral().Value)
}

func Test_Parse_multipleSelectorsAccumulateOnOneOperator(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("6d6kh2l1", false)
	if !assert.NoError(err) {
		return
	}

	od := node.AsExpression().Roll.AsOperatedDice()
	if assert.Len(od.Operators, 1) {
		op := od.Operators[0]
		assert.Equal(syntax.OpKeep, op.Op)
		if assert.Len(op.Selectors, 2) {
			assert.Equal(syntax.SelHighest, op.Selectors[0].Category)
			assert.Equal(float64(2), op.Selectors[0].Num)
			assert.Equal(syntax.SelLowest, op.Selectors[1].Category)
			assert.Equal(float64(1), op.Selectors[1].Num)
		}
	}
}

func Test_Parse_zeroDiceCount_isNotASyntaxError(t *testing.T) {
	assert := assert.New(t)

	node, err := Parse("0d6", false)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(0, node.AsExpression().Roll.AsDice().Num)
}
