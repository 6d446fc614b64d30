package eval

import (
	"testing"

	"github.com/dekarrin/diceroll/internal/parse"
	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/dekarrin/diceroll/internal/syntax"
	"github.com/dekarrin/diceroll/internal/tree"
	"github.com/stretchr/testify/assert"
)

func evalExpr(t *testing.T, expr string, faces ...int) (total float64, err error) {
	t.Helper()
	ast, perr := parse.Parse(expr, false)
	if !assert.NoError(t, perr) {
		return 0, perr
	}
	ctx := NewContext(0, 0)
	src := rng.NewScripted(faces...)
	ex, eerr := Evaluate(ast, ctx, src)
	if eerr != nil {
		return 0, eerr
	}
	return ex.Total(), nil
}

func Test_Evaluate_simpleDiceWithModifier(t *testing.T) {
	assert := assert.New(t)
	total, err := evalExpr(t, "1d20+5", 14)
	assert.NoError(err)
	assert.Equal(float64(19), total)
}

func Test_Evaluate_keepHighest3of4(t *testing.T) {
	assert := assert.New(t)
	// 4d6kh3 over faces 2,6,4,1 keeps the three highest: 6,4,2 = 12
	total, err := evalExpr(t, "4d6kh3", 2, 6, 4, 1)
	assert.NoError(err)
	assert.Equal(float64(12), total)
}

func Test_Evaluate_rerollOnceLessThan3(t *testing.T) {
	assert := assert.New(t)
	// 2d6ro<3: first roll 1,5 -> the 1 triggers a single reroll to 4
	total, err := evalExpr(t, "2d6ro<3", 1, 5, 4)
	assert.NoError(err)
	assert.Equal(float64(9), total)
}

func Test_Evaluate_minimumClampAppliesToEachDie(t *testing.T) {
	assert := assert.New(t)
	// 8d6mi2: any face below 2 is clamped up to 2
	total, err := evalExpr(t, "8d6mi2", 1, 2, 3, 1, 6, 1, 4, 5)
	assert.NoError(err)
	assert.Equal(float64(2+2+3+2+6+2+4+5), total)
}

func Test_Evaluate_explodeThenKeepHighest3(t *testing.T) {
	assert := assert.New(t)
	// 4d6e6kh3: faces 6,3,2,6 both 6s explode once each (to 4 and 5), then
	// the three highest of the resulting six dice are kept.
	total, err := evalExpr(t, "4d6e6kh3", 6, 3, 2, 6, 4, 5)
	assert.NoError(err)
	// values: 6,3,2,6,4,5 -> top 3 are 6,6,5 = 17
	assert.Equal(float64(17), total)
}

func Test_Evaluate_setOfMixedTermsKeepHighest(t *testing.T) {
	assert := assert.New(t)
	// (1d4+1, 3, 2d6kl1)kh1: members are (1d4+1)=2+1=3, literal 3, and
	// 2d6kl1 keeping the lower of 5,2 -> 2. Highest of {3,3,2} is 3.
	total, err := evalExpr(t, "(1d4+1, 3, 2d6kl1)kh1", 2, 5, 2)
	assert.NoError(err)
	assert.Equal(float64(3), total)
}

func Test_Evaluate_divideByZero_isError(t *testing.T) {
	assert := assert.New(t)
	_, err := evalExpr(t, "5/0")
	assert.ErrorIs(err, ErrDivideByZero)
}

func Test_Evaluate_modByZero_isError(t *testing.T) {
	assert := assert.New(t)
	_, err := evalExpr(t, "5%0")
	assert.ErrorIs(err, ErrDivideByZero)
}

func Test_Evaluate_negativeSelectorCount_isError(t *testing.T) {
	assert := assert.New(t)
	ast, err := parse.Parse("4d6kh-1", false)
	assert.Error(err, "kh-1 is not even parseable since - starts a new unary expression")
	_ = ast
}

func Test_Evaluate_comparisonOperators(t *testing.T) {
	testCases := []struct {
		expr  string
		faces []int
		want  float64
	}{
		{"5==5", nil, 1},
		{"5!=6", nil, 1},
		{"5>4", nil, 1},
		{"5<4", nil, 0},
		{"5>=5", nil, 1},
		{"5<=4", nil, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			assert := assert.New(t)
			total, err := evalExpr(t, tc.expr, tc.faces...)
			assert.NoError(err)
			assert.Equal(tc.want, total)
		})
	}
}

func Test_Evaluate_diceSizeZero_neverRolls(t *testing.T) {
	assert := assert.New(t)
	// a 0-sided die never draws from the RNG; an empty Scripted source must
	// not panic from being exhausted.
	total, err := evalExpr(t, "3d0")
	assert.NoError(err)
	assert.Equal(float64(0), total)
}

func Test_Evaluate_tooManyRolls_isError(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1000d6", false)
	if !assert.NoError(err) {
		return
	}
	ctx := NewContext(10, 0)
	faces := make([]int, 1000)
	for i := range faces {
		faces[i] = 3
	}
	src := rng.NewScripted(faces...)

	_, err = Evaluate(ast, ctx, src)
	assert.ErrorIs(err, ErrTooManyRolls)
}

func Test_Evaluate_zeroDiceCount_isValueError(t *testing.T) {
	assert := assert.New(t)
	_, err := evalExpr(t, "0d6")
	assert.ErrorIs(err, ErrBadDiceCount)
}

func Test_Evaluate_dicePopulatesOperationsInOrder(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("4d6e6kh3", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := Evaluate(ast, NewContext(0, 0), rng.NewScripted(6, 3, 2, 6, 4, 5))
	if !assert.NoError(err) {
		return
	}

	dice, ok := ex.Roll.(*tree.Dice)
	if !assert.True(ok) {
		return
	}
	if assert.Len(dice.Operations, 2) {
		assert.Equal(syntax.OpExplode, dice.Operations[0].Op)
		assert.Equal(syntax.OpKeep, dice.Operations[1].Op)
	}
}

func Test_Evaluate_setPopulatesOperations(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("(1,2,3)kh1", false)
	if !assert.NoError(err) {
		return
	}
	ex, err := Evaluate(ast, NewContext(0, 0), rng.NewScripted())
	if !assert.NoError(err) {
		return
	}

	set, ok := ex.Roll.(*tree.Set)
	if !assert.True(ok) {
		return
	}
	if assert.Len(set.Operations, 1) {
		assert.Equal(syntax.OpKeep, set.Operations[0].Op)
	}
}

func Test_Evaluate_tooComplex_isError(t *testing.T) {
	assert := assert.New(t)

	ast, err := parse.Parse("1+1+1+1+1+1+1+1+1+1", false)
	if !assert.NoError(err) {
		return
	}
	ctx := NewContext(0, 3)
	_, err = Evaluate(ast, ctx, rng.NewScripted())
	assert.ErrorIs(err, ErrTooComplex)
}
