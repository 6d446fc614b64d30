package diceroll

import (
	"errors"
	"testing"

	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/stretchr/testify/assert"
)

func Test_Roll_simpleDiceWithModifier(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20+5", Options{Source: rng.NewScripted(14)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(19, result.Total)
	assert.Equal(CritNone, result.Crit)
}

func Test_Roll_advantageRewritesBareD20(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20", Options{Advantage: ADV, Source: rng.NewScripted(5, 17)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(17, result.Total)
}

func Test_Roll_disadvantageRewritesBareD20(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20", Options{Advantage: DIS, Source: rng.NewScripted(5, 17)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(5, result.Total)
}

func Test_Roll_advantageDoesNotTouchNonBareD20(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("2d20", Options{Advantage: ADV, Source: rng.NewScripted(5, 17)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(22, result.Total)
}

func Test_Roll_natural20_isCrit(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20", Options{Source: rng.NewScripted(20)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(Crit, result.Crit)
}

func Test_Roll_natural1_isFail(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20", Options{Source: rng.NewScripted(1)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(Fail, result.Crit)
}

func Test_Roll_d20WithModifier_isNotCrit(t *testing.T) {
	assert := assert.New(t)

	result, err := Roll("1d20+5", Options{Source: rng.NewScripted(20)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(CritNone, result.Crit)
}

func Test_Roll_syntaxError_wrapsAsRollSyntaxError(t *testing.T) {
	assert := assert.New(t)

	_, err := Roll("1d20 +", Options{})
	assert.Error(err)

	var synErr RollSyntaxError
	assert.ErrorAs(err, &synErr)
	assert.ErrorIs(err, ErrBadSyntax)
}

func Test_Roll_divideByZero_wrapsAsRollValueError(t *testing.T) {
	assert := assert.New(t)

	_, err := Roll("5/0", Options{})
	assert.Error(err)

	var valErr RollValueError
	assert.ErrorAs(err, &valErr)
	assert.ErrorIs(err, ErrDivideByZero)
}

func Test_Roll_zeroDiceCount_wrapsAsRollValueError(t *testing.T) {
	assert := assert.New(t)

	_, err := Roll("0d6", Options{})
	assert.Error(err)

	var valErr RollValueError
	assert.ErrorAs(err, &valErr)
	assert.ErrorIs(err, ErrBadDiceCount)

	// must NOT be classified as a syntax error
	var synErr RollSyntaxError
	assert.False(errors.As(err, &synErr))
}

func Test_Roll_tooManyRolls_wrapsAsTooManyRolls(t *testing.T) {
	assert := assert.New(t)

	faces := make([]int, 100)
	for i := range faces {
		faces[i] = 3
	}
	_, err := Roll("100d6", Options{MaxRolls: 5, Source: rng.NewScripted(faces...)})
	assert.Error(err)

	var tooMany TooManyRolls
	assert.ErrorAs(err, &tooMany)
	assert.ErrorIs(err, ErrTooManyRolls)
}

func Test_Roller_cachesParsedAST(t *testing.T) {
	assert := assert.New(t)

	r := NewRoller()
	_, err := r.Roll("1d20+5", Options{Source: rng.NewScripted(10)})
	assert.NoError(err)

	result, err := r.Roll("1d20+5", Options{Source: rng.NewScripted(10)})
	assert.NoError(err)
	assert.Equal(15, result.Total)
}

func Test_Roller_bypassesCacheWhenCommentsAllowed(t *testing.T) {
	assert := assert.New(t)

	r := NewRoller()
	result, err := r.Roll("1d20 roll for init", Options{AllowComments: true, Source: rng.NewScripted(7)})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("roll for init", result.Comment)
	assert.Equal(7, result.Total)
}

func Test_NewRollerWithCapacity_usesGivenCapacity(t *testing.T) {
	assert := assert.New(t)

	r := NewRollerWithCapacity(2)
	assert.NotNil(r)
}

func Test_AdvType_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("ADV", ADV.String())
	assert.Equal("DIS", DIS.String())
	assert.Equal("NONE", NONE.String())
}

func Test_RollError_IsMatchesWrappedSentinel(t *testing.T) {
	assert := assert.New(t)

	_, err := Roll("5%0", Options{})
	assert.True(errors.Is(err, ErrDivideByZero))
}
