package server

import (
	"net/http"
	"testing"

	"github.com/dekarrin/diceroll"
	"github.com/dekarrin/diceroll/internal/rng"
	"github.com/stretchr/testify/assert"
)

func Test_rollErrorResult_syntaxErrorIsBadRequest(t *testing.T) {
	assert := assert.New(t)

	_, err := diceroll.Roll("1d20 +", diceroll.Options{})
	if !assert.Error(err) {
		return
	}

	result := rollErrorResult(err)
	assert.Equal(http.StatusBadRequest, result.Status)
}

func Test_rollErrorResult_valueErrorIsUnprocessableEntity(t *testing.T) {
	assert := assert.New(t)

	_, err := diceroll.Roll("5/0", diceroll.Options{})
	if !assert.Error(err) {
		return
	}

	result := rollErrorResult(err)
	assert.Equal(http.StatusUnprocessableEntity, result.Status)
}

func Test_rollErrorResult_zeroDiceCountIsUnprocessableEntity(t *testing.T) {
	assert := assert.New(t)

	_, err := diceroll.Roll("0d6", diceroll.Options{})
	if !assert.Error(err) {
		return
	}

	result := rollErrorResult(err)
	assert.Equal(http.StatusUnprocessableEntity, result.Status)
}

func Test_rollErrorResult_tooManyRollsIsPayloadTooLarge(t *testing.T) {
	assert := assert.New(t)

	faces := make([]int, 50)
	for i := range faces {
		faces[i] = 3
	}
	_, err := diceroll.Roll("50d6", diceroll.Options{MaxRolls: 5, Source: rng.NewScripted(faces...)})
	if !assert.Error(err) {
		return
	}

	result := rollErrorResult(err)
	assert.Equal(http.StatusRequestEntityTooLarge, result.Status)
}

func Test_rollErrorResult_unrecognizedErrorIsInternalServerError(t *testing.T) {
	assert := assert.New(t)

	result := rollErrorResult(assert.AnError)
	assert.Equal(http.StatusInternalServerError, result.Status)
}
