package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classSeq(s Stream) []Class {
	var out []Class
	for _, tok := range s.Tokens {
		out = append(out, tok.Class)
	}
	return out
}

func Test_Lex_classSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Class
	}{
		{name: "bare number", input: "20", expect: []Class{
			ClassNumber, ClassEndOfText,
		}},
		{name: "simple dice", input: "1d20", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassEndOfText,
		}},
		{name: "dice with modifier", input: "4d6+5", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassPlus, ClassNumber, ClassEndOfText,
		}},
		{name: "keep highest", input: "4d6kh3", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassKeep, ClassHighest, ClassNumber, ClassEndOfText,
		}},
		{name: "keep lowest", input: "2d20kl1", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassKeep, ClassLowest, ClassNumber, ClassEndOfText,
		}},
		{name: "reroll once less than", input: "2d6ro<3", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassRerollOnce, ClassLt, ClassNumber, ClassEndOfText,
		}},
		{name: "explode then keep highest", input: "4d6e6kh3", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassExplode, ClassNumber, ClassKeep, ClassHighest, ClassNumber, ClassEndOfText,
		}},
		{name: "minimum applied to each die", input: "8d6mi2", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassMin, ClassNumber, ClassEndOfText,
		}},
		{name: "set with parens and keep", input: "(1d4+1,3,2d6kl1)kh1", expect: []Class{
			ClassLParen,
			ClassNumber, ClassD, ClassNumber, ClassPlus, ClassNumber, ClassComma,
			ClassNumber, ClassComma,
			ClassNumber, ClassD, ClassNumber, ClassKeep, ClassLowest, ClassNumber,
			ClassRParen, ClassKeep, ClassHighest, ClassNumber,
			ClassEndOfText,
		}},
		{name: "keyword matching is case-insensitive", input: "1D20KH1", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassKeep, ClassHighest, ClassNumber, ClassEndOfText,
		}},
		{name: "annotation", input: "1d20[fire]", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassAnnotation, ClassEndOfText,
		}},
		{name: "trailing comment becomes words", input: "1d20 advantage save", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassWord, ClassWord, ClassEndOfText,
		}},
		{name: "whitespace is insignificant", input: "  1 d 20  ", expect: []Class{
			ClassNumber, ClassD, ClassNumber, ClassEndOfText,
		}},
		{name: "comparison operators", input: "1>=2 3<=4 5==6 7!=8", expect: []Class{
			ClassNumber, ClassGe, ClassNumber,
			ClassNumber, ClassLe, ClassNumber,
			ClassNumber, ClassEq, ClassNumber,
			ClassNumber, ClassNeq, ClassNumber,
			ClassEndOfText,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			stream, err := Lex(tc.input)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, classSeq(stream))
		})
	}
}

func Test_Lex_unterminatedAnnotation_isSyntaxError(t *testing.T) {
	assert := assert.New(t)

	_, err := Lex("1d20[fire")
	assert.Error(err)

	var synErr SyntaxError
	assert.ErrorAs(err, &synErr)
}

func Test_Stream_NextAndPeek(t *testing.T) {
	assert := assert.New(t)

	s, err := Lex("1d20")
	assert.NoError(err)

	assert.Equal(ClassNumber, s.Peek().Class)
	assert.Equal(ClassNumber, s.Next().Class)
	assert.Equal(ClassD, s.Next().Class)
	assert.Equal(ClassNumber, s.Next().Class)
	assert.Equal(ClassEndOfText, s.Next().Class)
	// Next() at the end keeps returning the EOT token rather than panicking.
	assert.Equal(ClassEndOfText, s.Next().Class)
}
