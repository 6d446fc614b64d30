// Package lex tokenizes dice expression source text. It follows the same
// longest-match rule-table technique used for the hand-rolled lexer this
// engine is descended from: a list of matchRules consulted in order, with
// ties broken by preferring the longest literal match.
package lex

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Class identifies the kind of a Token. lbp is its Pratt-parser left binding
// power; tokens that can never appear in led position carry lbp 0.
type Class struct {
	id    string
	human string
	lbp   int
}

func (c Class) String() string     { return c.id }
func (c Class) Human() string      { return c.human }
func (c Class) Lbp() int           { return c.lbp }
func (c Class) Equal(o Class) bool { return c.id == o.id }

var (
	ClassNumber        = Class{"NUMBER", "number", 0}
	ClassPlus          = Class{"PLUS", "'+'", 10}
	ClassMinus         = Class{"MINUS", "'-'", 10}
	ClassStar          = Class{"STAR", "'*'", 20}
	ClassSlash         = Class{"SLASH", "'/'", 20}
	ClassSlashSlash    = Class{"SLASHSLASH", "'//'", 20}
	ClassPercent       = Class{"PERCENT", "'%'", 20}
	ClassEq            = Class{"EQ", "'=='", 5}
	ClassNeq           = Class{"NEQ", "'!='", 5}
	ClassGe            = Class{"GE", "'>='", 5}
	ClassLe            = Class{"LE", "'<='", 5}
	ClassGt            = Class{"GT", "'>'", 5}
	ClassLt            = Class{"LT", "'<'", 5}
	ClassD             = Class{"D", "'d'", 100}
	ClassKeep          = Class{"KEEP", "'k'", 100}
	ClassDrop          = Class{"DROP", "'p'", 100}
	ClassReroll        = Class{"REROLL", "'rr'", 100}
	ClassRerollOnce    = Class{"REROLL_ONCE", "'ro'", 100}
	ClassRerollAdd     = Class{"REROLL_ADD", "'ra'", 100}
	ClassExplode       = Class{"EXPLODE", "'e'", 100}
	ClassMin           = Class{"MIN", "'mi'", 100}
	ClassMax           = Class{"MAX", "'ma'", 100}
	ClassHighest       = Class{"HIGHEST", "'h'", 0}
	ClassLowest        = Class{"LOWEST", "'l'", 0}
	ClassLParen        = Class{"LPAREN", "'('", 0}
	ClassRParen        = Class{"RPAREN", "')'", 0}
	ClassLBracket      = Class{"LBRACKET", "'['", 110}
	ClassComma         = Class{"COMMA", "','", 0}
	ClassAnnotation    = Class{"ANNOTATION", "annotation", 110}
	ClassWord          = Class{"WORD", "word", 0}
	ClassEndOfText     = Class{"EOT", "end of text", 0}
)

// Token is a single lexed unit of source text, with its 1-indexed line/column
// position for error reporting.
type Token struct {
	Lexeme string
	Class  Class
	Line   int
	Col    int
}

// Stream is a cursor over a slice of Tokens produced by Lex.
type Stream struct {
	Tokens []Token
	cur    int
}

func (s *Stream) Next() Token {
	t := s.Tokens[s.cur]
	if s.cur < len(s.Tokens)-1 {
		s.cur++
	}
	return t
}

func (s *Stream) Peek() Token {
	return s.Tokens[s.cur]
}

func (s Stream) Remaining() int {
	return len(s.Tokens) - s.cur
}

// SyntaxError is returned by Lex/Parse when the source text cannot be
// tokenized or parsed; it carries 1-indexed line/column position when known.
type SyntaxError struct {
	Message string
	Line    int
	Col     int
}

func (e SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("syntax error: %s", e.Message)
	}
	return fmt.Sprintf("syntax error: around line %d, char %d: %s", e.Line, e.Col, e.Message)
}

type matchRule struct {
	literal string
	class   Class
}

// keywordRules matches multi-letter operator keywords before single-letter
// ones so that e.g. "rr" is not lexed as two "r"s; longest-literal-wins
// disambiguates ties such as "ro" vs a bare "r" that doesn't exist at all.
var keywordRules = []matchRule{
	{"rr", ClassReroll},
	{"ro", ClassRerollOnce},
	{"ra", ClassRerollAdd},
	{"mi", ClassMin},
	{"ma", ClassMax},
	{"k", ClassKeep},
	{"p", ClassDrop},
	{"e", ClassExplode},
	{"h", ClassHighest},
	{"l", ClassLowest},
	{"d", ClassD},
}

var symbolRules = []matchRule{
	{"//", ClassSlashSlash},
	{"==", ClassEq},
	{"!=", ClassNeq},
	{">=", ClassGe},
	{"<=", ClassLe},
	{"+", ClassPlus},
	{"-", ClassMinus},
	{"*", ClassStar},
	{"/", ClassSlash},
	{"%", ClassPercent},
	{">", ClassGt},
	{"<", ClassLt},
	{"(", ClassLParen},
	{")", ClassRParen},
	{",", ClassComma},
}

var caseFold = cases.Fold()

// Lex tokenizes s into a Stream. Operator keywords (d, k, p, rr, ro, ra, e,
// mi, ma, h, l) are matched case-insensitively via a Unicode case fold, the
// same normalize-before-compare approach used for this engine's other
// case-insensitive keyword matching.
func Lex(s string) (Stream, error) {
	runes := []rune(s)
	var toks []Token

	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for k := 0; k < n; k++ {
			if i+k < len(runes) && runes[i+k] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(runes) {
		ch := runes[i]

		if unicode.IsSpace(ch) {
			advance(1)
			continue
		}

		if ch == '[' {
			// annotation: read raw text up to the matching ']'
			startLine, startCol := line, col
			advance(1)
			var sb strings.Builder
			for i < len(runes) && runes[i] != ']' {
				sb.WriteRune(runes[i])
				advance(1)
			}
			if i >= len(runes) {
				return Stream{}, SyntaxError{Message: "unterminated '[' annotation; missing a ']'", Line: startLine, Col: startCol}
			}
			advance(1) // consume ']'
			toks = append(toks, Token{Lexeme: sb.String(), Class: ClassAnnotation, Line: startLine, Col: startCol})
			continue
		}

		if unicode.IsDigit(ch) {
			startLine, startCol := line, col
			var sb strings.Builder
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				sb.WriteRune(runes[i])
				advance(1)
			}
			toks = append(toks, Token{Lexeme: sb.String(), Class: ClassNumber, Line: startLine, Col: startCol})
			continue
		}

		if unicode.IsLetter(ch) {
			startLine, startCol := line, col
			// try operator keywords via longest-match over the folded
			// remaining text, preferring multi-letter matches first since
			// keywordRules is already ordered longest-first.
			remaining := string(runes[i:])
			folded := caseFold.String(remaining)
			matched := false
			for _, rule := range keywordRules {
				if strings.HasPrefix(folded, rule.literal) {
					after := i + len([]rune(rule.literal))
					toks = append(toks, Token{Lexeme: string(runes[i:after]), Class: rule.class, Line: startLine, Col: startCol})
					advance(after - i)
					matched = true
					break
				}
			}
			if matched {
				continue
			}

			// no operator keyword starts here: this is the first letter of
			// free text (typically a trailing comment). Consume a run of
			// letters as a single word rather than failing the lex; it is
			// up to the parser to decide whether trailing text like this is
			// an error or a comment.
			var sb strings.Builder
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				sb.WriteRune(runes[i])
				advance(1)
			}
			toks = append(toks, Token{Lexeme: sb.String(), Class: ClassWord, Line: startLine, Col: startCol})
			continue
		}

		startLine, startCol := line, col
		matched := false
		for _, rule := range symbolRules {
			if strings.HasPrefix(string(runes[i:]), rule.literal) {
				toks = append(toks, Token{Lexeme: rule.literal, Class: rule.class, Line: startLine, Col: startCol})
				advance(len(rule.literal))
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		// same reasoning as the free-letter fallback above: an unrecognized
		// punctuation character is most likely inside a trailing comment,
		// so it becomes a harmless single-rune word rather than an error.
		toks = append(toks, Token{Lexeme: string(ch), Class: ClassWord, Line: startLine, Col: startCol})
		advance(1)
	}

	toks = append(toks, Token{Class: ClassEndOfText, Line: line, Col: col})
	return Stream{Tokens: toks}, nil
}
