package syntax

import (
	"strings"
	"unicode"
)

// Character sets used to classify input.
const (
	numberChars      = "0123456789"
	binaryChars      = "+-*/^"
	punctuationChars = ".,"
	delimiterChars   = "=<>!&|"
	bracketOpenChar  = '('
	bracketCloseChar = ')'
)

// Tokenizer splits expression text into single-character tokens.
//
// Multi-character numbers and names are not coalesced here; the parser
// does that. Tokenization never fails: characters outside every known
// set become Unknown tokens and are rejected by the parser.
type Tokenizer struct {
	text   string
	tokens []Token
}

// NewTokenizer creates a Tokenizer for text.
func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{text: text}
}

// SetNewText replaces the input and discards previously produced tokens.
func (tz *Tokenizer) SetNewText(text string) {
	tz.text = text
	tz.tokens = nil
}

// Tokenize returns the token sequence for the current text.
// Whitespace is stripped before classification and never produces a token.
func (tz *Tokenizer) Tokenize() []Token {
	text := stripSpace(tz.text)
	tz.tokens = make([]Token, 0, len(text))
	col := uint32(0)
	for _, ch := range text {
		col++
		tz.tokens = append(tz.tokens, Token{
			Text: string(ch),
			Kind: classify(ch),
			Pos:  NewPos(col),
		})
	}
	return tz.tokens
}

// Tokens returns the tokens produced by the last call to Tokenize.
func (tz *Tokenizer) Tokens() []Token {
	return tz.tokens
}

// Tokenize is shorthand for NewTokenizer(text).Tokenize().
func Tokenize(text string) []Token {
	return NewTokenizer(text).Tokenize()
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// classify returns the kind of a single character.
func classify(ch rune) TokenKind {
	switch {
	case isLetter(ch):
		return Identifier
	case strings.ContainsRune(numberChars, ch):
		return Number
	case strings.ContainsRune(binaryChars, ch):
		return binaryKind(ch)
	case strings.ContainsRune(punctuationChars, ch):
		return Punctuation
	case strings.ContainsRune(delimiterChars, ch):
		return Delimiter
	case ch == bracketOpenChar:
		return BracketOpen
	case ch == bracketCloseChar:
		return BracketClose
	}
	return Unknown
}

func binaryKind(ch rune) TokenKind {
	switch ch {
	case '+', '-':
		return BinaryAdditive
	case '*', '/':
		return BinaryMultiplicative
	}
	return BinaryPower
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}
