// Package syntax implements tokenization and parsing of plot expressions.
package syntax

import "fmt"

// TokenKind classifies a single-character token.
type TokenKind uint8

const (
	Unknown TokenKind = iota // anything not in a character set below

	Identifier // a-z, A-Z
	Number     // 0-9

	// Binary operators
	BinaryAdditive       // + -
	BinaryMultiplicative // * /
	BinaryPower          // ^

	// Assigned by the parser, never by the tokenizer
	UnaryOperator
	Function
	FunctionHeader

	Punctuation  // . ,
	Delimiter    // = < > ! & |
	BracketOpen  // (
	BracketClose // )

	kindCount
)

var kindNames = [...]string{
	Unknown:              "Unknown",
	Identifier:           "Identifier",
	Number:               "Number",
	BinaryAdditive:       "BinaryAdditive",
	BinaryMultiplicative: "BinaryMultiplicative",
	BinaryPower:          "BinaryPower",
	UnaryOperator:        "UnaryOperator",
	Function:             "Function",
	FunctionHeader:       "FunctionHeader",
	Punctuation:          "Punctuation",
	Delimiter:            "Delimiter",
	BracketOpen:          "BracketOpen",
	BracketClose:         "BracketClose",
}

// String returns the name of the kind.
func (k TokenKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Precedence returns the binding strength of an operator kind.
// Returns 0 for non-operators.
// Precedence levels (higher = binds tighter):
//
//	1: + -
//	2: * /
//	3: ^ and prefix negation
//	4: function application
func (k TokenKind) Precedence() int {
	switch k {
	case BinaryAdditive:
		return 1
	case BinaryMultiplicative:
		return 2
	case BinaryPower, UnaryOperator:
		return 3
	case Function:
		return 4
	}
	return 0
}

// IsBinary reports whether k is one of the binary operator kinds.
func (k TokenKind) IsBinary() bool {
	return k >= BinaryAdditive && k <= BinaryPower
}

// IsOperator reports whether k is a binary, unary, or function operator.
func (k TokenKind) IsOperator() bool {
	return k >= BinaryAdditive && k <= FunctionHeader
}

// IsRightAssoc reports whether operators of kind k group right to left.
func (k TokenKind) IsRightAssoc() bool {
	return k == BinaryPower
}

// IsPrefix reports whether k is applied to the operand that follows it.
// Prefix operators never reduce the stack when pushed.
func (k TokenKind) IsPrefix() bool {
	return k == UnaryOperator || k == Function
}

// Token is one unit of tokenized input.
type Token struct {
	Text string
	Kind TokenKind
	Pos  Pos
}

// String returns a short description like `Identifier "x"`.
func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
