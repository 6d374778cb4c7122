package syntax

import (
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ParseError reports a malformed expression.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Parser builds an AST from a token sequence using an operator stack and
// an output stack (shunting-yard with precedence climbing).
//
// A Parser is used for one expression and then discarded.
type Parser struct {
	tokens []Token
	i      int // index of the current token

	ops []Token // operator stack
	out []Node  // output stack

	// prev is the kind of the last significant token. Number, Identifier
	// and BracketClose mean an operand was just completed.
	prev TokenKind

	// negate is set when a unary minus directly precedes a numeric
	// literal or variable, and is folded into that operand.
	negate bool

	header *FuncHeader
}

// NewParser creates a Parser over tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, prev: Unknown}
}

// ParseString tokenizes and parses text.
func ParseString(text string) (Node, error) {
	return NewParser(Tokenize(text)).Parse()
}

// ParseFunction parses text and requires a function header.
func ParseFunction(text string) (*FuncHeader, error) {
	n, err := ParseString(text)
	if err != nil {
		return nil, err
	}
	h, ok := n.(*FuncHeader)
	if !ok {
		return nil, &ParseError{Pos: n.Pos(), Msg: "expected function definition name(params) = body"}
	}
	return h, nil
}

// ----------------------------------------------------------------------------
// Error handling

func (p *Parser) errorf(pos Pos, format string, args ...interface{}) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// endPos returns the position just past the last token.
func (p *Parser) endPos() Pos {
	if len(p.tokens) == 0 {
		return NewPos(1)
	}
	return NewPos(p.tokens[len(p.tokens)-1].Pos.Col() + 1)
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses the token sequence and returns the root node. If the
// input starts with a header name(params) = ..., the root is a
// *FuncHeader whose Body is the parsed expression.
func (p *Parser) Parse() (Node, error) {
	if len(p.tokens) == 0 {
		return nil, p.errorf(NewPos(1), "empty expression")
	}

	if err := p.funcHeader(); err != nil {
		return nil, err
	}

	for ; p.i < len(p.tokens); p.i++ {
		if err := p.token(p.tokens[p.i]); err != nil {
			return nil, err
		}
	}

	if p.expectOperand() {
		return nil, p.errorf(p.endPos(), "unexpected end of expression")
	}

	for len(p.ops) > 0 {
		op := p.popOp()
		if op.Kind == BracketOpen {
			return nil, p.errorf(op.Pos, "unbalanced '('")
		}
		if err := p.reduce(op); err != nil {
			return nil, err
		}
	}

	switch len(p.out) {
	case 0:
		return nil, p.errorf(p.endPos(), "stack empty")
	case 1:
	default:
		return nil, p.errorf(p.out[1].Pos(), "malformed expression: missing operator")
	}

	root := p.out[0]
	if p.header != nil {
		p.header.Body = root
		return p.header, nil
	}
	return root, nil
}

// funcHeader recognizes a leading name(a, b, ...) = and removes it from
// the token stream.
func (p *Parser) funcHeader() error {
	if len(p.tokens) < 2 || p.tokens[0].Kind != Identifier || p.tokens[1].Kind != BracketOpen {
		return nil
	}

	name := p.tokens[0]
	params := orderedmap.New[string, Pos]()

	i := 2
	if i < len(p.tokens) && p.tokens[i].Kind != BracketClose {
		for {
			if i >= len(p.tokens) || p.tokens[i].Kind != Identifier {
				return p.errorf(p.posAt(i), "expected parameter name in function header")
			}
			tok := p.tokens[i]
			if _, ok := LookupConstant(tok.Text); ok {
				return p.errorf(tok.Pos, "parameter %s shadows a constant", tok.Text)
			}
			if _, present := params.Set(tok.Text, tok.Pos); present {
				return p.errorf(tok.Pos, "duplicate parameter %s", tok.Text)
			}
			i++
			if i < len(p.tokens) && p.tokens[i].Kind == Punctuation && p.tokens[i].Text == "," {
				i++
				continue
			}
			break
		}
	}

	if i >= len(p.tokens) || p.tokens[i].Kind != BracketClose {
		return p.errorf(p.posAt(i), "expected ')' in function header")
	}
	i++
	if i >= len(p.tokens) || p.tokens[i].Kind != Delimiter || p.tokens[i].Text != "=" {
		return p.errorf(p.posAt(i), "expected '=' after function header")
	}
	i++
	if i >= len(p.tokens) {
		return p.errorf(p.posAt(i), "missing function body")
	}

	names := make([]string, 0, params.Len())
	for pair := params.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	p.header = NewFuncHeader(name.Pos, name.Text, names, nil)
	p.tokens = p.tokens[i:]
	return nil
}

func (p *Parser) posAt(i int) Pos {
	if i < len(p.tokens) {
		return p.tokens[i].Pos
	}
	return p.endPos()
}

// ----------------------------------------------------------------------------
// Tokens

// token consumes the token at p.i. Handlers that coalesce several
// tokens leave p.i on the last one they used.
func (p *Parser) token(tok Token) error {
	switch tok.Kind {
	case Number:
		return p.number()

	case Identifier:
		return p.identifier()

	case BinaryAdditive, BinaryMultiplicative, BinaryPower:
		if p.expectOperand() {
			return p.unary(tok)
		}
		return p.binary(tok)

	case BracketOpen:
		if !p.expectOperand() {
			return p.errorf(tok.Pos, "unexpected '(' after operand")
		}
		p.pushOp(tok)
		p.prev = BracketOpen

	case BracketClose:
		return p.closeBracket(tok)

	case Punctuation:
		if tok.Text == "." && p.i+1 < len(p.tokens) && p.tokens[p.i+1].Kind == Number {
			return p.number()
		}
		return p.errorf(tok.Pos, "unexpected %q", tok.Text)

	case Delimiter:
		return p.errorf(tok.Pos, "unexpected delimiter %q", tok.Text)

	default:
		return p.errorf(tok.Pos, "unexpected character %q", tok.Text)
	}
	return nil
}

// expectOperand reports whether the next token starts an operand, i.e.
// the previous token was an operator, an open bracket, or nothing.
func (p *Parser) expectOperand() bool {
	switch p.prev {
	case Number, Identifier, BracketClose:
		return false
	}
	return true
}

// number coalesces a run of Number and Punctuation tokens into one literal.
func (p *Parser) number() error {
	start := p.tokens[p.i]
	text := start.Text
	for p.i+1 < len(p.tokens) {
		next := p.tokens[p.i+1]
		if next.Kind != Number && next.Kind != Punctuation {
			break
		}
		text += next.Text
		p.i++
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return p.errorf(start.Pos, "malformed number %q", text)
	}
	if p.negate {
		v = -v
	}
	return p.operand(NewConstant(start.Pos, v), Number)
}

// identifier resolves the identifier at p.i as a builtin function, a
// named constant, or a variable, in that order.
func (p *Parser) identifier() error {
	tok := p.tokens[p.i]

	if name := p.matchRun(p.i, functionNames); name != "" {
		if !p.expectOperand() {
			return p.errorf(tok.Pos, "missing operator before %s", name)
		}
		p.pushOp(Token{Text: name, Kind: Function, Pos: tok.Pos})
		p.i += len(name) - 1
		p.prev = Function
		return nil
	}

	if name := p.matchRun(p.i, constantNames); name != "" {
		v, _ := LookupConstant(name)
		c := NewConstant(tok.Pos, v)
		c.Name = name
		p.i += len(name) - 1
		return p.operand(c, Identifier)
	}

	return p.operand(NewVariable(tok.Pos, tok.Text, p.negate), Identifier)
}

// matchRun compares consecutive single-letter Identifier tokens starting
// at i against each name and returns the first full match.
func (p *Parser) matchRun(i int, names []string) string {
next:
	for _, name := range names {
		if i+len(name) > len(p.tokens) {
			continue
		}
		for j := 0; j < len(name); j++ {
			tok := p.tokens[i+j]
			if tok.Kind != Identifier || tok.Text[0] != name[j] {
				continue next
			}
		}
		return name
	}
	return ""
}

// operand pushes a completed operand onto the output stack.
func (p *Parser) operand(n Node, kind TokenKind) error {
	if !p.expectOperand() {
		return p.errorf(n.Pos(), "missing operator before operand")
	}
	p.negate = false
	p.out = append(p.out, n)
	p.prev = kind
	return nil
}

// unary handles + or - in operand position. A leading minus is folded
// into a directly following literal or variable; otherwise it becomes a
// Negation of the operand that follows, so -e^x is -(e^x).
func (p *Parser) unary(tok Token) error {
	if tok.Kind != BinaryAdditive {
		return p.errorf(tok.Pos, "unexpected operator %q", tok.Text)
	}
	if p.i+1 >= len(p.tokens) {
		return p.errorf(tok.Pos, "missing operand after unary %q", tok.Text)
	}
	p.prev = UnaryOperator
	if tok.Text == "+" {
		return nil
	}

	next := p.tokens[p.i+1]
	switch {
	case next.Kind == Number:
		p.negate = true
	case next.Kind == Identifier && p.matchRun(p.i+1, functionNames) == "" && p.matchRun(p.i+1, constantNames) == "":
		p.negate = true
	default:
		p.pushOp(Token{Text: "-", Kind: UnaryOperator, Pos: tok.Pos})
	}
	return nil
}

// binary pushes a binary operator after reducing every stacked operator
// that binds at least as tightly (strictly tighter for ^).
func (p *Parser) binary(tok Token) error {
	prec := tok.Kind.Precedence()
	for len(p.ops) > 0 {
		top := p.ops[len(p.ops)-1]
		if top.Kind == BracketOpen {
			break
		}
		tprec := top.Kind.Precedence()
		if tprec < prec || tprec == prec && tok.Kind.IsRightAssoc() {
			break
		}
		if err := p.reduce(p.popOp()); err != nil {
			return err
		}
	}
	p.pushOp(tok)
	p.prev = tok.Kind
	return nil
}

// closeBracket reduces down to the matching '(' and then applies a
// function waiting directly beneath it.
func (p *Parser) closeBracket(tok Token) error {
	if p.prev == BracketOpen {
		return p.errorf(tok.Pos, "empty brackets")
	}
	if p.expectOperand() {
		return p.errorf(tok.Pos, "missing operand before ')'")
	}
	for {
		if len(p.ops) == 0 {
			return p.errorf(tok.Pos, "unbalanced ')'")
		}
		op := p.popOp()
		if op.Kind == BracketOpen {
			break
		}
		if err := p.reduce(op); err != nil {
			return err
		}
	}
	if len(p.ops) > 0 && p.ops[len(p.ops)-1].Kind == Function {
		if err := p.reduce(p.popOp()); err != nil {
			return err
		}
	}
	p.prev = BracketClose
	return nil
}

// ----------------------------------------------------------------------------
// Stacks

func (p *Parser) pushOp(tok Token) {
	p.ops = append(p.ops, tok)
}

func (p *Parser) popOp() Token {
	tok := p.ops[len(p.ops)-1]
	p.ops = p.ops[:len(p.ops)-1]
	return tok
}

func (p *Parser) popOut(op Token) (Node, error) {
	if len(p.out) == 0 {
		return nil, p.errorf(op.Pos, "stack empty: missing operand for %q", op.Text)
	}
	n := p.out[len(p.out)-1]
	p.out = p.out[:len(p.out)-1]
	return n, nil
}

// reduce pops the operands of op from the output stack and pushes the
// node it builds.
func (p *Parser) reduce(op Token) error {
	switch {
	case op.Kind.IsBinary():
		y, err := p.popOut(op)
		if err != nil {
			return err
		}
		x, err := p.popOut(op)
		if err != nil {
			return err
		}
		p.out = append(p.out, NewBinaryOp(op.Pos, op.Text[0], x, y))

	case op.Kind == Function:
		arg, err := p.popOut(op)
		if err != nil {
			return err
		}
		p.out = append(p.out, NewFuncCall(op.Pos, op.Text, arg))

	case op.Kind == UnaryOperator:
		x, err := p.popOut(op)
		if err != nil {
			return err
		}
		p.out = append(p.out, NewNegation(op.Pos, x))

	default:
		return p.errorf(op.Pos, "unknown operator type %s in reduction", op.Kind)
	}
	return nil
}
