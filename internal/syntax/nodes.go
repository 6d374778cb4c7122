package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// An expression tree is built from six node kinds. Every non-leaf node
// owns its children exclusively; trees are never shared or mutated once
// Parse returns, so one tree may be evaluated from many goroutines.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of the token that produced the node
	aNode()   // marker method to restrict implementations to this package
}

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// ----------------------------------------------------------------------------
// Nodes

// BinaryOp represents X Op Y for Op in + - * / ^.
type BinaryOp struct {
	node
	Op byte
	X  Node
	Y  Node
}

// Variable is a reference to a named value in the evaluation environment.
// Negated is set when a leading unary minus was folded into the reference.
type Variable struct {
	node
	Name    string
	Negated bool
}

// Constant is a numeric literal or a named constant such as pi.
type Constant struct {
	node
	Value float64
	Name  string // "pi", "e", or "" for literals
}

// FuncCall applies a builtin function to a single argument.
type FuncCall struct {
	node
	Name string
	Arg  Node
}

// Negation evaluates to -X.
type Negation struct {
	node
	X Node
}

// FuncHeader is the root of a user-defined function: Name(Params) = Body.
type FuncHeader struct {
	node
	Name   string
	Params []string // declaration order, no duplicates
	Body   Node
}

// ParamIndex returns the position of name in h.Params, or -1.
func (h *FuncHeader) ParamIndex(name string) int {
	for i, p := range h.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// ----------------------------------------------------------------------------
// Constructors

// NewBinaryOp returns x op y positioned at pos.
func NewBinaryOp(pos Pos, op byte, x, y Node) *BinaryOp {
	n := &BinaryOp{Op: op, X: x, Y: y}
	n.pos = pos
	return n
}

// NewVariable returns a reference to name.
func NewVariable(pos Pos, name string, negated bool) *Variable {
	n := &Variable{Name: name, Negated: negated}
	n.pos = pos
	return n
}

// NewConstant returns a literal constant.
func NewConstant(pos Pos, value float64) *Constant {
	n := &Constant{Value: value}
	n.pos = pos
	return n
}

// NewFuncCall returns name(arg).
func NewFuncCall(pos Pos, name string, arg Node) *FuncCall {
	n := &FuncCall{Name: name, Arg: arg}
	n.pos = pos
	return n
}

// NewNegation returns -x.
func NewNegation(pos Pos, x Node) *Negation {
	n := &Negation{X: x}
	n.pos = pos
	return n
}

// NewFuncHeader returns name(params) = body.
func NewFuncHeader(pos Pos, name string, params []string, body Node) *FuncHeader {
	n := &FuncHeader{Name: name, Params: params, Body: body}
	n.pos = pos
	return n
}
