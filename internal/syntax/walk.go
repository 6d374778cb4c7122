package syntax

import "github.com/samber/lo"

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order, left operand first.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *FuncHeader:
		Walk(n.Body, v)

	case *BinaryOp:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *FuncCall:
		Walk(n.Arg, v)

	case *Negation:
		Walk(n.X, v)

	case *Variable, *Constant:
		// leaves
	}
}

// FreeVars returns the names of all variables referenced by n, in order
// of first appearance.
func FreeVars(n Node) []string {
	var names []string
	Walk(n, func(node Node) bool {
		if v, ok := node.(*Variable); ok {
			names = append(names, v.Name)
		}
		return true
	})
	return lo.Uniq(names)
}

// References reports whether n refers to the variable name.
func References(n Node, name string) bool {
	return lo.Contains(FreeVars(n), name)
}
