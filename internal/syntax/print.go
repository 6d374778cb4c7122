package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// String returns the infix form of n. The output parses back to a tree
// that evaluates identically: binary operations are fully parenthesized
// and literals are written in plain decimal.
func String(n Node) string {
	var b strings.Builder
	writeExpr(&b, n)
	return b.String()
}

func writeExpr(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")

	case *BinaryOp:
		b.WriteByte('(')
		writeExpr(b, n.X)
		b.WriteString(" " + string(n.Op) + " ")
		writeExpr(b, n.Y)
		b.WriteByte(')')

	case *Variable:
		if n.Negated {
			b.WriteByte('-')
		}
		b.WriteString(n.Name)

	case *Constant:
		b.WriteString(constString(n))

	case *FuncCall:
		b.WriteString(n.Name + "(")
		writeExpr(b, n.Arg)
		b.WriteByte(')')

	case *Negation:
		b.WriteString("-(")
		writeExpr(b, n.X)
		b.WriteByte(')')

	case *FuncHeader:
		b.WriteString(n.Name + "(" + strings.Join(n.Params, ", ") + ") = ")
		writeExpr(b, n.Body)

	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

// constString formats c so that the tokenizer reads it back unchanged.
// Exponent notation is avoided because 'e' would be read as a constant.
func constString(c *Constant) string {
	if c.Name != "" {
		return c.Name
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// ----------------------------------------------------------------------------
// Tree dump

// Fprint writes an indented tree representation of the AST to w.
func Fprint(w io.Writer, n Node) {
	p := &printer{w: w}
	p.print(n)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *FuncHeader:
		p.printf("FuncHeader %s %s\n", n.Name, n.pos)
		p.indent++
		p.printf("Params: [%s]\n", strings.Join(n.Params, ", "))
		p.printf("Body:\n")
		p.indent++
		p.print(n.Body)
		p.indent--
		p.indent--

	case *BinaryOp:
		p.printf("BinaryOp %c %s\n", n.Op, n.pos)
		p.indent++
		p.print(n.X)
		p.print(n.Y)
		p.indent--

	case *Variable:
		if n.Negated {
			p.printf("Variable -%s %s\n", n.Name, n.pos)
		} else {
			p.printf("Variable %s %s\n", n.Name, n.pos)
		}

	case *Constant:
		p.printf("Constant %s %s\n", constString(n), n.pos)

	case *FuncCall:
		p.printf("FuncCall %s %s\n", n.Name, n.pos)
		p.indent++
		p.print(n.Arg)
		p.indent--

	case *Negation:
		p.printf("Negation %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// Summary returns a one-line description of the node kinds in n, e.g.
// "FuncHeader(BinaryOp(Variable, Constant))". Used in tests and the CLI.
func Summary(n Node) string {
	switch n := n.(type) {
	case *FuncHeader:
		return "FuncHeader(" + Summary(n.Body) + ")"
	case *BinaryOp:
		return "BinaryOp(" + strings.Join(lo.Map([]Node{n.X, n.Y}, func(c Node, _ int) string { return Summary(c) }), ", ") + ")"
	case *FuncCall:
		return "FuncCall(" + Summary(n.Arg) + ")"
	case *Negation:
		return "Negation(" + Summary(n.X) + ")"
	case *Variable:
		return "Variable"
	case *Constant:
		return "Constant"
	}
	return fmt.Sprintf("%T", n)
}
