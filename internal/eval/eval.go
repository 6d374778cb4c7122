// Package eval evaluates expression trees produced by package syntax.
//
// Evaluation is pure: the tree is only read, and the environment is
// only read, so a single tree may be evaluated concurrently as long as
// each goroutine owns its Env.
package eval

import (
	"fmt"
	"math"

	"github.com/you-not-fish/plotkit/internal/syntax"
)

// EvaluationError reports a tree that cannot be evaluated in the given
// environment, such as a variable with no binding.
type EvaluationError struct {
	Pos syntax.Pos
	Msg string
}

func (e *EvaluationError) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func errorf(pos syntax.Pos, format string, args ...interface{}) error {
	return &EvaluationError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// builtins implements the function table of package syntax. Domain
// errors evaluate to zero instead of NaN.
var builtins = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"sqrt": func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return math.Sqrt(v)
	},
	"exp": math.Exp,
	"log": func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return math.Log(v)
	},
	"abs": math.Abs,
}

// Eval computes the value of n under env.
func Eval(n syntax.Node, env Env) (float64, error) {
	switch n := n.(type) {
	case *syntax.FuncHeader:
		return Eval(n.Body, env)

	case *syntax.BinaryOp:
		x, err := Eval(n.X, env)
		if err != nil {
			return 0, err
		}
		y, err := Eval(n.Y, env)
		if err != nil {
			return 0, err
		}
		return binary(n, x, y)

	case *syntax.Variable:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return 0, errorf(n.Pos(), "undefined variable %s", n.Name)
		}
		if n.Negated {
			return -v, nil
		}
		return v, nil

	case *syntax.Constant:
		return n.Value, nil

	case *syntax.FuncCall:
		fn, ok := builtins[n.Name]
		if !ok {
			return 0, errorf(n.Pos(), "unknown function %s", n.Name)
		}
		arg, err := Eval(n.Arg, env)
		if err != nil {
			return 0, err
		}
		return fn(arg), nil

	case *syntax.Negation:
		x, err := Eval(n.X, env)
		if err != nil {
			return 0, err
		}
		return -x, nil

	case nil:
		return 0, errorf(syntax.Pos{}, "nil expression")
	}
	return 0, errorf(n.Pos(), "unexpected node %T", n)
}

func binary(n *syntax.BinaryOp, x, y float64) (float64, error) {
	switch n.Op {
	case '+':
		return x + y, nil
	case '-':
		return x - y, nil
	case '*':
		return x * y, nil
	case '/':
		if y == 0 {
			return 0, nil
		}
		return x / y, nil
	case '^':
		return math.Pow(x, y), nil
	}
	return 0, errorf(n.Pos(), "unknown operator %q", n.Op)
}

// EvaluateWithParameters binds args to the parameters of h in
// declaration order and evaluates its body.
func EvaluateWithParameters(h *syntax.FuncHeader, args ...float64) (float64, error) {
	if len(args) != len(h.Params) {
		return 0, errorf(h.Pos(), "%s takes %d arguments, got %d", h.Name, len(h.Params), len(args))
	}
	env := make(Env, len(args))
	for i, name := range h.Params {
		env[name] = args[i]
	}
	return Eval(h.Body, env)
}

// Check reports the first variable referenced by n that env does not
// bind. A nil result means Eval cannot fail with an undefined variable.
func Check(n syntax.Node, env Env) error {
	var err error
	syntax.Walk(n, func(node syntax.Node) bool {
		if err != nil {
			return false
		}
		if v, ok := node.(*syntax.Variable); ok {
			if _, bound := env.Lookup(v.Name); !bound {
				err = errorf(v.Pos(), "undefined variable %s", v.Name)
			}
		}
		return true
	})
	return err
}
