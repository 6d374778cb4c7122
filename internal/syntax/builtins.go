package syntax

import (
	"math"

	"github.com/samber/lo"
)

// Reserved variable names. The sampler binds x (or t in waveform mode)
// on every sample; every other free variable is a user parameter.
const (
	VarX = "x"
	VarT = "t"
)

// functionNames lists the builtin unary functions in match order.
var functionNames = []string{"sin", "cos", "tan", "sqrt", "exp", "log", "abs"}

// NamedConstant is a constant substituted at parse time.
type NamedConstant struct {
	Name  string
	Value float64
}

var constants = []NamedConstant{
	{"pi", math.Pi},
	{"e", math.E},
}

var constantNames = lo.Map(constants, func(c NamedConstant, _ int) string { return c.Name })

// Functions returns the names of the builtin functions.
func Functions() []string {
	return append([]string(nil), functionNames...)
}

// IsFunction reports whether name is a builtin function.
func IsFunction(name string) bool {
	return lo.Contains(functionNames, name)
}

// Constants returns the named constants.
func Constants() []NamedConstant {
	return append([]NamedConstant(nil), constants...)
}

// LookupConstant returns the value of a named constant.
func LookupConstant(name string) (float64, bool) {
	c, ok := lo.Find(constants, func(c NamedConstant) bool { return c.Name == name })
	return c.Value, ok
}

// IsReserved reports whether name is bound by the sampler rather than
// declared as a user parameter.
func IsReserved(name string) bool {
	return name == VarX || name == VarT
}
