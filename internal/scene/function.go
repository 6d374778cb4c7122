package scene

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/you-not-fish/plotkit/internal/eval"
	"github.com/you-not-fish/plotkit/internal/plot"
	"github.com/you-not-fish/plotkit/internal/syntax"
)

// Flags describe how a function depends on the scene.
type Flags uint8

const (
	TimeDependent Flags = 1 << iota // references t
	NoParameters                    // declares nothing besides x and t
	Waveform                        // time only, without x in header or body; plotted over time
)

var flagNames = []string{"TimeDependent", "NoParameters", "Waveform"}

func (f Flags) String() string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// Parameter is a user-adjustable variable of a function.
type Parameter struct {
	Name  string
	Value float64
}

// Function is a plotted expression and its cached polylines.
type Function struct {
	Name   string
	Expr   string
	Header *syntax.FuncHeader
	Color  plot.Color

	flags  Flags
	params *orderedmap.OrderedMap[string, float64]
	dirty  bool
	result *plot.Result
}

func (f *Function) Flags() Flags { return f.flags }

// Dirty reports whether the cached polylines are stale.
func (f *Function) Dirty() bool { return f.dirty }

// Result returns the polylines of the last successful sampling pass, or
// nil if there has been none.
func (f *Function) Result() *plot.Result { return f.result }

// Parameters returns the parameters in declaration order.
func (f *Function) Parameters() []Parameter {
	out := make([]Parameter, 0, f.params.Len())
	for p := f.params.Oldest(); p != nil; p = p.Next() {
		out = append(out, Parameter{Name: p.Key, Value: p.Value})
	}
	return out
}

// Parameter returns the current value of the named parameter.
func (f *Function) Parameter(name string) (float64, bool) {
	return f.params.Get(name)
}

func (f *Function) paramNames() []string {
	names := make([]string, 0, f.params.Len())
	for p := f.params.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// env returns the bindings for a sampling pass at time t.
func (f *Function) env(t float64) eval.Env {
	env := make(eval.Env, f.params.Len()+1)
	for p := f.params.Oldest(); p != nil; p = p.Next() {
		env[p.Key] = p.Value
	}
	if f.flags&Waveform == 0 {
		env[syntax.VarT] = t
	}
	return env
}
