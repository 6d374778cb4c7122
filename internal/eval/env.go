package eval

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Env binds variable names to values. The sampler clones one Env per
// task, so an Env is never shared between goroutines.
type Env map[string]float64

// NewEnv returns an empty environment.
func NewEnv() Env {
	return make(Env)
}

// Set binds name to v.
func (e Env) Set(name string, v float64) {
	e[name] = v
}

// Lookup returns the value bound to name.
func (e Env) Lookup(name string) (float64, bool) {
	v, ok := e[name]
	return v, ok
}

// Clone returns an independent copy of e. Cloning a nil Env yields an
// empty, writable one.
func (e Env) Clone() Env {
	if e == nil {
		return NewEnv()
	}
	return maps.Clone(e)
}

// Names returns the bound names in sorted order.
func (e Env) Names() []string {
	names := maps.Keys(e)
	slices.Sort(names)
	return names
}

func (e Env) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range e.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", name, strconv.FormatFloat(e[name], 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}

// ParseEnv parses a comma separated list of name=value bindings such as
// "x=2,t=0.5". An empty string yields an empty Env.
func ParseEnv(s string) (Env, error) {
	env := NewEnv()
	if strings.TrimSpace(s) == "" {
		return env, nil
	}
	for _, field := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(field, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("binding %q: want name=value", field)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", field, err)
		}
		env.Set(name, v)
	}
	return env, nil
}
