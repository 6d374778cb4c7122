// Package scene keeps the set of plotted functions, their parameters
// and the animation clock, and re-samples functions whose polylines
// went stale.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/you-not-fish/plotkit/internal/plot"
	"github.com/you-not-fish/plotkit/internal/syntax"
)

// Options configures a Scene.
type Options struct {
	ParamMin     float64 // lower bound for SetParameter
	ParamMax     float64 // upper bound for SetParameter
	ParamDefault float64 // initial value of every parameter

	// WaveformAnchor places "now" for waveform functions, as a fraction
	// of the visible half-width right of the view center.
	WaveformAnchor float64

	Logger *slog.Logger
}

// DefaultOptions returns parameters in [-10, 10] starting at 1.
func DefaultOptions() Options {
	return Options{
		ParamMin:     -10,
		ParamMax:     10,
		ParamDefault: 1,
	}
}

// UnknownError reports a lookup of a name that does not exist.
type UnknownError struct {
	Kind        string // "function" or "parameter"
	Name        string
	Suggestions []string
}

func (e *UnknownError) Error() string {
	msg := fmt.Sprintf("scene: unknown %s %q", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestions[0])
	}
	return msg
}

// Scene owns the plotted functions. It is driven from a single
// goroutine.
type Scene struct {
	opts    Options
	log     *slog.Logger
	sampler *plot.Sampler
	vp      plot.Viewport

	funcs   *orderedmap.OrderedMap[string, *Function]
	time    float64
	playing bool
}

// New returns an empty scene that samples with s over vp.
func New(s *plot.Sampler, vp plot.Viewport, opts Options) *Scene {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scene{
		opts:    opts,
		log:     log,
		sampler: s,
		vp:      vp,
		funcs:   orderedmap.New[string, *Function](),
		playing: true,
	}
}

// Add parses expr and registers it under name. expr is either a full
// function definition such as "f(x, a) = a*x" or a bare expression, in
// which case every variable it references becomes a parameter in order
// of appearance. An empty name takes the name of the definition.
func (s *Scene) Add(name, expr string, color plot.Color) (*Function, error) {
	root, err := syntax.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("scene: add %s: %w", name, err)
	}

	h, ok := root.(*syntax.FuncHeader)
	if !ok {
		if name == "" {
			return nil, errors.New("scene: add: a bare expression needs a name")
		}
		h = syntax.NewFuncHeader(root.Pos(), name, syntax.FreeVars(root), root)
	}
	if name == "" {
		name = h.Name
	}
	if _, exists := s.funcs.Get(name); exists {
		return nil, fmt.Errorf("scene: add %s: function already exists", name)
	}
	for _, v := range syntax.FreeVars(h.Body) {
		if !syntax.IsReserved(v) && h.ParamIndex(v) < 0 {
			return nil, fmt.Errorf("scene: add %s: %s is not a parameter of %s", name, v, h.Name)
		}
	}

	f := &Function{
		Name:   name,
		Expr:   expr,
		Header: h,
		Color:  color,
		params: orderedmap.New[string, float64](),
		dirty:  true,
	}
	for _, p := range h.Params {
		if !syntax.IsReserved(p) {
			f.params.Set(p, s.clamp(s.opts.ParamDefault))
		}
	}

	usesX := syntax.References(h.Body, syntax.VarX)
	usesT := syntax.References(h.Body, syntax.VarT)
	if usesT {
		f.flags |= TimeDependent
		if !usesX && h.ParamIndex(syntax.VarX) < 0 {
			f.flags |= Waveform
		}
	}
	if f.params.Len() == 0 {
		f.flags |= NoParameters
	}

	s.funcs.Set(name, f)
	s.log.Debug("function added", "name", name, "expr", syntax.String(h), "flags", f.flags)
	return f, nil
}

// Remove deletes the named function. It reports whether it existed.
func (s *Scene) Remove(name string) bool {
	_, ok := s.funcs.Delete(name)
	return ok
}

// Function returns the named function. Unknown names yield an
// *UnknownError with the closest matches.
func (s *Scene) Function(name string) (*Function, error) {
	if f, ok := s.funcs.Get(name); ok {
		return f, nil
	}
	return nil, &UnknownError{Kind: "function", Name: name, Suggestions: suggest(name, s.Names())}
}

// Functions returns the functions in insertion order.
func (s *Scene) Functions() []*Function {
	out := make([]*Function, 0, s.funcs.Len())
	for p := s.funcs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// Names returns the function names in insertion order.
func (s *Scene) Names() []string {
	out := make([]string, 0, s.funcs.Len())
	for p := s.funcs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// SetParameter sets a parameter of the named function, clamped to the
// configured range, and returns the value actually stored.
func (s *Scene) SetParameter(fn, param string, v float64) (float64, error) {
	f, err := s.Function(fn)
	if err != nil {
		return 0, err
	}
	if _, ok := f.params.Get(param); !ok {
		return 0, &UnknownError{Kind: "parameter", Name: param, Suggestions: suggest(param, f.paramNames())}
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("scene: %s.%s: value is NaN", fn, param)
	}
	v = s.clamp(v)
	f.params.Set(param, v)
	f.dirty = true
	return v, nil
}

func (s *Scene) clamp(v float64) float64 {
	return math.Min(math.Max(v, s.opts.ParamMin), s.opts.ParamMax)
}

// ----------------------------------------------------------------------------
// Time

// Time returns the animation clock.
func (s *Scene) Time() float64 { return s.time }

// Playing reports whether Advance moves the clock.
func (s *Scene) Playing() bool { return s.playing }

// SetTime sets the clock and marks time-dependent functions dirty.
func (s *Scene) SetTime(t float64) {
	if t == s.time {
		return
	}
	s.time = t
	for p := s.funcs.Oldest(); p != nil; p = p.Next() {
		if p.Value.flags&TimeDependent != 0 {
			p.Value.dirty = true
		}
	}
}

// Advance moves the clock by dt while playing.
func (s *Scene) Advance(dt float64) {
	if s.playing {
		s.SetTime(s.time + dt)
	}
}

// TogglePlay pauses or resumes the clock and returns the new state.
func (s *Scene) TogglePlay() bool {
	s.playing = !s.playing
	return s.playing
}

// MarkDirty invalidates every function. Register it as a view change
// listener.
func (s *Scene) MarkDirty() {
	for p := s.funcs.Oldest(); p != nil; p = p.Next() {
		p.Value.dirty = true
	}
}

// ----------------------------------------------------------------------------
// Sampling

// Update re-samples every dirty function and returns how many were
// sampled. A function that fails stays dirty and keeps its previous
// polylines; the failures are joined into the returned error.
func (s *Scene) Update() (int, error) {
	var (
		n    int
		errs []error
	)
	for p := s.funcs.Oldest(); p != nil; p = p.Next() {
		f := p.Value
		if !f.dirty {
			continue
		}
		res, err := s.sample(f)
		if err != nil {
			s.log.Error("sampling failed", "func", f.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		if len(res.Failed) > 0 {
			s.log.Warn("partial sampling pass", "func", f.Name, "failed_ranges", len(res.Failed))
		}
		f.result = res
		f.dirty = false
		n++
	}
	return n, errors.Join(errs...)
}

func (s *Scene) sample(f *Function) (*plot.Result, error) {
	env := f.env(s.time)
	if f.flags&Waveform != 0 {
		ext := s.vp.ViewSize().Div(s.vp.Scale())
		anchor := s.vp.Translation().X + s.opts.WaveformAnchor*ext.X
		return s.sampler.SampleWaveform(f.Header, env, s.vp, f.Color, plot.WaveformOptions{
			Var:    syntax.VarT,
			Now:    s.time,
			Anchor: anchor,
		})
	}
	return s.sampler.Sample(f.Header, env, s.vp, f.Color)
}

// suggest returns the candidates closest to name, best first.
func suggest(name string, candidates []string) []string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		// try the other direction so that "fn" suggests "f"
		for _, c := range candidates {
			if fuzzy.MatchFold(c, name) {
				ranks = append(ranks, fuzzy.Rank{Source: c, Target: c, Distance: len(name) - len(c)})
			}
		}
	}
	sort.Sort(ranks)
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}
