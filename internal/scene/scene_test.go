package scene

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/you-not-fish/plotkit/internal/plot"
	"github.com/you-not-fish/plotkit/internal/syntax"
	"github.com/you-not-fish/plotkit/internal/view"
	"github.com/you-not-fish/plotkit/internal/workpool"
)

func newScene(t *testing.T) (*Scene, *view.View) {
	t.Helper()
	cfg := plot.DefaultConfig()
	cfg.CoarseSteps = 100
	pool := workpool.New(2)
	t.Cleanup(pool.Close)

	s, err := plot.New(cfg, pool)
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.New(view.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sc := New(s, v, DefaultOptions())
	v.OnChange(sc.MarkDirty)
	return sc, v
}

func mustAdd(t *testing.T, s *Scene, name, expr string) *Function {
	t.Helper()
	f, err := s.Add(name, expr, plot.Green)
	if err != nil {
		t.Fatalf("Add(%q, %q): %v", name, expr, err)
	}
	return f
}

func paramString(f *Function) string {
	var parts []string
	for _, p := range f.Parameters() {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, ",")
}

// ----------------------------------------------------------------------------

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		want   string // registered name
		params string
		flags  Flags
	}{
		{"", "f(x, t) = sin(x*sin(t))", "f", "", TimeDependent | NoParameters},
		{"line", "g(x, a, b) = a*x + b", "line", "a,b", 0},
		{"bare", "b*x + a", "bare", "b,a", 0},
		{"w", "sin(t) * a", "w", "a", TimeDependent | Waveform},
		{"", "w(t) = sin(t)", "w", "", TimeDependent | NoParameters | Waveform},
		{"", "v(x, t) = 2*t", "v", "", TimeDependent | NoParameters},
		{"", "h(x) = -x + 1", "h", "", NoParameters},
		{"k", "3", "k", "", NoParameters},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, _ := newScene(t)
			f := mustAdd(t, s, tt.name, tt.expr)
			if f.Name != tt.want {
				t.Errorf("Name = %q, want %q", f.Name, tt.want)
			}
			if got := paramString(f); got != tt.params {
				t.Errorf("Parameters = %s, want %s", got, tt.params)
			}
			if f.Flags() != tt.flags {
				t.Errorf("Flags = %s, want %s", f.Flags(), tt.flags)
			}
			if !f.Dirty() || f.Result() != nil {
				t.Error("new function should be dirty with no result")
			}
			for _, p := range f.Parameters() {
				if p.Value != 1 {
					t.Errorf("parameter %s = %v, want 1", p.Name, p.Value)
				}
			}
		})
	}
}

func TestAddBareExpressionHeader(t *testing.T) {
	s, _ := newScene(t)
	f := mustAdd(t, s, "p", "a*x^2 + x")
	if got := syntax.String(f.Header); got != "p(a, x) = ((a * (x ^ 2)) + x)" {
		t.Errorf("Header = %s", got)
	}
}

func TestAddErrors(t *testing.T) {
	s, _ := newScene(t)
	mustAdd(t, s, "f", "x")

	tests := []struct {
		name, expr, msg string
	}{
		{"", "x + 1", "needs a name"},
		{"f", "x^2", "already exists"},
		{"g", "f(x) = a*x", "a is not a parameter"},
		{"h", "(x", "unbalanced"},
	}
	for _, tt := range tests {
		_, err := s.Add(tt.name, tt.expr, plot.Red)
		if err == nil || !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("Add(%q, %q) = %v, want error containing %q", tt.name, tt.expr, err, tt.msg)
		}
	}

	_, err := s.Add("h", "x*#", plot.Red)
	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("parse failure error = %v, want *syntax.ParseError", err)
	}
	if got := strings.Join(s.Names(), ","); got != "f" {
		t.Errorf("Names = %s, want only f", got)
	}
}

func TestFunctionLookup(t *testing.T) {
	s, _ := newScene(t)
	mustAdd(t, s, "sine", "sin(x)")
	mustAdd(t, s, "cosine", "cos(x)")

	if _, err := s.Function("sine"); err != nil {
		t.Fatal(err)
	}

	_, err := s.Function("sin")
	var uerr *UnknownError
	if !errors.As(err, &uerr) {
		t.Fatalf("Function(sin) error = %v, want *UnknownError", err)
	}
	if len(uerr.Suggestions) == 0 || uerr.Suggestions[0] != "sine" {
		t.Errorf("Suggestions = %v, want sine first", uerr.Suggestions)
	}
	if !strings.Contains(err.Error(), "did you mean sine?") {
		t.Errorf("Error() = %s", err)
	}

	if !s.Remove("sine") || s.Remove("sine") {
		t.Error("Remove should succeed exactly once")
	}
	if got := strings.Join(s.Names(), ","); got != "cosine" {
		t.Errorf("Names after Remove = %s", got)
	}
}

func TestSetParameter(t *testing.T) {
	s, _ := newScene(t)
	f := mustAdd(t, s, "f", "f(x, a, k) = a*x + k")
	if _, err := s.Update(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in, want float64
	}{
		{2.5, 2.5},
		{20, 10},
		{-11, -10},
	}
	for _, tt := range tests {
		got, err := s.SetParameter("f", "a", tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("SetParameter(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if v, _ := f.Parameter("a"); v != tt.want {
			t.Errorf("stored a = %v, want %v", v, tt.want)
		}
	}
	if !f.Dirty() {
		t.Error("SetParameter did not mark the function dirty")
	}
	if v, _ := f.Parameter("k"); v != 1 {
		t.Errorf("k = %v after setting a, want 1", v)
	}

	var uerr *UnknownError
	_, err := s.SetParameter("f", "q", 1)
	if !errors.As(err, &uerr) || uerr.Kind != "parameter" || len(uerr.Suggestions) != 0 {
		t.Errorf("SetParameter(q) error = %#v", err)
	}
	_, err = s.SetParameter("f", "K", 1)
	if !errors.As(err, &uerr) || len(uerr.Suggestions) != 1 || uerr.Suggestions[0] != "k" {
		t.Errorf("SetParameter(K) error = %#v", err)
	}
	if !strings.Contains(err.Error(), `unknown parameter "K" (did you mean k?)`) {
		t.Errorf("Error() = %s", err)
	}
	if _, err := s.SetParameter("f", "x", 1); err == nil {
		t.Error("SetParameter accepted the plotted variable")
	}
	if _, err := s.SetParameter("g", "a", 1); err == nil {
		t.Error("SetParameter on unknown function succeeded")
	}
	if _, err := s.SetParameter("f", "a", math.NaN()); err == nil {
		t.Error("SetParameter accepted NaN")
	}
	if v, _ := f.Parameter("a"); v != -10 {
		t.Errorf("a = %v after rejected updates, want -10", v)
	}
}

func TestUpdateClearsDirty(t *testing.T) {
	s, _ := newScene(t)
	f := mustAdd(t, s, "f", "x^2")
	g := mustAdd(t, s, "g", "g(x, t) = sin(x + t)")

	n, err := s.Update()
	if err != nil || n != 2 {
		t.Fatalf("Update = %d, %v, want 2, nil", n, err)
	}
	if f.Dirty() || g.Dirty() {
		t.Error("functions still dirty after Update")
	}
	if f.Result() == nil || len(f.Result().Polylines) == 0 {
		t.Fatal("no polylines after Update")
	}
	if n, _ := s.Update(); n != 0 {
		t.Errorf("second Update sampled %d functions, want 0", n)
	}

	// only the time-dependent function goes stale when time moves
	s.SetTime(1.5)
	if f.Dirty() || !g.Dirty() {
		t.Errorf("after SetTime: f dirty %v, g dirty %v", f.Dirty(), g.Dirty())
	}
	before := g.Result()
	if n, _ := s.Update(); n != 1 {
		t.Errorf("Update after SetTime sampled %d, want 1", n)
	}
	if g.Result() == before {
		t.Error("g was not re-sampled")
	}
}

func TestViewChangeMarksDirty(t *testing.T) {
	s, v := newScene(t)
	f := mustAdd(t, s, "f", "x")
	if _, err := s.Update(); err != nil {
		t.Fatal(err)
	}

	v.Translate(plot.Vec2{X: 1})
	if !f.Dirty() {
		t.Error("view change did not mark the function dirty")
	}
}

func TestTimeSampling(t *testing.T) {
	s, _ := newScene(t)
	// a declared x keeps the function on the x axis even if the body
	// only uses t
	f := mustAdd(t, s, "f", "f(x, t) = t")
	if f.Flags() != TimeDependent|NoParameters {
		t.Fatalf("Flags = %s, want TimeDependent|NoParameters", f.Flags())
	}
	s.SetTime(2)
	if _, err := s.Update(); err != nil {
		t.Fatal(err)
	}

	// y = 2 is drawn 2 world units above the center row
	v, _ := view.New(view.DefaultConfig())
	want := v.WorldToScreen(plot.Vec2{X: 0, Y: 2}).Y
	lines := f.Result().Polylines
	if len(lines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(lines))
	}
	first, last := lines[0][0].Pos, lines[0][len(lines[0])-1].Pos
	// the sampled domain extends half a window past each edge
	if math.Abs(first.X+480) > 1e-6 || math.Abs(last.X-1440) > 1e-6 {
		t.Errorf("line spans screen x %g..%g, want -480..1440", first.X, last.X)
	}
	for _, p := range lines[0] {
		if math.Abs(p.Pos.Y-want) > 1e-9 {
			t.Fatalf("vertex %v, want screen y %g", p.Pos, want)
		}
	}
}

func TestWaveformAnchoredAtNow(t *testing.T) {
	s, v := newScene(t)
	f := mustAdd(t, s, "w", "sin(t)")
	s.SetTime(10)
	if _, err := s.Update(); err != nil {
		t.Fatal(err)
	}

	lines := f.Result().Polylines
	if len(lines) == 0 {
		t.Fatal("no polylines")
	}
	last := lines[len(lines)-1]
	got := last[len(last)-1].Pos
	want := v.WorldToScreen(plot.Vec2{X: 0, Y: math.Sin(10)})
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Errorf("newest vertex at %v, want %v", got, want)
	}
}

func TestPlayback(t *testing.T) {
	s, _ := newScene(t)
	if !s.Playing() {
		t.Fatal("scene should start playing")
	}
	s.Advance(0.5)
	if s.Time() != 0.5 {
		t.Errorf("Time = %v, want 0.5", s.Time())
	}
	if s.TogglePlay() {
		t.Error("TogglePlay should pause")
	}
	s.Advance(1)
	if s.Time() != 0.5 {
		t.Errorf("paused Advance moved time to %v", s.Time())
	}
}

func TestFlagsString(t *testing.T) {
	if got := (TimeDependent | Waveform).String(); got != "TimeDependent|Waveform" {
		t.Errorf("String = %s", got)
	}
	if got := Flags(0).String(); got != "0" {
		t.Errorf("String = %s", got)
	}
}
