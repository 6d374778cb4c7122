// Package plot turns expression trees into polylines.
//
// The sampler evaluates a function on a coarse grid spanning the view,
// bisects every valid pair of neighbouring samples until the segment is
// within tolerance, and breaks the line wherever the function is
// undefined or looks like it crosses a pole. The grid is cut into a
// fixed number of contiguous ranges that run as independent pool tasks;
// their polylines are stitched back together in range order, so the
// output does not depend on the number of workers.
package plot

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/you-not-fish/plotkit/internal/eval"
	"github.com/you-not-fish/plotkit/internal/syntax"
	"github.com/you-not-fish/plotkit/internal/workpool"
)

// Sampler runs sampling passes. It is safe for use by one driving
// goroutine at a time.
type Sampler struct {
	cfg  Config
	pool *workpool.Pool
}

// New returns a sampler that dispatches interval tasks to pool. A nil
// pool runs every task on the calling goroutine.
func New(cfg Config, pool *workpool.Pool) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{cfg: cfg, pool: pool}, nil
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config { return s.cfg }

// Result is the output of one sampling pass.
type Result struct {
	Polylines []Polyline
	Failed    []int // indices of ranges whose task failed
	Evals     int   // function evaluations performed
}

// NumVertices returns the total number of vertices over all polylines.
func (r *Result) NumVertices() int {
	return lo.Reduce(r.Polylines, func(n int, p Polyline, _ int) int { return n + len(p) }, 0)
}

// Flatten returns the polylines as a line list: every segment
// contributes its two end vertices, and no segment joins two polylines.
func (r *Result) Flatten() []Vertex {
	return lo.FlatMap(r.Polylines, func(p Polyline, _ int) []Vertex {
		out := make([]Vertex, 0, 2*len(p))
		for i := 1; i < len(p); i++ {
			out = append(out, p[i-1], p[i])
		}
		return out
	})
}

// ----------------------------------------------------------------------------
// Passes

// pass describes the grid of one sampling pass. Sample i lies at world
// x = x0 + i*step for 0 <= i <= n, and binds name to param(x).
type pass struct {
	fn    *syntax.FuncHeader
	base  eval.Env
	vp    Viewport
	color Color
	name  string
	param func(x float64) float64

	x0, step float64
	n        int
	dyMax    float64
	dxMin    float64
}

// extent returns the visible world extent of vp.
func extent(vp Viewport) Vec2 {
	return vp.ViewSize().Div(vp.Scale())
}

func (s *Sampler) newPass(h *syntax.FuncHeader, env eval.Env, vp Viewport, color Color) *pass {
	ext := extent(vp)
	return &pass{
		fn:    h,
		base:  env,
		vp:    vp,
		color: color,
		dyMax: ext.Y * s.cfg.DeltaMaxPercent,
		dxMin: ext.X * s.cfg.DeltaMinMultiplier,
	}
}

// Sample traces h over the visible domain of vp, binding x on every
// sample. env supplies every other variable h references.
func (s *Sampler) Sample(h *syntax.FuncHeader, env eval.Env, vp Viewport, color Color) (*Result, error) {
	p := s.newPass(h, env, vp, color)
	ext := extent(vp)
	xMin := vp.Translation().X - ext.X
	p.name = syntax.VarX
	p.param = func(x float64) float64 { return x }
	p.x0 = xMin
	p.n = 2 * s.cfg.CoarseSteps
	p.step = 2 * ext.X / float64(p.n)
	return s.run(p)
}

// WaveformOptions selects waveform mode.
type WaveformOptions struct {
	Var    string  // time variable; "" means t
	Now    float64 // current time
	Anchor float64 // world x at which Now is drawn
}

// SampleWaveform traces h as a function of time over a window that
// ends at opts.Now. The newest sample is drawn at world x = opts.Anchor
// and older samples extend left to the edge of the view, so a time t
// is drawn at x = Anchor + (t - Now).
func (s *Sampler) SampleWaveform(h *syntax.FuncHeader, env eval.Env, vp Viewport, color Color, opts WaveformOptions) (*Result, error) {
	p := s.newPass(h, env, vp, color)
	ext := extent(vp)
	xMin := vp.Translation().X - ext.X
	width := opts.Anchor - xMin
	if !(width > 0) {
		return &Result{}, nil
	}

	p.name = opts.Var
	if p.name == "" {
		p.name = syntax.VarT
	}
	p.param = func(x float64) float64 { return opts.Now + (x - opts.Anchor) }
	p.x0 = xMin
	p.n = max(1, int(math.Ceil(width/(ext.X/float64(s.cfg.CoarseSteps)))))
	p.step = width / float64(p.n)
	return s.run(p)
}

// run checks that every variable is bound, dispatches one task per
// grid range and stitches the results in range order.
func (s *Sampler) run(p *pass) (*Result, error) {
	probe := p.base.Clone()
	probe.Set(p.name, 0)
	if err := eval.Check(p.fn, probe); err != nil {
		return nil, fmt.Errorf("sample %s: %w", p.fn.Name, err)
	}

	ranges := partition(p.n, s.cfg.Intervals)
	futures := make([]*workpool.Future[*trace], len(ranges))
	for i, r := range ranges {
		env := p.base.Clone()
		futures[i] = workpool.Submit(s.pool, func() (*trace, error) {
			return s.trace(p, env, r)
		})
	}

	res := &Result{}
	var prev *trace
	for i, f := range futures {
		tr, err := f.Get()
		if err != nil {
			s.cfg.logger().Warn("sampling range failed",
				"func", p.fn.Name, "range", i, "from", ranges[i].lo, "to", ranges[i].hi, "err", err)
			res.Failed = append(res.Failed, i)
			prev = nil
			continue
		}
		res.Evals += tr.evals
		lines := tr.lines
		if prev != nil && len(lines) > 0 && len(res.Polylines) > 0 && joins(res.Polylines[len(res.Polylines)-1], lines[0]) {
			last := &res.Polylines[len(res.Polylines)-1]
			*last = append(*last, lines[0][1:]...)
			lines = lines[1:]
		}
		res.Polylines = append(res.Polylines, lines...)
		prev = tr
	}
	return res, nil
}

// joins reports whether b continues a: a ends on the shared boundary
// sample that b starts on.
func joins(a, b Polyline) bool {
	return len(a) > 0 && len(b) > 0 && a[len(a)-1].Pos == b[0].Pos
}

// span is an inclusive range of sample indices. Neighbouring spans
// share their boundary sample.
type span struct {
	lo, hi int
}

// partition cuts n grid steps into at most k contiguous spans.
func partition(n, k int) []span {
	k = min(k, n)
	spans := make([]span, 0, k)
	for i := 0; i < k; i++ {
		spans = append(spans, span{lo: i * n / k, hi: (i + 1) * n / k})
	}
	return spans
}

// ----------------------------------------------------------------------------
// Tracing

// trace is the working state of one task.
type trace struct {
	*pass
	cfg   *Config
	env   eval.Env
	lines []Polyline
	cur   Polyline
	evals int
}

func (s *Sampler) trace(p *pass, env eval.Env, r span) (*trace, error) {
	t := &trace{pass: p, cfg: &s.cfg, env: env}

	x := p.x0 + float64(r.lo)*p.step
	y, err := t.eval(x)
	if err != nil {
		return nil, err
	}
	prev := Vec2{x, y}
	prevValid := finite(y)

	for i := r.lo + 1; i <= r.hi; i++ {
		x := p.x0 + float64(i)*p.step
		y, err := t.eval(x)
		if err != nil {
			return nil, err
		}
		cur := Vec2{x, y}
		valid := finite(y)

		switch {
		case !prevValid && valid:
			t.close()
			t.cur = append(t.cur, t.vertex(cur))
		case prevValid && valid:
			if err := t.refine(prev, cur, 0); err != nil {
				return nil, err
			}
		case prevValid && !valid:
			t.close()
		}
		prev, prevValid = cur, valid
	}
	t.close()
	return t, nil
}

func (t *trace) eval(x float64) (float64, error) {
	t.evals++
	t.env[t.name] = t.param(x)
	return eval.Eval(t.fn, t.env)
}

// refine appends the segment p0-p1 to the current polyline, bisecting
// it while it exceeds the tolerance.
func (t *trace) refine(p0, p1 Vec2, depth int) error {
	if depth >= t.cfg.MaxDepth {
		t.add(p0, p1)
		return nil
	}

	dy := math.Abs(p1.Y - p0.Y)
	dx := math.Abs(p1.X - p0.X)
	if dy <= t.dyMax && dx <= t.dxMin {
		t.add(p0, p1)
		return nil
	}
	if t.pole(p0, p1) {
		t.close()
		return nil
	}

	xm := (p0.X + p1.X) / 2
	ym, err := t.eval(xm)
	if err != nil {
		return err
	}
	if !finite(ym) {
		t.close()
		return nil
	}
	mid := Vec2{xm, ym}
	if err := t.refine(p0, mid, depth+1); err != nil {
		return err
	}
	return t.refine(mid, p1, depth+1)
}

// pole reports whether the segment p0-p1 looks like it jumps across a
// singularity and must not be drawn.
func (t *trace) pole(p0, p1 Vec2) bool {
	cutoff := t.cfg.Cutoff
	dy := math.Abs(p1.Y - p0.Y)

	// sign flip at large magnitude
	if math.Abs(p0.Y) > cutoff && math.Abs(p1.Y) > cutoff && p0.Y*p1.Y < 0 {
		return true
	}
	// one side already blew up
	if dy > t.dyMax && (math.Abs(p0.Y) > cutoff || math.Abs(p1.Y) > cutoff) {
		return true
	}
	// near-vertical asymptote
	slope := dy / math.Abs(p1.X-p0.X)
	return dy > t.dyMax*t.cfg.PoleDeltaFactor && slope > t.dyMax*t.cfg.PoleSlopeFactor
}

// add appends p1, preceded by p0 when it starts a new polyline.
func (t *trace) add(p0, p1 Vec2) {
	if len(t.cur) == 0 {
		t.cur = append(t.cur, t.vertex(p0))
	}
	t.cur = append(t.cur, t.vertex(p1))
}

// close ends the current polyline. Polylines with fewer than two
// vertices draw nothing and are dropped.
func (t *trace) close() {
	if len(t.cur) > 1 {
		t.lines = append(t.lines, t.cur)
	}
	t.cur = nil
}

func (t *trace) vertex(p Vec2) Vertex {
	return Vertex{Pos: t.vp.WorldToScreen(p), Color: t.color}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
