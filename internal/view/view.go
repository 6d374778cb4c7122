// Package view implements the pan and zoom transform between world and
// screen coordinates.
package view

import (
	"errors"
	"fmt"
	"math"

	"github.com/you-not-fish/plotkit/internal/plot"
)

// ErrInvalidScale is returned for zero, negative, tiny or NaN scale
// factors.
var ErrInvalidScale = errors.New("view: scale factor must be greater than zero")

const (
	minFactor = 1e-25
	minScale  = 0.05
)

// Config describes the output surface.
type Config struct {
	Resolution    plot.Vec2 // render resolution in pixels
	WindowSize    plot.Vec2 // screen size in pixels
	PixelsPerUnit float64   // pixels per world unit at scale 1

	ScrollFactor float64 // world units per wheel step at scale 1
	ZoomFactor   float64 // relative scale change per wheel step
}

// DefaultConfig returns a 1920x1080 surface shown in a 960x540 window.
func DefaultConfig() Config {
	return Config{
		Resolution:    plot.Vec2{X: 1920, Y: 1080},
		WindowSize:    plot.Vec2{X: 960, Y: 540},
		PixelsPerUnit: 100,
		ScrollFactor:  0.1,
		ZoomFactor:    0.02,
	}
}

// View is a translation and per-axis scale. The translation is the world
// point drawn at the center of the window. Screen y grows downwards.
//
// A View is not safe for concurrent mutation; reads may run
// concurrently.
type View struct {
	cfg       Config
	trans     plot.Vec2
	scale     plot.Vec2
	listeners []func()
}

var _ plot.Viewport = (*View)(nil)

// New returns an unscaled view centered on the origin.
func New(cfg Config) (*View, error) {
	if !(cfg.PixelsPerUnit > 0) || !(cfg.Resolution.X > 0) || !(cfg.Resolution.Y > 0) ||
		!(cfg.WindowSize.X > 0) || !(cfg.WindowSize.Y > 0) {
		return nil, fmt.Errorf("view: invalid config %+v", cfg)
	}
	return &View{cfg: cfg, scale: plot.Vec2{X: 1, Y: 1}}, nil
}

// OnChange registers fn to run after every change of the transform.
func (v *View) OnChange(fn func()) {
	v.listeners = append(v.listeners, fn)
}

func (v *View) changed() {
	for _, fn := range v.listeners {
		fn()
	}
}

// ViewSize returns the world extent covered by the resolution at scale 1.
func (v *View) ViewSize() plot.Vec2 {
	return plot.Vec2{
		X: v.cfg.Resolution.X / v.cfg.PixelsPerUnit,
		Y: v.cfg.Resolution.Y / v.cfg.PixelsPerUnit,
	}
}

// Extent returns the world extent visible at the current scale.
func (v *View) Extent() plot.Vec2 {
	return v.ViewSize().Div(v.Scale())
}

func (v *View) Translation() plot.Vec2 { return v.trans }

// Scale returns the current scale, or (1, 1) if it has degenerated.
func (v *View) Scale() plot.Vec2 {
	if v.scale.X < minFactor || v.scale.Y < minFactor {
		return plot.Vec2{X: 1, Y: 1}
	}
	return v.scale
}

// WorldToScreen maps a world point to window pixels.
func (v *View) WorldToScreen(p plot.Vec2) plot.Vec2 {
	ext, win := v.Extent(), v.cfg.WindowSize
	return plot.Vec2{
		X: (p.X-v.trans.X)/ext.X*win.X + win.X/2,
		Y: -(p.Y-v.trans.Y)/ext.Y*win.Y + win.Y/2,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v *View) ScreenToWorld(p plot.Vec2) plot.Vec2 {
	ext, win := v.Extent(), v.cfg.WindowSize
	return plot.Vec2{
		X: (p.X-win.X/2)/win.X*ext.X + v.trans.X,
		Y: -(p.Y-win.Y/2)/win.Y*ext.Y + v.trans.Y,
	}
}

// Translate moves the view by offset world units.
func (v *View) Translate(offset plot.Vec2) {
	v.trans = v.trans.Add(offset)
	v.changed()
}

// SetTranslation centers the view on p.
func (v *View) SetTranslation(p plot.Vec2) {
	v.trans = p
	v.changed()
}

// ScaleBy multiplies the scale by factor.
func (v *View) ScaleBy(factor plot.Vec2) error {
	if err := checkFactor(factor); err != nil {
		return err
	}
	v.scale = v.scale.Mul(factor)
	v.changed()
	return nil
}

// SetScale sets the scale, clamping each axis to at least 0.05.
func (v *View) SetScale(s plot.Vec2) {
	v.scale = plot.Vec2{X: math.Max(s.X, minScale), Y: math.Max(s.Y, minScale)}
	v.changed()
}

// ScaleAround scales by factor while keeping the world point under the
// screen point p in place.
func (v *View) ScaleAround(factor, p plot.Vec2) error {
	if err := checkFactor(factor); err != nil {
		return err
	}
	before := v.ScreenToWorld(p)
	v.scale = v.scale.Mul(factor)
	after := v.ScreenToWorld(p)
	v.trans = v.trans.Add(before.Sub(after))
	v.changed()
	return nil
}

// Scroll pans by wheel steps. Steps are converted to world units at the
// current scale, so a step always moves the same number of pixels.
func (v *View) Scroll(steps plot.Vec2) {
	s := v.Scale()
	v.Translate(plot.Vec2{
		X: -steps.X * v.cfg.ScrollFactor / s.X,
		Y: steps.Y * v.cfg.ScrollFactor / s.Y,
	})
}

// Zoom scales both axes by wheel steps around the screen point p.
func (v *View) Zoom(steps float64, p plot.Vec2) error {
	f := 1 + steps*v.cfg.ZoomFactor
	return v.ScaleAround(plot.Vec2{X: f, Y: f}, p)
}

func checkFactor(f plot.Vec2) error {
	if f.X < minFactor || f.Y < minFactor || math.IsNaN(f.X) || math.IsNaN(f.Y) {
		return fmt.Errorf("%w: got %v", ErrInvalidScale, f)
	}
	return nil
}
