package view

import (
	"errors"
	"math"
	"testing"

	"github.com/you-not-fish/plotkit/internal/plot"
)

func newView(t *testing.T) *View {
	t.Helper()
	v, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func near(a, b plot.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestViewSize(t *testing.T) {
	v := newView(t)
	if got, want := v.ViewSize(), (plot.Vec2{X: 19.2, Y: 10.8}); !near(got, want) {
		t.Errorf("ViewSize = %v, want %v", got, want)
	}
	v.SetScale(plot.Vec2{X: 2, Y: 4})
	if got, want := v.Extent(), (plot.Vec2{X: 9.6, Y: 2.7}); !near(got, want) {
		t.Errorf("Extent = %v, want %v", got, want)
	}
	// ViewSize does not depend on the scale
	if got, want := v.ViewSize(), (plot.Vec2{X: 19.2, Y: 10.8}); !near(got, want) {
		t.Errorf("ViewSize after SetScale = %v, want %v", got, want)
	}
}

func TestWorldToScreen(t *testing.T) {
	v := newView(t)
	tests := []struct {
		world, screen plot.Vec2
	}{
		{plot.Vec2{}, plot.Vec2{X: 480, Y: 270}},
		{plot.Vec2{X: 19.2, Y: 0}, plot.Vec2{X: 1440, Y: 270}},
		{plot.Vec2{X: 0, Y: 10.8}, plot.Vec2{X: 480, Y: -270}},
	}
	for _, tt := range tests {
		if got := v.WorldToScreen(tt.world); !near(got, tt.screen) {
			t.Errorf("WorldToScreen(%v) = %v, want %v", tt.world, got, tt.screen)
		}
		if got := v.ScreenToWorld(tt.screen); !near(got, tt.world) {
			t.Errorf("ScreenToWorld(%v) = %v, want %v", tt.screen, got, tt.world)
		}
	}
}

func TestRoundTripAfterTransform(t *testing.T) {
	v := newView(t)
	v.Translate(plot.Vec2{X: 3, Y: -1})
	if err := v.ScaleBy(plot.Vec2{X: 1.5, Y: 0.25}); err != nil {
		t.Fatal(err)
	}
	for _, p := range []plot.Vec2{{X: 0, Y: 0}, {X: -7.5, Y: 2}, {X: 100, Y: -100}} {
		if got := v.ScreenToWorld(v.WorldToScreen(p)); !near(got, p) {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestScaleAroundKeepsPointFixed(t *testing.T) {
	v := newView(t)
	v.Translate(plot.Vec2{X: 1, Y: 2})
	screen := plot.Vec2{X: 700, Y: 100}
	before := v.ScreenToWorld(screen)

	if err := v.ScaleAround(plot.Vec2{X: 3, Y: 0.5}, screen); err != nil {
		t.Fatal(err)
	}
	if got := v.ScreenToWorld(screen); !near(got, before) {
		t.Errorf("world under %v moved from %v to %v", screen, before, got)
	}
	if got := v.Scale(); !near(got, plot.Vec2{X: 3, Y: 0.5}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestInvalidScale(t *testing.T) {
	v := newView(t)
	for _, f := range []plot.Vec2{{X: 0, Y: 1}, {X: 1, Y: -2}, {X: 1e-30, Y: 1}, {X: math.NaN(), Y: 1}} {
		if err := v.ScaleBy(f); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("ScaleBy(%v) = %v, want ErrInvalidScale", f, err)
		}
		if err := v.ScaleAround(f, plot.Vec2{}); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("ScaleAround(%v) = %v, want ErrInvalidScale", f, err)
		}
	}
	if got := v.Scale(); got != (plot.Vec2{X: 1, Y: 1}) {
		t.Errorf("Scale after rejected factors = %v", got)
	}
}

func TestSetScaleClamps(t *testing.T) {
	v := newView(t)
	v.SetScale(plot.Vec2{X: 0.01, Y: 3})
	if got := v.Scale(); got != (plot.Vec2{X: 0.05, Y: 3}) {
		t.Errorf("Scale = %v, want (0.05, 3)", got)
	}
}

func TestScrollAndZoom(t *testing.T) {
	v := newView(t)
	v.SetScale(plot.Vec2{X: 2, Y: 2})
	v.Scroll(plot.Vec2{X: 1, Y: 1})
	if got, want := v.Translation(), (plot.Vec2{X: -0.05, Y: 0.05}); !near(got, want) {
		t.Errorf("Translation after Scroll = %v, want %v", got, want)
	}

	if err := v.Zoom(10, plot.Vec2{X: 480, Y: 270}); err != nil {
		t.Fatal(err)
	}
	if got, want := v.Scale(), (plot.Vec2{X: 2.4, Y: 2.4}); !near(got, want) {
		t.Errorf("Scale after Zoom = %v, want %v", got, want)
	}
}

func TestOnChange(t *testing.T) {
	v := newView(t)
	calls := 0
	v.OnChange(func() { calls++ })

	v.Translate(plot.Vec2{X: 1})
	v.SetTranslation(plot.Vec2{})
	v.SetScale(plot.Vec2{X: 1, Y: 1})
	_ = v.ScaleBy(plot.Vec2{X: 2, Y: 2})
	_ = v.ScaleAround(plot.Vec2{X: 2, Y: 2}, plot.Vec2{})
	_ = v.ScaleBy(plot.Vec2{}) // rejected, no notification

	if calls != 5 {
		t.Errorf("listener called %d times, want 5", calls)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PixelsPerUnit = 0
	if _, err := New(cfg); err == nil {
		t.Error("New accepted PixelsPerUnit = 0")
	}
}
