package plot

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec2 is a point or extent in world or screen space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Mul scales v component-wise by w.
func (v Vec2) Mul(w Vec2) Vec2 { return Vec2{v.X * w.X, v.Y * w.Y} }

// Div divides v component-wise by w.
func (v Vec2) Div(w Vec2) Vec2 { return Vec2{v.X / w.X, v.Y / w.Y} }

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Named colors accepted by ParseColor.
var (
	Green   = Color{0, 255, 0, 255}
	Red     = Color{255, 0, 0, 255}
	Blue    = Color{0, 0, 255, 255}
	Yellow  = Color{255, 255, 0, 255}
	Cyan    = Color{0, 255, 255, 255}
	Magenta = Color{255, 0, 255, 255}
	White   = Color{255, 255, 255, 255}
)

var colorNames = map[string]Color{
	"green":   Green,
	"red":     Red,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"white":   White,
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor accepts a color name, "#rrggbb", or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	if c, ok := colorNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 || len(hex) == len(s) {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Vertex is one point of a polyline.
type Vertex struct {
	Pos   Vec2
	Color Color
}

// Polyline is a connected line strip. Polylines never connect to each
// other.
type Polyline []Vertex

// Viewport maps between world and screen space. It is read once per
// sampling pass.
type Viewport interface {
	WorldToScreen(p Vec2) Vec2
	ScreenToWorld(p Vec2) Vec2
	ViewSize() Vec2    // visible world extent at scale 1
	Translation() Vec2 // world point at the center of the view
	Scale() Vec2
}
