// Package layout turns pointer interactions into validated widget geometry.
// On the desktop viewport widgets are freely positioned and must not
// overlap; on smaller viewports widgets flow in a stack and all spatial
// interaction is disabled.
package layout

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
)

// Viewport is the layout class derived from the available width.
type Viewport int

const (
	Mobile Viewport = iota
	Tablet
	Desktop
)

// Viewport breakpoints in pixels.
const (
	TabletMinWidth  = 768
	DesktopMinWidth = 1200
)

// OverlapBuffer is the clearance required between widgets, in pixels.
const OverlapBuffer = 2

// ClassifyWidth returns the viewport class for a width in pixels.
func ClassifyWidth(px int) Viewport {
	switch {
	case px < TabletMinWidth:
		return Mobile
	case px < DesktopMinWidth:
		return Tablet
	default:
		return Desktop
	}
}

func (v Viewport) String() string {
	switch v {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	case Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// FreeForm reports whether widgets can be positioned freely.
func (v Viewport) FreeForm() bool {
	return v == Desktop
}

// Point is a pointer location in canvas pixels.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H int
}

// RectOf returns the committed rectangle of a widget.
func RectOf(w dashboard.Widget) Rect {
	return Rect{X: w.Position.X, Y: w.Position.Y, W: w.Size.Width, H: w.Size.Height}
}

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

// Position returns the top-left corner.
func (r Rect) Position() dashboard.Position {
	return dashboard.Position{X: r.X, Y: r.Y}
}

// Size returns the extent.
func (r Rect) Size() dashboard.Size {
	return dashboard.Size{Width: r.W, Height: r.H}
}

// Expand grows r by b on every side.
func (r Rect) Expand(b int) Rect {
	return Rect{X: r.X - b, Y: r.Y - b, W: r.W + 2*b, H: r.H + 2*b}
}

// Intersects reports whether r and o share any area. Rectangles that only
// touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() <= o.X ||
		r.X >= o.Right() ||
		r.Bottom() <= o.Y ||
		r.Y >= o.Bottom())
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Direction is a resize handle.
type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// Directions returns all resize handles.
func Directions() []Direction {
	return []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
}

// ParseDirection converts a handle name into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Directions() {
		if d == known {
			return d, nil
		}
	}
	return "", errors.New(errors.ErrLayout,
		fmt.Sprintf("Unknown resize direction: %q", s),
		"Use one of: n, s, e, w, ne, nw, se, sw")
}

func (d Direction) north() bool { return strings.Contains(string(d), "n") }
func (d Direction) south() bool { return strings.Contains(string(d), "s") }
func (d Direction) east() bool  { return strings.Contains(string(d), "e") }
func (d Direction) west() bool  { return strings.Contains(string(d), "w") }

// resized applies a pointer delta to start for handle d. Width and height
// are clamped to the widget minimums. North and west handles keep the
// opposite edge fixed, so the position moves by the inverse of the size
// change; the position never goes negative.
func resized(start Rect, d Direction, dx, dy int) Rect {
	r := start

	if d.east() {
		r.W = max(dashboard.MinWidth, start.W+dx)
	}
	if d.south() {
		r.H = max(dashboard.MinHeight, start.H+dy)
	}
	if d.west() {
		r.W = max(dashboard.MinWidth, start.W-dx)
		r.X = start.X + (start.W - r.W)
		if r.X < 0 {
			r.W += r.X
			r.X = 0
		}
	}
	if d.north() {
		r.H = max(dashboard.MinHeight, start.H-dy)
		r.Y = start.Y + (start.H - r.H)
		if r.Y < 0 {
			r.H += r.Y
			r.Y = 0
		}
	}
	return r
}
