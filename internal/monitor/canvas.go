package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pulse/internal/layout"
)

// Terminal cells are mapped onto the dashboard's pixel coordinate space at a
// fixed scale. A 300x250 widget occupies 30 columns by 12 rows.
const (
	CellWidth  = 10
	CellHeight = 20
)

// canvasTop is the number of terminal rows above the widget canvas
// (header and connection banner).
const canvasTop = 2

// sgrReset closes styles left open when a styled line is cut.
const sgrReset = "\x1b[0m"

// cellRect is a widget box in terminal cells.
type cellRect struct {
	col, row, width, height int
}

// toCells converts a pixel rectangle to the terminal box drawn for it.
// Boxes never shrink below 3x3 so the border and one content cell fit.
func toCells(r layout.Rect) cellRect {
	return cellRect{
		col:    r.X / CellWidth,
		row:    r.Y / CellHeight,
		width:  max(3, r.W/CellWidth),
		height: max(3, r.H/CellHeight),
	}
}

// toPixel converts a terminal cell under the mouse to the pixel at that
// cell's center. Rows above the canvas map to negative y.
func toPixel(x, y int) layout.Point {
	return layout.Point{
		X: x*CellWidth + CellWidth/2,
		Y: (y-canvasTop)*CellHeight + CellHeight/2,
	}
}

// canvas is a fixed-size grid of styled lines that widget boxes are
// painted onto back to front.
type canvas struct {
	width, height int
	lines         []string
}

func newCanvas(width, height int, bg lipgloss.Style) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	blank := bg.Render(strings.Repeat(" ", width))
	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}
	return &canvas{width: width, height: height, lines: lines}
}

// place paints block with its top-left corner at (col, row). Anything
// beyond the canvas edges is clipped.
func (c *canvas) place(col, row int, block string) {
	for i, line := range strings.Split(block, "\n") {
		y := row + i
		if y < 0 || y >= c.height {
			continue
		}
		c.lines[y] = overlay(c.lines[y], line, col, c.width)
	}
}

// overlay replaces the cells of base starting at col with top, keeping the
// result exactly width cells wide.
func overlay(base, top string, col, width int) string {
	if col >= width {
		return base
	}
	if col < 0 {
		top = ansi.TruncateLeft(top, -col, "")
		col = 0
	}
	top = ansi.Truncate(top, width-col, "")
	topWidth := ansi.StringWidth(top)

	left := ansi.Truncate(base, col, "")
	if pad := col - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	if strings.Contains(left, "\x1b[") {
		left += sgrReset
	}
	right := ansi.TruncateLeft(base, col+topWidth, "")
	return left + top + right
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}
