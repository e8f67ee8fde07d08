package layout

import "github.com/rileyhilliard/pulse/internal/dashboard"

// FlowGap is the spacing between stacked widgets.
const FlowGap = 20

// Columns returns how many columns the stacked flow uses on v.
func (v Viewport) Columns() int {
	switch v {
	case Mobile:
		return 1
	case Tablet:
		return 2
	default:
		return 0
	}
}

// Flow places widgets for a constrained viewport: left to right in equal
// columns, wrapping into rows, each row as tall as its tallest widget.
// Stored positions are ignored and stored sizes only contribute height.
// On the desktop viewport Flow returns each widget's committed rectangle.
func Flow(widgets []dashboard.Widget, v Viewport, width int) map[string]Rect {
	out := make(map[string]Rect, len(widgets))
	cols := v.Columns()
	if cols == 0 {
		for _, w := range widgets {
			out[w.ID] = RectOf(w)
		}
		return out
	}

	colW := (width - FlowGap*(cols+1)) / cols
	if colW < 1 {
		colW = 1
	}

	y := FlowGap
	rowH := 0
	for i, w := range widgets {
		col := i % cols
		if col == 0 && i > 0 {
			y += rowH + FlowGap
			rowH = 0
		}
		x := FlowGap + col*(colW+FlowGap)
		out[w.ID] = Rect{X: x, Y: y, W: colW, H: w.Size.Height}
		rowH = max(rowH, w.Size.Height)
	}
	return out
}
