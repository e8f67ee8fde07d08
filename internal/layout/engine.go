package layout

import (
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/logger"
)

// Store is the part of the dashboard store the engine reads and commits to.
type Store interface {
	Widgets() []dashboard.Widget
	UpdateWidgetPosition(id string, p dashboard.Position)
	UpdateWidgetSize(id string, s dashboard.Size)
}

// geometryStore commits position and size in one write.
type geometryStore interface {
	UpdateWidgetGeometry(id string, p dashboard.Position, s dashboard.Size)
}

// Button identifies the pointer button that started an interaction.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Mode is the kind of interaction in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrag
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModeDrag:
		return "drag"
	case ModeResize:
		return "resize"
	default:
		return "idle"
	}
}

// Transient is the uncommitted geometry of the widget being moved or
// resized. It lives outside the store until the interaction ends.
type Transient struct {
	WidgetID    string
	Mode        Mode
	Direction   Direction
	Rect        Rect
	Overlapping bool
}

// Result describes how an interaction ended.
type Result struct {
	WidgetID  string
	Mode      Mode
	Committed bool
	// Reverted is set when the final geometry overlapped another widget.
	Reverted bool
	// Rect is the geometry the widget has after the interaction: the
	// committed rectangle, or the start rectangle after a revert.
	Rect Rect
}

type interaction struct {
	mode         Mode
	id           string
	dir          Direction
	startPointer Point
	start        Rect
	current      Rect
	overlapping  bool
}

// Engine tracks at most one drag or resize at a time.
type Engine struct {
	store    Store
	log      logger.Logger
	width    int
	viewport Viewport
	active   *interaction
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine returns an engine over store, starting on the desktop viewport.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		log:      logger.NewEnvLogger("[layout]"),
		width:    DesktopMinWidth,
		viewport: Desktop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetViewportWidth reclassifies the viewport. Leaving the desktop class
// cancels any interaction in progress.
func (e *Engine) SetViewportWidth(px int) Viewport {
	e.width = px
	e.viewport = ClassifyWidth(px)
	if !e.viewport.FreeForm() && e.active != nil {
		e.log.Debug("viewport now %s; cancelling %s of %s", e.viewport, e.active.mode, e.active.id)
		e.active = nil
	}
	return e.viewport
}

// Viewport returns the current viewport class.
func (e *Engine) Viewport() Viewport {
	return e.viewport
}

// Width returns the last viewport width in pixels.
func (e *Engine) Width() int {
	return e.width
}

// Overlaps reports whether r, expanded by the buffer, intersects any widget
// other than excludeID. Always false off the desktop viewport.
func (e *Engine) Overlaps(r Rect, excludeID string) bool {
	return len(e.Conflicts(r, excludeID)) > 0
}

// Conflicts returns the ids of widgets that r would overlap.
func (e *Engine) Conflicts(r Rect, excludeID string) []string {
	if !e.viewport.FreeForm() {
		return nil
	}
	candidate := r.Expand(OverlapBuffer)

	var ids []string
	for _, w := range e.store.Widgets() {
		if w.ID == excludeID {
			continue
		}
		if candidate.Intersects(RectOf(w)) {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// Active reports whether a drag or resize is in progress.
func (e *Engine) Active() bool {
	return e.active != nil
}

// Transient returns the in-progress geometry.
func (e *Engine) Transient() (Transient, bool) {
	if e.active == nil {
		return Transient{}, false
	}
	return Transient{
		WidgetID:    e.active.id,
		Mode:        e.active.mode,
		Direction:   e.active.dir,
		Rect:        e.active.current,
		Overlapping: e.active.overlapping,
	}, true
}

// BeginDrag starts moving widget id from pointer p. Only the primary button
// starts a drag, and only on the desktop viewport.
func (e *Engine) BeginDrag(id string, p Point, b Button) bool {
	return e.begin(ModeDrag, id, "", p, b)
}

// BeginResize starts resizing widget id by handle d from pointer p.
func (e *Engine) BeginResize(id string, d Direction, p Point, b Button) bool {
	if _, err := ParseDirection(string(d)); err != nil {
		e.log.Warn("ignoring resize of %s: %v", id, err)
		return false
	}
	return e.begin(ModeResize, id, d, p, b)
}

func (e *Engine) begin(mode Mode, id string, d Direction, p Point, b Button) bool {
	if b != ButtonPrimary || !e.viewport.FreeForm() || e.active != nil {
		return false
	}
	w, ok := e.find(id)
	if !ok {
		return false
	}
	start := RectOf(w)
	e.active = &interaction{
		mode:         mode,
		id:           id,
		dir:          d,
		startPointer: p,
		start:        start,
		current:      start,
	}
	return true
}

// Move updates the transient geometry for pointer p. Nothing is written
// to the store.
func (e *Engine) Move(p Point) (Transient, bool) {
	a := e.active
	if a == nil || !e.viewport.FreeForm() {
		return Transient{}, false
	}

	dx := p.X - a.startPointer.X
	dy := p.Y - a.startPointer.Y

	switch a.mode {
	case ModeDrag:
		a.current = Rect{
			X: max(0, a.start.X+dx),
			Y: max(0, a.start.Y+dy),
			W: a.start.W,
			H: a.start.H,
		}
	case ModeResize:
		a.current = resized(a.start, a.dir, dx, dy)
	}
	a.overlapping = e.Overlaps(a.current, a.id)
	return e.Transient()
}

// End finishes the interaction. Overlapping geometry is reverted to the
// start rectangle; otherwise it is committed to the store.
func (e *Engine) End() (Result, bool) {
	a := e.active
	if a == nil {
		return Result{}, false
	}
	e.active = nil

	res := Result{WidgetID: a.id, Mode: a.mode}
	if a.current == a.start {
		res.Rect = a.start
		return res, true
	}
	if e.Overlaps(a.current, a.id) {
		e.log.Debug("%s of %s to %s overlaps %v; reverting", a.mode, a.id, a.current, e.Conflicts(a.current, a.id))
		res.Reverted = true
		res.Rect = a.start
		return res, true
	}

	switch a.mode {
	case ModeDrag:
		e.store.UpdateWidgetPosition(a.id, a.current.Position())
	case ModeResize:
		if gs, ok := e.store.(geometryStore); ok {
			gs.UpdateWidgetGeometry(a.id, a.current.Position(), a.current.Size())
		} else {
			e.store.UpdateWidgetSize(a.id, a.current.Size())
			e.store.UpdateWidgetPosition(a.id, a.current.Position())
		}
	}
	res.Committed = true
	res.Rect = a.current
	return res, true
}

// Cancel abandons the interaction without committing.
func (e *Engine) Cancel() {
	e.active = nil
}

// WidgetAt returns the top-most widget containing p, by z-index then
// insertion order.
func (e *Engine) WidgetAt(p Point) (dashboard.Widget, bool) {
	var (
		hit   dashboard.Widget
		found bool
	)
	for _, w := range e.store.Widgets() {
		if !RectOf(w).Contains(p) {
			continue
		}
		if !found || w.ZIndex >= hit.ZIndex {
			hit, found = w, true
		}
	}
	return hit, found
}

// HandleAt returns the resize handle of w under p. Handles are bands
// gripX pixels wide along the vertical edges and gripY pixels tall along the
// horizontal ones, with corners taking precedence.
func HandleAt(w dashboard.Widget, p Point, gripX, gripY int) (Direction, bool) {
	r := RectOf(w)
	if !r.Contains(p) {
		return "", false
	}
	n := p.Y < r.Y+gripY
	s := p.Y >= r.Bottom()-gripY
	west := p.X < r.X+gripX
	east := p.X >= r.Right()-gripX

	switch {
	case n && west:
		return NorthWest, true
	case n && east:
		return NorthEast, true
	case s && west:
		return SouthWest, true
	case s && east:
		return SouthEast, true
	case n:
		return North, true
	case s:
		return South, true
	case west:
		return West, true
	case east:
		return East, true
	}
	return "", false
}

func (e *Engine) find(id string) (dashboard.Widget, bool) {
	for _, w := range e.store.Widgets() {
		if w.ID == id {
			return w, true
		}
	}
	return dashboard.Widget{}, false
}
