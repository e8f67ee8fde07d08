package dashboard

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

var errNoWidgets = errors.New(errors.ErrStorage,
	"Saved dashboard has no widgets array",
	"Delete the saved dashboard file to start from the default layout")

// Store is the single owner of the widget collection, the metric series,
// and the theme flag. Every widget or theme mutation is persisted
// synchronously to the blob store; persistence failures are logged and
// never returned.
//
// Operations that target a widget id which does not exist are silent
// no-ops, so repeating a removal or a late geometry commit is harmless.
type Store struct {
	mu      sync.Mutex
	blobs   BlobStore
	log     logger.Logger
	now     func() time.Time
	newID   func() string
	widgets []Widget
	metrics map[metric.Name]Series
	dark    bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used to stamp data points.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithStoreLogger sets the store logger.
func WithStoreLogger(l logger.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// WithIDGenerator overrides widget id generation.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore loads the persisted dashboard from blobs, falling back to the
// default widget set when nothing usable is stored.
func NewStore(blobs BlobStore, opts ...StoreOption) *Store {
	s := &Store{
		blobs:   blobs,
		log:     logger.NewEnvLogger("[store]"),
		now:     time.Now,
		newID:   uuid.NewString,
		metrics: make(map[metric.Name]Series),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg := s.load(); cfg != nil {
		s.widgets = cfg.Widgets
		s.dark = cfg.IsDarkMode
	} else {
		s.widgets = DefaultWidgets(s.newID)
	}
	return s
}

// load reads the persisted config. Any failure is logged and yields nil.
func (s *Store) load() *PersistedConfig {
	if s.blobs == nil {
		return nil
	}
	data, err := s.blobs.Load()
	if err != nil {
		s.log.Error("Error loading config: %v", err)
		return nil
	}
	if data == nil {
		return nil
	}
	cfg, err := DecodeConfig(data)
	if err != nil {
		s.log.Error("Error loading config: %v", err)
		return nil
	}

	for _, err := range cfg.Rejected {
		s.log.Warn("dropping saved %v", err)
	}

	kept := cfg.Widgets[:0]
	for _, w := range cfg.Widgets {
		if err := w.Validate(); err != nil {
			s.log.Warn("dropping saved widget %s: %v", w.ID, err)
			continue
		}
		kept = append(kept, w)
	}
	cfg.Widgets = kept
	return cfg
}

// persistLocked writes the full snapshot. Must be called with s.mu held.
func (s *Store) persistLocked() {
	if s.blobs == nil {
		return
	}
	data, err := json.Marshal(PersistedConfig{Widgets: s.widgets, IsDarkMode: s.dark})
	if err != nil {
		s.log.Error("Error saving config: %v", err)
		return
	}
	if err := s.blobs.Save(data); err != nil {
		s.log.Error("Error saving config: %v", err)
	}
}

// Widgets returns a copy of the widget collection in insertion order.
func (s *Store) Widgets() []Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Widget, len(s.widgets))
	copy(out, s.widgets)
	return out
}

// Widget returns the widget with the given id.
func (s *Store) Widget(id string) (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Widget{}, false
	}
	return s.widgets[i], true
}

// IsDarkMode reports the theme flag.
func (s *Store) IsDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Snapshot returns the persisted form of the current state.
func (s *Store) Snapshot() PersistedConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	widgets := make([]Widget, len(s.widgets))
	copy(widgets, s.widgets)
	return PersistedConfig{Widgets: widgets, IsDarkMode: s.dark}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.widgets {
		if s.widgets[i].ID == id {
			return i
		}
	}
	return -1
}

// AddWidget appends a widget of type t showing m, placed at the next
// preset slot with type defaults.
func (s *Store) AddWidget(t Type, m metric.Name) (Widget, error) {
	if !t.Valid() || !m.Valid() {
		return Widget{}, errors.WrapWithCode(ErrInvalidWidget, errors.ErrWidget,
			"Cannot add widget: unknown type or metric",
			"Types: line_chart, gauge, key_metric. Metrics: "+joinMetricNames())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := newWidget(s.newID(), t, m, len(s.widgets))
	s.widgets = append(s.widgets, w)
	s.persistLocked()
	s.log.Debug("added %s widget %s for %s", t, w.ID, m)
	return w, nil
}

// RemoveWidget deletes the widget with id. Returns false if it was absent.
func (s *Store) RemoveWidget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.widgets = append(s.widgets[:i:i], s.widgets[i+1:]...)
	s.persistLocked()
	return true
}

// UpdateWidget replaces the widget with the same id. An invalid widget is
// rejected with ErrInvalidWidget; an unknown id is a no-op.
func (s *Store) UpdateWidget(w Widget) error {
	if err := w.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(w.ID)
	if i < 0 {
		return nil
	}
	s.widgets[i] = w
	s.persistLocked()
	return nil
}

// clampGeometry keeps geometry inside the bounds Validate enforces, so a
// committed change always survives a reload.
func clampGeometry(p Position, sz Size) (Position, Size) {
	p.X, p.Y = max(p.X, 0), max(p.Y, 0)
	sz.Width, sz.Height = max(sz.Width, MinWidth), max(sz.Height, MinHeight)
	return p, sz
}

// UpdateWidgetPosition moves a widget. Negative coordinates clamp to 0.
func (s *Store) UpdateWidgetPosition(id string, p Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.widgets[i].Position, _ = clampGeometry(p, s.widgets[i].Size)
	s.persistLocked()
}

// UpdateWidgetSize resizes a widget, clamping to MinWidth x MinHeight.
func (s *Store) UpdateWidgetSize(id string, sz Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	_, s.widgets[i].Size = clampGeometry(s.widgets[i].Position, sz)
	s.persistLocked()
}

// UpdateWidgetGeometry applies a position and size together with a single
// write, with the same clamping as the single-field updates.
func (s *Store) UpdateWidgetGeometry(id string, p Position, sz Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.widgets[i].Position, s.widgets[i].Size = clampGeometry(p, sz)
	s.persistLocked()
}

// SendToFront sets the widget's z-index one above the current maximum.
func (s *Store) SendToFront(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	top := s.widgets[0].ZIndex
	for _, w := range s.widgets[1:] {
		if w.ZIndex > top {
			top = w.ZIndex
		}
	}
	s.widgets[i].ZIndex = top + 1
	s.persistLocked()
}

// SendBackward sets the widget's z-index one below the current minimum.
func (s *Store) SendBackward(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	bottom := s.widgets[0].ZIndex
	for _, w := range s.widgets[1:] {
		if w.ZIndex < bottom {
			bottom = w.ZIndex
		}
	}
	s.widgets[i].ZIndex = bottom - 1
	s.persistLocked()
}

// SendBackwardStep lowers the widget's z-index by one, swapping with any
// widget already at that level.
func (s *Store) SendBackwardStep(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	current := s.widgets[i].ZIndex
	target := current - 1
	for j := range s.widgets {
		if j != i && s.widgets[j].ZIndex == target {
			s.widgets[j].ZIndex = current
		}
	}
	s.widgets[i].ZIndex = target
	s.persistLocked()
}

// ToggleTheme flips dark mode and returns the new value.
func (s *Store) ToggleTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark = !s.dark
	s.persistLocked()
	return s.dark
}

// AddMetricDataPoint appends a value stamped with the current time and
// applies series retention. Series are not persisted.
func (s *Store) AddMetricDataPoint(m metric.Name, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m] = appendRetained(s.metrics[m], Point{Timestamp: s.now(), Value: v})
}

// Metrics returns a copy of the series for m.
func (s *Store) Metrics(m metric.Name) Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.metrics[m]
	out := make(Series, len(src))
	copy(out, src)
	return out
}

// Window returns the points for m recorded within d of now.
func (s *Store) Window(m metric.Name, d time.Duration) Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.metrics[m].Since(s.now().Add(-d))
	out := make(Series, len(src))
	copy(out, src)
	return out
}

func joinMetricNames() string {
	names := metric.All()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
