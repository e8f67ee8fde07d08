package monitor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/layout"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so assertions can match rendered text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func withTrueColor(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })
}

type fixture struct {
	store   *dashboard.Store
	session *stream.Session
	sampler *stream.Sampler
}

// newTestModel returns a model over the default widget set sized to a
// desktop-wide terminal. Widget ids are w1, w2, w3 in default order:
// CPU line chart at (20,20), memory gauge at (340,20), error rate at (660,20).
func newTestModel(t *testing.T) (Model, fixture) {
	t.Helper()
	n := 0
	store := dashboard.NewStore(dashboard.NewMemoryBlobStore(nil),
		dashboard.WithStoreLogger(logger.Noop()),
		dashboard.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("w%d", n)
		}))
	session := stream.NewSession(stream.WithLogger(logger.Noop()))
	sampler := stream.NewSampler(session)
	t.Cleanup(sampler.StopAll)

	m := NewModel(store, session, sampler, nil, time.Second)
	return resize(m, 130, 30), fixture{store: store, session: session, sampler: sampler}
}

func resize(m Model, w, h int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, x, y int, b tea.MouseButton) Model {
	m, _ = send(m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: b})
	return m
}

func motion(m Model, x, y int) Model {
	m, _ = send(m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	return m
}

func release(m Model, x, y int) Model {
	m, _ = send(m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m, fx := newTestModel(t)

	assert.Equal(t, time.Second, m.poll)
	assert.Equal(t, stream.StatusInitializing, m.conn.Status)
	assert.Empty(t, m.Selected())
	assert.Len(t, fx.store.Widgets(), 3)

	m = NewModel(fx.store, fx.session, fx.sampler, nil, 0)
	assert.Equal(t, DefaultStatusPoll, m.poll)
	assert.NotNil(t, m.bridge)
}

func TestModel_WindowSizeSetsViewport(t *testing.T) {
	tests := []struct {
		cols int
		want layout.Viewport
	}{
		{cols: 130, want: layout.Desktop},
		{cols: 120, want: layout.Desktop},
		{cols: 100, want: layout.Tablet},
		{cols: 50, want: layout.Mobile},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			m, _ := newTestModel(t)
			m = resize(m, tt.cols, 30)
			assert.Equal(t, tt.want, m.engine.Viewport())
			assert.Equal(t, tt.cols*CellWidth, m.engine.Width())
		})
	}
}

func TestModel_InitSubscribesOneSamplerPerMetric(t *testing.T) {
	m, fx := newTestModel(t)
	m.Init()

	assert.Equal(t, 3, fx.sampler.Count())
	for _, n := range []metric.Name{metric.CPUUsage, metric.MemoryUsage, metric.ErrorRate} {
		assert.True(t, fx.sampler.Active(n), n)
	}
	st, ok := fx.sampler.Status(metric.CPUUsage)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, st.Interval)
}

func TestModel_SyncSamplersUsesFastestInterval(t *testing.T) {
	m, fx := newTestModel(t)
	m.Init()

	w, err := fx.store.AddWidget(dashboard.KeyMetric, metric.CPUUsage)
	require.NoError(t, err)
	w.RefreshIntervalSeconds = 1
	require.NoError(t, fx.store.UpdateWidget(w))

	m.syncSamplers()

	st, ok := fx.sampler.Status(metric.CPUUsage)
	require.True(t, ok)
	assert.Equal(t, time.Second, st.Interval)
	assert.Equal(t, 3, fx.sampler.Count())
}

func TestModel_MouseDragCommits(t *testing.T) {
	m, fx := newTestModel(t)

	// Interior of the CPU chart, then 13 rows down, clear of the gauge.
	m = press(m, 10, 6, tea.MouseButtonLeft)
	require.True(t, m.engine.Active())
	assert.Equal(t, "w1", m.Selected())

	m = motion(m, 10, 12)
	tr, ok := m.engine.Transient()
	require.True(t, ok)
	assert.Equal(t, layout.Rect{X: 20, Y: 140, W: 300, H: 250}, tr.Rect)
	assert.False(t, tr.Overlapping)
	w, _ := fx.store.Widget("w1")
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position, "motion never writes")

	m = release(m, 10, 19)
	assert.False(t, m.engine.Active())
	assert.Empty(t, m.flash)

	w, _ = fx.store.Widget("w1")
	assert.Equal(t, dashboard.Position{X: 20, Y: 280}, w.Position)
}

func TestModel_MouseDragOverlapReverts(t *testing.T) {
	m, fx := newTestModel(t)

	m = press(m, 10, 6, tea.MouseButtonLeft)
	m, cmd := send(m, tea.MouseMsg{X: 20, Y: 6, Action: tea.MouseActionRelease})

	require.NotNil(t, cmd, "revert flashes a message")
	assert.Contains(t, m.flash, "overlap")
	w, _ := fx.store.Widget("w1")
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position)

	m, _ = send(m, clearFlashMsg{seq: m.flashSeq})
	assert.Empty(t, m.flash)
}

func TestModel_MouseResizeFromEdge(t *testing.T) {
	m, fx := newTestModel(t)

	// Column 31 is the right border of the 30-column chart starting at column 2.
	m = press(m, 31, 6, tea.MouseButtonLeft)
	tr, ok := m.engine.Transient()
	require.True(t, ok)
	assert.Equal(t, layout.ModeResize, tr.Mode)
	assert.Equal(t, layout.East, tr.Direction)

	m = motion(m, 25, 6)
	m = release(m, 25, 6)

	w, _ := fx.store.Widget("w1")
	assert.Equal(t, dashboard.Size{Width: 240, Height: 250}, w.Size)
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position)
}

func TestModel_RightClickSelectsOnly(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, 40, 6, tea.MouseButtonRight)

	assert.Equal(t, "w2", m.Selected())
	assert.False(t, m.engine.Active())
}

func TestModel_ClickOnEmptyCanvasClearsSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, 40, 6, tea.MouseButtonRight)
	require.Equal(t, "w2", m.Selected())

	m = press(m, 120, 25, tea.MouseButtonLeft)
	assert.Empty(t, m.Selected())
	assert.False(t, m.engine.Active())
}

func TestModel_NarrowViewportSelectsWithoutDragging(t *testing.T) {
	m, fx := newTestModel(t)
	m = resize(m, 100, 30)

	m = press(m, 10, 6, tea.MouseButtonLeft)
	assert.Equal(t, "w1", m.Selected())
	assert.False(t, m.engine.Active())

	m = release(m, 20, 10)
	w, _ := fx.store.Widget("w1")
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position)
}

func TestModel_ShrinkingTerminalCancelsDrag(t *testing.T) {
	m, fx := newTestModel(t)
	m = press(m, 10, 6, tea.MouseButtonLeft)
	require.True(t, m.engine.Active())

	m = resize(m, 60, 30)
	assert.False(t, m.engine.Active())

	m = release(m, 10, 19)
	w, _ := fx.store.Widget("w1")
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position)
}

func TestModel_SampleMessages(t *testing.T) {
	m, fx := newTestModel(t)

	m, _ = send(m, SampleErrorMsg{Metric: metric.CPUUsage, Err: fmt.Errorf("%s: %w", metric.CPUUsage, stream.ErrNotConnected)})
	assert.Equal(t, "Not connected to metrics feed", m.sampleErrs[metric.CPUUsage])

	fx.session.Connection().ConnectFailed("dial refused")
	m, _ = send(m, SampleErrorMsg{Metric: metric.CPUUsage, Err: fmt.Errorf("%s: %w", metric.CPUUsage, stream.ErrNotConnected)})
	assert.Equal(t, "Connection error: dial refused", m.sampleErrs[metric.CPUUsage])

	m, _ = send(m, SampleErrorMsg{Metric: metric.Latency, Err: fmt.Errorf("%s: %w", metric.Latency, stream.ErrNoData)})
	assert.Equal(t, "No data available for metric", m.sampleErrs[metric.Latency])

	m, _ = send(m, SampleMsg{Metric: metric.CPUUsage, Value: 42})
	assert.NotContains(t, m.sampleErrs, metric.CPUUsage)
	latest, ok := fx.store.Metrics(metric.CPUUsage).Latest()
	require.True(t, ok)
	assert.Equal(t, 42.0, latest.Value)
}

func TestModel_TickPollsConnection(t *testing.T) {
	m, fx := newTestModel(t)
	fx.session.Connection().Connected()

	assert.Equal(t, stream.StatusInitializing, m.conn.Status, "state is only read on tick")

	m, cmd := send(m, tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, stream.StatusConnected, m.conn.Status)
}

func TestModel_View(t *testing.T) {
	m, fx := newTestModel(t)

	view := m.View()
	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 30)
	for i, line := range lines[canvasTop : len(lines)-1] {
		assert.Equal(t, 130, lipgloss.Width(line), "canvas line %d", i)
	}

	assert.Contains(t, view, "pulse")
	assert.Contains(t, view, "3 widgets")
	assert.Contains(t, view, "desktop layout")
	assert.Contains(t, view, "Starting metrics feed")
	assert.Contains(t, view, "CPU Usage")
	assert.Contains(t, view, "Memory Usage")
	assert.Contains(t, view, "Error Rate")
	assert.Contains(t, view, "Waiting for data")

	fx.session.Connection().Connected()
	m, _ = send(m, tickMsg(time.Now()))
	m, _ = send(m, SampleMsg{Metric: metric.CPUUsage, Value: 42})
	view = m.View()
	assert.Contains(t, view, "Connected to metrics feed")
	assert.Contains(t, view, "42.0%")
}

func TestModel_ViewBannerStates(t *testing.T) {
	m, fx := newTestModel(t)

	fx.session.Connection().ConnectFailed("dial refused")
	m, _ = send(m, tickMsg(time.Now()))
	assert.Contains(t, m.View(), "Connection error: dial refused")
	assert.Contains(t, m.View(), "press r to reconnect")

	fx.session.Connection().ReconnectAttempt()
	m, _ = send(m, tickMsg(time.Now()))
	assert.Contains(t, m.View(), "Reconnecting (attempt 1)")
}

func TestModel_ViewBeforeSize(t *testing.T) {
	_, fx := newTestModel(t)
	m := NewModel(fx.store, fx.session, fx.sampler, nil, time.Second)
	assert.Equal(t, "Starting pulse...", m.View())
}

func TestModel_ViewEmptyCanvas(t *testing.T) {
	m, fx := newTestModel(t)
	for _, w := range fx.store.Widgets() {
		fx.store.RemoveWidget(w.ID)
	}
	assert.Contains(t, m.View(), "No widgets. Press a to add one.")
}

func TestModel_ViewTabletStacksWidgets(t *testing.T) {
	m, _ := newTestModel(t)
	m = resize(m, 100, 40)

	view := m.View()
	assert.Contains(t, view, "tablet layout")
	assert.Contains(t, view, "Error Rate", "third widget wraps to the second row")
}

func TestModel_ViewShowsConflictWhileDragging(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, 10, 6, tea.MouseButtonLeft)
	m = motion(m, 20, 6)

	tr, ok := m.engine.Transient()
	require.True(t, ok)
	assert.True(t, tr.Overlapping)
	assert.Contains(t, m.View(), "┏", "conflicting widget is drawn with a thick border")
}
