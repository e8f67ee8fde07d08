package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/layout"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/stream"
)

const (
	// DefaultStatusPoll is how often the connection banner re-reads the
	// connection state.
	DefaultStatusPoll = 2 * time.Second

	spinnerInterval = 150 * time.Millisecond
	flashDuration   = 3 * time.Second
)

// Model is the Bubble Tea model for the dashboard canvas.
type Model struct {
	store   *dashboard.Store
	engine  *layout.Engine
	session *stream.Session
	sampler *stream.Sampler
	bridge  *Bridge

	poll time.Duration
	keys keyMap
	help help.Model

	width  int
	height int

	selected   string
	conn       stream.State
	sampleErrs map[metric.Name]string
	subscribed map[metric.Name]time.Duration

	flash        string
	flashSeq     int
	showHelp     bool
	picker       *picker
	spinnerFrame int
	quitting     bool
}

// NewModel creates the dashboard model. Samplers are started by Init.
func NewModel(store *dashboard.Store, session *stream.Session, sampler *stream.Sampler, bridge *Bridge, poll time.Duration) Model {
	if poll <= 0 {
		poll = DefaultStatusPoll
	}
	if bridge == nil {
		bridge = NewBridge()
	}
	return Model{
		store:      store,
		engine:     layout.NewEngine(store),
		session:    session,
		sampler:    sampler,
		bridge:     bridge,
		poll:       poll,
		keys:       keys,
		help:       help.New(),
		conn:       session.Connection().Status(),
		sampleErrs: make(map[metric.Name]string),
		subscribed: make(map[metric.Name]time.Duration),
	}
}

// Init subscribes the sampler for every metric on the canvas and starts the
// status poll and spinner.
func (m Model) Init() tea.Cmd {
	m.syncSamplers()
	return tea.Batch(
		m.tickCmd(),
		m.spinnerTickCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.engine.SetViewportWidth(msg.Width * CellWidth)

	case tickMsg:
		m.conn = m.session.Connection().Status()
		return m, m.tickCmd()

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()

	case SampleMsg:
		m.store.AddMetricDataPoint(msg.Metric, msg.Value)
		delete(m.sampleErrs, msg.Metric)

	case SampleErrorMsg:
		m.sampleErrs[msg.Metric] = m.sampleErrorText(msg.Err)

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Starting pulse..."
	}

	pal := PaletteFor(m.store.IsDarkMode())
	if m.picker != nil {
		return m.renderPicker(pal)
	}
	if m.showHelp {
		return m.renderHelpOverlay(pal)
	}
	return m.renderDashboard(pal)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// flashCmd shows text on the status line until it expires.
func (m *Model) flashCmd(text string) tea.Cmd {
	m.flashSeq++
	m.flash = text
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}

// syncSamplers keeps exactly one sampler per metric shown on the canvas,
// ticking at the fastest refresh interval among that metric's widgets.
func (m *Model) syncSamplers() {
	want := make(map[metric.Name]time.Duration)
	for _, w := range m.store.Widgets() {
		every := time.Duration(w.RefreshIntervalSeconds) * time.Second
		if cur, ok := want[w.Metric]; !ok || every < cur {
			want[w.Metric] = every
		}
	}

	for n := range m.subscribed {
		if _, ok := want[n]; !ok {
			m.sampler.Stop(n)
			delete(m.subscribed, n)
			delete(m.sampleErrs, n)
		}
	}
	for n, every := range want {
		if m.subscribed[n] == every {
			continue
		}
		m.sampler.Start(n, every, m.bridge.Sample(n), m.bridge.SampleError)
		m.subscribed[n] = every
	}
}

// sampleErrorText turns a sampler failure into the line shown in the card.
func (m Model) sampleErrorText(err error) string {
	if errors.Is(err, stream.ErrNotConnected) {
		if state := m.session.Connection().Status(); state.LastError != "" {
			return state.LastError
		}
	}
	return errorSummary(err)
}

// errorSummary returns the one-line message of a structured error, or the
// first line of any other error.
func errorSummary(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}

// handleMouse maps pointer gestures onto layout engine interactions.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.picker != nil || m.showHelp {
		return nil
	}
	p := toPixel(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Y < canvasTop {
			return nil
		}
		id, ok := m.widgetAt(p)
		if !ok {
			m.selected = ""
			return nil
		}
		m.selected = id
		if !m.engine.Viewport().FreeForm() {
			return nil
		}
		btn := mouseButton(msg.Button)
		w, _ := m.store.Widget(id)
		if d, ok := layout.HandleAt(w, p, CellWidth, CellHeight); ok {
			m.engine.BeginResize(id, d, p, btn)
		} else {
			m.engine.BeginDrag(id, p, btn)
		}

	case tea.MouseActionMotion:
		if m.engine.Active() {
			m.engine.Move(p)
		}

	case tea.MouseActionRelease:
		if m.engine.Active() {
			m.engine.Move(p)
			return m.finishInteraction()
		}
	}
	return nil
}

// finishInteraction ends the active drag or resize and reports a revert.
func (m *Model) finishInteraction() tea.Cmd {
	res, ok := m.engine.End()
	if !ok || !res.Reverted {
		return nil
	}
	return m.flashCmd("Widgets can't overlap; change reverted")
}

// widgetAt hit-tests the canvas. Desktop uses committed geometry through
// the engine; narrower viewports use the stacked flow.
func (m Model) widgetAt(p layout.Point) (string, bool) {
	if m.engine.Viewport().FreeForm() {
		w, ok := m.engine.WidgetAt(p)
		return w.ID, ok
	}
	rects := layout.Flow(m.store.Widgets(), m.engine.Viewport(), m.engine.Width())
	for id, r := range rects {
		if r.Contains(p) {
			return id, true
		}
	}
	return "", false
}

func mouseButton(b tea.MouseButton) layout.Button {
	switch b {
	case tea.MouseButtonLeft:
		return layout.ButtonPrimary
	case tea.MouseButtonMiddle:
		return layout.ButtonMiddle
	default:
		return layout.ButtonSecondary
	}
}

// renderDashboard renders the header, connection banner, canvas, and
// footer.
func (m Model) renderDashboard(pal Palette) string {
	canvasHeight := max(0, m.height-canvasTop-1)

	parts := []string{
		m.renderHeader(pal),
		m.renderBanner(pal),
		m.renderCanvas(pal, canvasHeight),
		pal.footerStyle().Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader(pal Palette) string {
	title := lipgloss.NewStyle().
		Foreground(pal.Accent).
		Background(pal.Surface).
		Bold(true).
		Render("pulse")

	theme := "light"
	if m.store.IsDarkMode() {
		theme = "dark"
	}
	stats := lipgloss.NewStyle().
		Foreground(pal.TextSecondary).
		Background(pal.Surface).
		Render(fmt.Sprintf(" | %d widgets | %s layout | %s theme", len(m.store.Widgets()), m.engine.Viewport(), theme))

	return pal.headerStyle().Width(m.width).Render(title + stats)
}

// renderBanner shows the connection state and any transient message.
func (m Model) renderBanner(pal Palette) string {
	var glyph, text string
	color := pal.TextSecondary

	switch m.conn.Status {
	case stream.StatusConnected:
		glyph, text, color = StatusConnected, "Connected to metrics feed", pal.Healthy
	case stream.StatusConnecting:
		glyph = ConnectingSpinnerFrames[m.spinnerFrame%len(ConnectingSpinnerFrames)]
		text, color = "Connecting", pal.Warning
		if m.conn.ReconnectAttempt > 0 {
			text = fmt.Sprintf("Reconnecting (attempt %d)", m.conn.ReconnectAttempt)
		}
	case stream.StatusDisconnected:
		glyph, text, color = StatusDisconnected, m.conn.LastError+" · press r to reconnect", pal.Warning
	case stream.StatusError:
		glyph, text, color = StatusFailed, m.conn.LastError+" · press r to reconnect", pal.Critical
	default:
		glyph, text = StatusWaiting, "Starting metrics feed"
	}

	line := lipgloss.NewStyle().Foreground(color).Render(glyph + " " + text)
	if m.flash != "" {
		line += lipgloss.NewStyle().Foreground(pal.Accent).Render("  " + m.flash)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line)
}

// renderCanvas paints widget boxes back to front by z-index.
func (m Model) renderCanvas(pal Palette, height int) string {
	c := newCanvas(m.width, height, pal.canvasStyle())

	widgets := m.store.Widgets()
	if len(widgets) == 0 {
		c.place(2, 1, pal.footerStyle().Render("No widgets. Press a to add one."))
		return c.String()
	}

	sort.SliceStable(widgets, func(i, j int) bool { return widgets[i].ZIndex < widgets[j].ZIndex })

	rects := layout.Flow(widgets, m.engine.Viewport(), m.engine.Width())
	tr, active := m.engine.Transient()

	for _, w := range widgets {
		r := rects[w.ID]
		state := cardIdle
		if w.ID == m.selected {
			state = cardSelected
		}
		if active && tr.WidgetID == w.ID {
			r = tr.Rect
			state = cardActive
			if tr.Overlapping {
				state = cardConflict
			}
		}
		box := toCells(r)
		c.place(box.col, box.row, renderCard(pal, m.cardData(w), box, state))
	}
	return c.String()
}

// cardData gathers the series and last sampling error for a widget. Line
// charts only see points inside their time window.
func (m Model) cardData(w dashboard.Widget) cardData {
	d := cardData{widget: w, err: m.sampleErrs[w.Metric]}
	if cfg, ok := w.Config.(dashboard.LineChartConfig); ok {
		d.series = m.store.Window(w.Metric, time.Duration(cfg.TimeWindowMinutes)*time.Minute)
	} else {
		d.series = m.store.Metrics(w.Metric)
	}
	return d
}

// Selected returns the id of the selected widget, if any.
func (m Model) Selected() string {
	return m.selected
}
