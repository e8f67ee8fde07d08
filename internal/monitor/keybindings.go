package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/layout"
)

// keyMap defines the dashboard's key bindings.
type keyMap struct {
	Quit      key.Binding
	Reconnect key.Binding
	Add       key.Binding
	Remove    key.Binding
	Theme     key.Binding
	Front     key.Binding
	Back      key.Binding
	StepBack  key.Binding
	Next      key.Binding
	Prev      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	Taller    key.Binding
	Shorter   key.Binding
	Confirm   key.Binding
	Close     key.Binding
	Help      key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Reconnect: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reconnect")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add widget")),
	Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x/del", "remove widget")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
	Front:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "bring to front")),
	Back:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "send to back")),
	StepBack:  key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "send back one step")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next widget")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous widget")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
	Grow:      key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "wider")),
	Shrink:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "narrower")),
	Taller:    key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "taller")),
	Shorter:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "shorter")),
	Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Add, k.Remove, k.Theme, k.Reconnect, k.Help}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down, k.Left, k.Right},
		{k.Grow, k.Shrink, k.Taller, k.Shorter},
		{k.Add, k.Remove, k.Front, k.Back, k.StepBack},
		{k.Theme, k.Reconnect, k.Close, k.Help, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input. Returns true if the key was
// handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) && m.picker == nil {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Close) {
			m.showHelp = false
			return true, nil
		}
		if !key.Matches(msg, m.keys.Quit) {
			return true, nil
		}
	}

	if m.picker != nil {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Close):
		m.engine.Cancel()
		m.selected = ""
		return true, nil

	case key.Matches(msg, m.keys.Reconnect):
		m.session.RequestReconnect()
		m.conn = m.session.Connection().Status()
		return true, nil

	case key.Matches(msg, m.keys.Add):
		m.picker = newPicker()
		return true, nil

	case key.Matches(msg, m.keys.Remove):
		if m.selected != "" && m.store.RemoveWidget(m.selected) {
			m.selected = ""
			m.syncSamplers()
		}
		return true, nil

	case key.Matches(msg, m.keys.Theme):
		m.store.ToggleTheme()
		return true, nil

	case key.Matches(msg, m.keys.Front):
		m.withSelected(m.store.SendToFront)
		return true, nil

	case key.Matches(msg, m.keys.Back):
		m.withSelected(m.store.SendBackward)
		return true, nil

	case key.Matches(msg, m.keys.StepBack):
		m.withSelected(m.store.SendBackwardStep)
		return true, nil

	case key.Matches(msg, m.keys.Next):
		m.cycleSelection(1)
		return true, nil

	case key.Matches(msg, m.keys.Prev):
		m.cycleSelection(-1)
		return true, nil

	case key.Matches(msg, m.keys.Up):
		return true, m.nudge(layout.ModeDrag, "", 0, -CellHeight)
	case key.Matches(msg, m.keys.Down):
		return true, m.nudge(layout.ModeDrag, "", 0, CellHeight)
	case key.Matches(msg, m.keys.Left):
		return true, m.nudge(layout.ModeDrag, "", -CellWidth, 0)
	case key.Matches(msg, m.keys.Right):
		return true, m.nudge(layout.ModeDrag, "", CellWidth, 0)

	case key.Matches(msg, m.keys.Grow):
		return true, m.nudge(layout.ModeResize, layout.East, CellWidth, 0)
	case key.Matches(msg, m.keys.Shrink):
		return true, m.nudge(layout.ModeResize, layout.East, -CellWidth, 0)
	case key.Matches(msg, m.keys.Taller):
		return true, m.nudge(layout.ModeResize, layout.South, 0, CellHeight)
	case key.Matches(msg, m.keys.Shorter):
		return true, m.nudge(layout.ModeResize, layout.South, 0, -CellHeight)
	}

	return false, nil
}

// handlePickerKey drives the add-widget overlay.
func (m *Model) handlePickerKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.picker = nil
	case key.Matches(msg, m.keys.Up):
		m.picker.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.picker.move(1)
	case key.Matches(msg, m.keys.Confirm):
		t, n, done := m.picker.confirm()
		if !done {
			return true, nil
		}
		m.picker = nil
		w, err := m.store.AddWidget(t, n)
		if err != nil {
			return true, m.flashCmd("Could not add widget: " + errorSummary(err))
		}
		m.selected = w.ID
		m.syncSamplers()
		return true, m.flashCmd("Added " + w.Title)
	}
	return true, nil
}

func (m *Model) withSelected(fn func(id string)) {
	if m.selected != "" {
		fn(m.selected)
	}
}

// cycleSelection moves the selection through widgets in collection order.
func (m *Model) cycleSelection(step int) {
	ws := m.store.Widgets()
	if len(ws) == 0 {
		m.selected = ""
		return
	}
	idx := -1
	for i, w := range ws {
		if w.ID == m.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(ws) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(ws)) % len(ws)
	}
	m.selected = ws[idx].ID
}

// nudge moves or resizes the selected widget by one cell through the
// layout engine, so keyboard edits follow the same overlap rules as the
// mouse.
func (m *Model) nudge(mode layout.Mode, d layout.Direction, dx, dy int) tea.Cmd {
	if m.selected == "" || m.engine.Active() {
		return nil
	}
	w, ok := m.store.Widget(m.selected)
	if !ok {
		return nil
	}
	start := layout.Point{X: w.Position.X, Y: w.Position.Y}

	var began bool
	if mode == layout.ModeResize {
		began = m.engine.BeginResize(w.ID, d, start, layout.ButtonPrimary)
	} else {
		began = m.engine.BeginDrag(w.ID, start, layout.ButtonPrimary)
	}
	if !began {
		return nil
	}
	m.engine.Move(layout.Point{X: start.X + dx, Y: start.Y + dy})
	return m.finishInteraction()
}
