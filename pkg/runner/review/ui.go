package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/flip/pkg/session"
)

const (
	fieldFront = iota
	fieldBack
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Align(lipgloss.Center)
	backStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("212"))
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	cellSelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)
	faintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2)
)

// Model renders controller state and forwards user intents. All session
// state lives in the controller; the model owns only presentation
// concerns like the grid cursor and the form inputs.
type Model struct {
	ctrl *session.Controller
	ctx  context.Context

	frontInput textinput.Model
	backInput  textinput.Model
	formFocus  int
	formSeeded bool

	gridIndex     int
	confirmDelete bool

	status string

	termWidth  int
	termHeight int
}

// New builds a review UI bound to the controller.
func New(ctrl *session.Controller) Model {
	fi := textinput.New()
	fi.Placeholder = "Front"
	fi.CharLimit = 256
	fi.Prompt = ""
	fi.Styles.Cursor.Color = lipgloss.Color("212")

	bi := textinput.New()
	bi.Placeholder = "Back"
	bi.CharLimit = 256
	bi.Prompt = ""
	bi.Styles.Cursor.Color = lipgloss.Color("212")

	return Model{
		ctrl:   ctrl,
		ctx:    context.Background(),
		status: "space flip, ←/→ move, s shuffle, g grid, a add, e edit, d delete, q quit",

		frontInput: fi,
		backInput:  bi,
	}
}

// refreshMsg asks the model to re-read the controller snapshot.
type refreshMsg struct{}

func (m Model) Init() tea.Cmd {
	return nil
}

// intent runs a controller operation off the UI loop and refreshes.
func (m *Model) intent(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return refreshMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
	case refreshMsg:
		m.syncPresentation()
	case tea.KeyPressMsg:
		snap := m.ctrl.Snapshot()
		switch {
		case snap.Form.Open:
			cmds = append(cmds, m.updateForm(msg)...)
		case m.confirmDelete:
			switch msg.String() {
			case "y", "Y":
				m.confirmDelete = false
				cmds = append(cmds, m.intent(func() { m.ctrl.DeleteCurrent(m.ctx, true) }))
			default:
				m.confirmDelete = false
				cmds = append(cmds, m.intent(func() { m.ctrl.DeleteCurrent(m.ctx, false) }))
			}
		case snap.Mode == session.Grid:
			cmds = append(cmds, m.updateGrid(msg, snap)...)
		default:
			cmds = append(cmds, m.updateBrowsing(msg, snap)...)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateBrowsing(msg tea.KeyPressMsg, snap session.Snapshot) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg.String() {
	case "q", "ctrl+c":
		cmds = append(cmds, tea.Quit)
	case "space", "enter":
		cmds = append(cmds, m.intent(m.ctrl.Flip))
	case "right", "l", "n":
		cmds = append(cmds, m.intent(m.ctrl.Next))
	case "left", "h", "p":
		cmds = append(cmds, m.intent(m.ctrl.Prev))
	case "s":
		cmds = append(cmds, m.intent(m.ctrl.Shuffle))
	case "g":
		cmds = append(cmds, m.intent(m.ctrl.ToggleGrid))
	case "a":
		cmds = append(cmds, m.intent(m.ctrl.OpenAddForm))
	case "e":
		cmds = append(cmds, m.intent(m.ctrl.OpenEditForm))
	case "d":
		if snap.Mode == session.Browsing && len(snap.Cards) > 0 && !snap.Busy {
			m.confirmDelete = true
		}
	}
	return cmds
}

func (m *Model) updateGrid(msg tea.KeyPressMsg, snap session.Snapshot) []tea.Cmd {
	var cmds []tea.Cmd
	cols := m.gridColumns()
	switch msg.String() {
	case "q", "ctrl+c":
		cmds = append(cmds, tea.Quit)
	case "g", "esc":
		cmds = append(cmds, m.intent(m.ctrl.ToggleGrid))
	case "s":
		cmds = append(cmds, m.intent(m.ctrl.Shuffle))
	case "right", "l":
		m.moveGridCursor(1, len(snap.Cards))
	case "left", "h":
		m.moveGridCursor(-1, len(snap.Cards))
	case "down", "j":
		m.moveGridCursor(cols, len(snap.Cards))
	case "up", "k":
		m.moveGridCursor(-cols, len(snap.Cards))
	case "space", "enter":
		if m.gridIndex < len(snap.Cards) {
			id := snap.Cards[m.gridIndex].ID
			cmds = append(cmds, m.intent(func() { m.ctrl.ToggleFlip(id) }))
		}
	}
	return cmds
}

func (m *Model) updateForm(msg tea.KeyPressMsg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg.String() {
	case "esc":
		m.formSeeded = false
		cmds = append(cmds, m.intent(m.ctrl.CancelForm))
		return cmds
	case "tab", "shift+tab":
		if m.formFocus == fieldFront {
			m.formFocus = fieldBack
		} else {
			m.formFocus = fieldFront
		}
		m.applyFormFocus()
		return cmds
	case "enter":
		if m.ctrl.Snapshot().Busy {
			return cmds
		}
		cmds = append(cmds, m.intent(func() { m.ctrl.SubmitForm(m.ctx) }))
		return cmds
	}

	var cmd tea.Cmd
	if m.formFocus == fieldFront {
		m.frontInput, cmd = m.frontInput.Update(msg)
	} else {
		m.backInput, cmd = m.backInput.Update(msg)
	}
	cmds = append(cmds, cmd)
	m.ctrl.SetDrafts(m.frontInput.Value(), m.backInput.Value())
	return cmds
}

// syncPresentation reconciles view-local state with a fresh snapshot:
// the grid cursor is clamped and the form inputs are seeded exactly
// once per form opening.
func (m *Model) syncPresentation() {
	snap := m.ctrl.Snapshot()

	if n := len(snap.Cards); n == 0 {
		m.gridIndex = 0
	} else if m.gridIndex >= n {
		m.gridIndex = n - 1
	}

	if snap.Form.Open && !m.formSeeded {
		m.frontInput.SetValue(snap.Form.Front)
		m.backInput.SetValue(snap.Form.Back)
		m.formFocus = fieldFront
		m.formSeeded = true
		m.applyFormFocus()
	}
	if !snap.Form.Open && m.formSeeded {
		m.formSeeded = false
		m.frontInput.SetValue("")
		m.backInput.SetValue("")
	}
}

func (m *Model) applyFormFocus() {
	if m.formFocus == fieldFront {
		m.frontInput.Focus()
		m.backInput.Blur()
	} else {
		m.backInput.Focus()
		m.frontInput.Blur()
	}
}

func (m *Model) moveGridCursor(delta, count int) {
	if count == 0 {
		return
	}
	next := m.gridIndex + delta
	if next < 0 || next >= count {
		return
	}
	m.gridIndex = next
}

// cardWidth is the wrap width for the big browsing card.
func (m Model) cardWidth() int {
	w := 48
	if m.termWidth > 0 && m.termWidth-12 < w {
		w = m.termWidth - 12
	}
	if w < 16 {
		w = 16
	}
	return w
}

func (m *Model) gridColumns() int {
	cols := 3
	if m.termWidth > 0 {
		cols = m.termWidth / 24
		if cols < 1 {
			cols = 1
		}
		if cols > 5 {
			cols = 5
		}
	}
	return cols
}

// View renders the current controller snapshot.
func (m Model) View() string {
	snap := m.ctrl.Snapshot()

	var body string
	switch snap.Mode {
	case session.SignedOut:
		body = faintStyle.Render("signed out — run `flip login` first, then `flip ui` (q to quit)")
	case session.Loading:
		body = faintStyle.Render("loading cards…")
	case session.Grid:
		body = m.viewGrid(snap)
	default:
		body = m.viewBrowsing(snap)
	}

	if snap.Form.Open {
		body += "\n\n" + m.viewForm(snap)
	}
	if m.confirmDelete {
		if cur := snap.Current(); cur != nil {
			body += "\n\n" + errStyle.Render(fmt.Sprintf("delete %q? y/n", cur.Front))
		}
	}

	status := m.status
	if snap.Busy {
		status = "saving…"
	}
	line := faintStyle.Render(fmt.Sprintf("[%s] %s", snap.Mode, status))
	if snap.Err != nil {
		line += "\n" + errStyle.Render("ERR: "+snap.Err.Error())
	}
	if m.termWidth > 0 {
		line = wordwrap.String(line, m.termWidth)
	}
	return body + "\n\n" + line
}

func (m Model) viewBrowsing(snap session.Snapshot) string {
	if len(snap.Cards) == 0 {
		return faintStyle.Render("no cards yet — press a to add one")
	}
	cur := snap.Cards[snap.Index]

	face := cur.Front
	style := cardStyle
	side := "front"
	if snap.Flipped {
		face = cur.Back
		style = backStyle
		side = "back"
	}
	face = wordwrap.String(face, m.cardWidth())

	counter := faintStyle.Render(fmt.Sprintf("%d/%d · %s", snap.Index+1, len(snap.Cards), side))
	return style.Render(face) + "\n" + counter
}

func (m Model) viewGrid(snap session.Snapshot) string {
	if len(snap.Cards) == 0 {
		return faintStyle.Render("no cards yet")
	}
	cols := m.gridColumns()

	cells := make([]string, 0, len(snap.Cards))
	for i, c := range snap.Cards {
		face := c.Front
		if snap.FlippedByID[c.ID] {
			face = c.Back
		}
		face = wordwrap.String(face, 18)
		st := cellStyle
		if i == m.gridIndex {
			st = cellSelStyle
		}
		cells = append(cells, st.Render(face))
	}

	rows := make([]string, 0, (len(cells)+cols-1)/cols)
	for start := 0; start < len(cells); start += cols {
		end := start + cols
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:end]...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewForm(snap session.Snapshot) string {
	title := "Add card"
	if snap.Form.Editing {
		title = "Edit card"
	}
	lines := []string{
		title,
		"",
		"Front: " + m.frontInput.View(),
		"Back:  " + m.backInput.View(),
		"",
		faintStyle.Render("tab switch · enter save · esc cancel"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
