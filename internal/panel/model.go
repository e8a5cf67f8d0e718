package panel

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"reflex/internal/button"
	"reflex/internal/hardware"
)

const (
	frameInterval = 33 * time.Millisecond
	tapHold       = 120 * time.Millisecond
)

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Foreground(lipgloss.Color("#9FE8FF")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	buzzerOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	buzzerOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
	buttonHeldStyle = buttonStyle.Copy().
			BorderForeground(lipgloss.Color("#C89A3A")).
			Foreground(lipgloss.Color("#C89A3A")).
			Bold(true)
)

type frameMsg time.Time

// Model implements the Bubble Tea front panel.
type Model struct {
	screen *Screen
	lamp   *Lamp
	buzzer *Buzzer
	btn    *Button
	det    *button.Detector
	stop   func()

	width   int
	height  int
	holding bool
}

// NewModel constructs a panel over the shared devices. stop cancels the
// game loop and is called once on quit.
func NewModel(screen *Screen, lamp *Lamp, buzzer *Buzzer, btn *Button, det *button.Detector, stop func()) *Model {
	return &Model{
		screen: screen,
		lamp:   lamp,
		buzzer: buzzer,
		btn:    btn,
		det:    det,
		stop:   stop,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m, frameTick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC || msg.String() == "q":
			if m.stop != nil {
				m.stop()
			}
			return m, tea.Quit
		case msg.Type == tea.KeySpace:
			if !m.holding {
				m.tap()
			}
			return m, nil
		case msg.String() == "b":
			m.holding = !m.holding
			m.setLevel(m.holding)
			return m, nil
		}
	}
	return m, nil
}

// tap simulates a quick press and release. The detector debounces on its
// own goroutine, exactly as it would off a line interrupt.
func (m *Model) tap() {
	go func() {
		if m.btn.SetPressed(true) {
			m.det.OnChange()
		}
		time.Sleep(tapHold)
		if m.btn.SetPressed(false) {
			m.det.OnChange()
		}
	}()
}

func (m *Model) setLevel(pressed bool) {
	if m.btn.SetPressed(pressed) {
		go m.det.OnChange()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	rows := m.screen.Rows()
	for i, row := range rows {
		rows[i] = padRow(row, hardware.DisplayCols)
	}
	oled := screenStyle.Render(strings.Join(rows, "\n"))

	r, g, b := m.lamp.RGB()
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, b))).
		Render("      ")
	lamp := titleStyle.Render("LAMP ") + swatch

	buzz := buzzerOff.Render("buzzer .")
	if m.buzzer.On() {
		buzz = buzzerOn.Render("BUZZER !")
	}

	btnLabel := "BUTTON up"
	btnStyle := buttonStyle
	if m.btn.Pressed() {
		btnLabel = "BUTTON DOWN"
		btnStyle = buttonHeldStyle
	}
	btn := btnStyle.Render(btnLabel)

	status := lipgloss.JoinHorizontal(lipgloss.Center, lamp, "   ", buzz, "   ", btn)
	help := helpStyle.Render("space: tap  b: hold/release  q: quit")

	content := lipgloss.JoinVertical(lipgloss.Left, oled, "", status, "", help)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func padRow(row string, width int) string {
	w := runewidth.StringWidth(row)
	if w < width {
		return row + strings.Repeat(" ", width-w)
	}
	return row
}
