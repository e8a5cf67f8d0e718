// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reflex/internal/history"
	"reflex/internal/model"
	"reflex/internal/report"
)

const (
	tabOverview = iota
	tabGames
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea history browser.
type Model struct {
	store  *history.Store
	filter model.HistoryFilter

	games  []model.GameAggregate
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	gameTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	detailMode   bool
	detailGame   model.GameAggregate
	detailRounds []uint16
	detailErr    string
}

// NewModel constructs a history browser model.
func NewModel(st *history.Store, filter model.HistoryFilter) *Model {
	m := &Model{
		store:  st,
		filter: filter,
		tabs:   []string{"Overview", "Games"},
	}
	m.initInputs()
	m.gameTable = buildGameTable(nil, 0, 1)
	m.overview = viewport.New(0, 0)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.detailMode {
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.detailMode = false
			}
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabGames {
				m.openDetail()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabGames {
				m.gameTable.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabGames {
				m.gameTable.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabGames {
				var cmd tea.Cmd
				m.gameTable, cmd = m.gameTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.detailMode {
		return fitLines(m.renderDetailModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Difficulty (EASY/MEDIUM/HARD): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	if m.filter.Difficulty != nil {
		m.filterInputs[0].SetValue(m.filter.Difficulty.String())
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.filter.Since != nil {
		m.filterInputs[1].SetValue(m.filter.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.filter.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.gameTable.SetWidth(m.width)
	m.gameTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabGames {
		m.gameTable.Focus()
	} else {
		m.gameTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	difficulty := "any"
	if m.filter.Difficulty != nil {
		difficulty = m.filter.Difficulty.String()
	}
	since := "any"
	if m.filter.Since != nil {
		since = m.filter.Since.Format("2006-01-02")
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	summary := fmt.Sprintf("Filter: difficulty=%s  since=%s  last=%s", difficulty, since, last)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: q")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q"
	if m.activeTab == tabGames {
		help = "Nav: left/right  Rounds: enter  Filter: /  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabGames {
		if len(m.games) == 0 {
			return fitLines("No games found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.gameTable.View()), m.width, height)
	}
	return fitLines(m.overview.View(), m.width, height)
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) refresh() {
	games, err := m.store.ListGames(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.games = games
	_, bodyHeight, _ := m.layoutHeights()
	m.gameTable = buildGameTable(games, m.width, bodyHeight)
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.overview.SetContent(renderOverview(m.games, m.width))
}

func renderOverview(games []model.GameAggregate, width int) string {
	if len(games) == 0 {
		return "No games found."
	}
	var totalAvg float64
	best := games[0].AverageMs
	perTier := map[model.Difficulty]int{}
	for _, g := range games {
		totalAvg += float64(g.AverageMs)
		if g.AverageMs < best {
			best = g.AverageMs
		}
		perTier[g.Difficulty]++
	}
	count := float64(len(games))
	cards := []string{
		metricCard("Games", fmt.Sprintf("%d", len(games))),
		metricCard("Avg", fmt.Sprintf("%.1f ms", totalAvg/count)),
		metricCard("Best", fmt.Sprintf("%d ms", best)),
	}
	for _, d := range model.Difficulties {
		if perTier[d] > 0 {
			cards = append(cards, metricCard(d.String(), fmt.Sprintf("%d", perTier[d])))
		}
	}
	var rows []string
	if width < 80 {
		rows = []string{strings.Join(cards, "\n")}
	} else {
		rows = []string{lipgloss.JoinHorizontal(lipgloss.Top, cards...)}
	}
	trend := headerStyle.Render("Trend (oldest to newest): " + report.Sparkline(averages(games)))
	return strings.TrimRight(strings.Join(rows, "\n")+"\n\n"+trend, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildGameTable(games []model.GameAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Played", Width: 16},
		{Title: "Difficulty", Width: 10},
		{Title: "Avg", Width: 8},
		{Title: "Best", Width: 8},
		{Title: "Worst", Width: 8},
	}
	rows := make([]table.Row, 0, len(games))
	for _, g := range games {
		rows = append(rows, table.Row{
			g.PlayedAt.Format("2006-01-02 15:04"),
			g.Difficulty.String(),
			fmt.Sprintf("%d ms", g.AverageMs),
			fmt.Sprintf("%d ms", g.BestMs),
			fmt.Sprintf("%d ms", g.WorstMs),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(gameTableStyles())
	return t
}

func gameTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) openDetail() {
	idx := m.gameTable.Cursor()
	if idx < 0 || idx >= len(m.games) {
		return
	}
	m.detailGame = m.games[idx]
	m.detailErr = ""
	rounds, err := m.store.RoundTimes(context.Background(), m.detailGame.GameID)
	if err != nil {
		m.detailErr = err.Error()
	}
	m.detailRounds = rounds
	m.detailMode = true
}

func (m *Model) renderDetailModal() string {
	title := cardValueStyle.Render(fmt.Sprintf("%s on %s",
		m.detailGame.Difficulty,
		m.detailGame.PlayedAt.Format("2006-01-02 15:04")))
	body := []string{title}
	if m.detailErr != "" {
		body = append(body, errorStyle.Render(m.detailErr))
	} else {
		for i, r := range m.detailRounds {
			body = append(body, fmt.Sprintf("Round %d: %d ms", i+1, r))
		}
		body = append(body, "", fmt.Sprintf("Average: %d ms", m.detailGame.AverageMs))
	}
	body = append(body, headerStyle.Render("Enter/Esc to close"))
	box := modalStyle.Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	difficultyInput := strings.TrimSpace(m.filterInputs[0].Value())
	var difficulty *model.Difficulty
	if difficultyInput != "" {
		d, ok := model.ParseDifficulty(strings.ToUpper(difficultyInput))
		if !ok {
			return fmt.Errorf("invalid difficulty (use EASY, MEDIUM, or HARD)")
		}
		difficulty = &d
	}

	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	m.filter = model.HistoryFilter{
		Difficulty: difficulty,
		Since:      since,
		Last:       last,
	}
	return nil
}

func averages(games []model.GameAggregate) []float64 {
	out := make([]float64, len(games))
	for i, g := range games {
		out[i] = float64(g.AverageMs)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
