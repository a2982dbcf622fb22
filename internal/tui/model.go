// Package tui provides the Bubble Tea analyzer interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/pickwise/internal/app"
	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/stats"
)

const (
	tabPicks = iota
	tabOverdue
	tabSums
	tabHeatMap
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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea analyzer UI.
type Model struct {
	app *app.App

	picks  []model.Pick
	status string
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	sumTable  table.Model

	width  int
	height int

	openMode  bool
	pathInput textinput.Model
}

// NewModel constructs the analyzer UI around an already restored App.
func NewModel(a *app.App) *Model {
	m := &Model{
		app:  a,
		tabs: []string{"Picks", "Overdue", "Sums", "Heat Map"},
	}
	m.initPathInput()
	m.initViewports()
	m.sumTable = buildSumTable(nil, 0, 1)
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
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.openMode {
			return m.updatePathInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "3", "4", "5":
			n, _ := strconv.Atoi(msg.String())
			m.setLength(n)
			return m, nil
		case "g":
			m.generatePicks()
			return m, nil
		case "o":
			return m.startOpen()
		case "home":
			m.gotoTop()
			return m, nil
		case "end":
			m.gotoBottom()
			return m, nil
		default:
			if m.activeTab == tabSums {
				var cmd tea.Cmd
				m.sumTable, cmd = m.sumTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
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
	if m.openMode {
		return fitLines(m.renderOpenModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initPathInput() {
	input := textinput.New()
	input.Prompt = "File: "
	input.Placeholder = "draws.txt"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.pathInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.status != "" {
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
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.sumTable.SetWidth(m.width)
	m.sumTable.SetHeight(maxInt(1, vpHeight-1))
	promptWidth := lipgloss.Width(m.pathInput.Prompt)
	m.pathInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSums {
		m.sumTable.Focus()
	} else {
		m.sumTable.Blur()
	}
}

func (m *Model) gotoTop() {
	if m.activeTab == tabSums {
		m.sumTable.GotoTop()
		return
	}
	m.viewports[m.activeTab].GotoTop()
}

func (m *Model) gotoBottom() {
	if m.activeTab == tabSums {
		m.sumTable.GotoBottom()
		return
	}
	m.viewports[m.activeTab].GotoBottom()
}

func (m *Model) setLength(n int) {
	if err := m.app.SetLength(n); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Next upload parses Pick %d draws.", n))
}

func (m *Model) generatePicks() {
	picks, err := m.app.GeneratePicks(context.Background())
	m.picks = picks
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus(fmt.Sprintf("Generated %d picks.", len(picks)))
	}
	m.activeTab = tabPicks
	m.sumTable.Blur()
	m.refresh()
}

func (m *Model) startOpen() (tea.Model, tea.Cmd) {
	m.openMode = true
	return m, m.pathInput.Focus()
}

func (m *Model) updatePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.openMode = false
		m.pathInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.openMode = false
		m.pathInput.Blur()
		m.loadFile(strings.TrimSpace(m.pathInput.Value()))
		return m, tea.ClearScreen
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) loadFile(path string) {
	if path == "" {
		m.setError(fmt.Errorf("no file given"))
		return
	}
	res, err := m.app.UploadFile(context.Background(), path)
	if err != nil {
		m.setError(err)
		return
	}
	m.picks = nil
	m.setStatus(fmt.Sprintf("Loaded %s draws (%s lines skipped).",
		humanize.Comma(int64(res.Kept)), humanize.Comma(int64(res.Dropped))))
	m.refresh()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.errMsg = ""
	m.updateLayout()
}

func (m *Model) setError(err error) {
	m.errMsg = err.Error()
	m.status = ""
	m.updateLayout()
}

func (m *Model) analysis() model.Analysis {
	return m.app.Analysis()
}

func (m *Model) refresh() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	a := m.analysis()
	m.viewports[tabPicks].SetContent(renderPicks(m.picks))
	m.viewports[tabOverdue].SetContent(renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderOverdue(buf, a, width)
	}))
	m.viewports[tabHeatMap].SetContent(renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderHeatMap(buf, a)
	}))
	m.sumTable.SetRows(buildSumRows(a))
}

func renderPicks(picks []model.Pick) string {
	if len(picks) == 0 {
		return "No picks yet. Press g to generate."
	}
	return renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderPicks(buf, picks)
	})
}

func renderSection(render func(buf *bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
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
	summary := padLines(m.renderSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSummary() string {
	state := m.app.State()
	game := "none"
	if state.Analysis != nil {
		game = fmt.Sprintf("Pick %d", state.Analysis.Length)
	}
	summary := fmt.Sprintf("Loaded: %s  Draws: %s  Next upload: Pick %d  Window: %d",
		game, humanize.Comma(int64(len(state.History))), state.Length, m.app.Config().Window)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down  Length: 3/4/5  Open: o  Generate: g  Quit: q")
}

func (m *Model) renderFooter() string {
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.status != "":
		return m.renderHelp() + "\n" + statusStyle.Render(m.status)
	default:
		return m.renderHelp()
	}
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabSums {
		if len(m.analysis().SumFreq) == 0 {
			return fitLines("No draws loaded. Press o to open a history file.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.sumTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderOpenModal() string {
	body := []string{
		titleStyle.Render(fmt.Sprintf("Open Pick %d History", m.app.State().Length)),
		m.pathInput.View(),
		headerStyle.Render("One draw per line. Other lines are skipped."),
		headerStyle.Render("Enter to load / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildSumTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(sumColumns()),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(sumTableStyles())
	return t
}

func sumColumns() []table.Column {
	return []table.Column{
		{Title: "Sum", Width: 4},
		{Title: "Count", Width: 8},
		{Title: "Share", Width: 7},
		{Title: "Overdue", Width: 8},
	}
}

func buildSumRows(a model.Analysis) []table.Row {
	overdue := make(map[int]struct{}, len(a.OverdueSums))
	for _, s := range a.OverdueSums {
		overdue[s] = struct{}{}
	}
	sums := stats.SortedSums(a.SumFreq)
	rows := make([]table.Row, 0, len(sums))
	for _, s := range sums {
		count := a.SumFreq[s]
		share := 0.0
		if a.Draws > 0 {
			share = float64(count) / float64(a.Draws) * 100
		}
		mark := ""
		if _, ok := overdue[s]; ok {
			mark = "yes"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(s),
			humanize.Comma(int64(count)),
			fmt.Sprintf("%.1f%%", share),
			mark,
		})
	}
	return rows
}

func sumTableStyles() table.Styles {
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
