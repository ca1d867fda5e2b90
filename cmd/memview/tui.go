package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/resource"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	uptimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type monitorModel struct {
	resName  string
	checked  *resource.Checked
	churn    *churn
	interval time.Duration
	started  time.Time

	spinner spinner.Model
	table   table.Model
}

type tickMsg time.Time

func newMonitorModel(resName string, checked *resource.Checked, c *churn, interval time.Duration) *monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Metric", Width: 22},
			{Title: "Value", Width: 18},
		}),
		table.WithHeight(7),
	)
	st := table.DefaultStyles()
	st.Selected = st.Cell
	tbl.SetStyles(st)

	m := &monitorModel{
		resName:  resName,
		checked:  checked,
		churn:    c,
		interval: interval,
		started:  time.Now(),
		spinner:  sp,
		table:    tbl,
	}
	m.table.SetRows(m.rows())
	return m
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

func (m *monitorModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.table.SetRows(m.rows())
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *monitorModel) rows() []table.Row {
	st := m.checked.Stats()
	return []table.Row{
		{"allocations", fmt.Sprintf("%d", st.Allocs)},
		{"frees", fmt.Sprintf("%d", st.Frees)},
		{"live buffers", fmt.Sprintf("%d", st.Live)},
		{"live bytes", errors.FormatBytes(st.LiveBytes)},
		{"peak bytes", errors.FormatBytes(st.PeakBytes)},
		{"workload rounds", fmt.Sprintf("%d", m.churn.rounds.Load())},
		{"failed allocations", fmt.Sprintf("%d", m.churn.fails.Load())},
	}
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("memkit monitor"))
	b.WriteString(" ")
	b.WriteString(m.resName)
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	b.WriteString(uptimeStyle.Render(fmt.Sprintf(" churning for %s", time.Since(m.started).Truncate(time.Second))))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("q quit"))

	return b.String()
}

func runTUI(resName string, checked *resource.Checked, c *churn, interval time.Duration) error {
	p := tea.NewProgram(newMonitorModel(resName, checked, c, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
