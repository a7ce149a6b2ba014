package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"magnate/internal/econ"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	eventStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	darkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	tableStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

type stateMsg struct {
	state econ.StateView
	err   error
}

type refreshMsg struct{}

// fetchFunc supplies the dashboard with fresh state; it is backed by the HTTP
// client in watch mode and by an in-process session in local play.
type fetchFunc func(ctx context.Context) (econ.StateView, error)

type dashModel struct {
	fetchState fetchFunc
	every      time.Duration

	table table.Model
	state econ.StateView
	err   error
}

func runDashboard(ctx context.Context, fetchState fetchFunc, every time.Duration) error {
	if every <= 0 {
		every = 2 * time.Second
	}
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Name", Width: 20},
		{Title: "Side", Width: 6},
		{Title: "Lvl", Width: 4},
		{Title: "Income/h", Width: 12},
		{Title: "Workers", Width: 8},
		{Title: "Risk", Width: 5},
		{Title: "Load", Width: 5},
		{Title: "Project", Width: 24},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := dashModel{fetchState: fetchState, every: every, table: t}
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.schedule())
}

func (m dashModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		state, err := m.fetchState(ctx)
		return stateMsg{state: state, err: err}
	}
}

func (m dashModel) schedule() tea.Cmd {
	return tea.Tick(m.every, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case refreshMsg:
		return m, tea.Batch(m.fetch(), m.schedule())
	case stateMsg:
		m.err = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.table.SetRows(businessRows(msg.state))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func businessRows(state econ.StateView) []table.Row {
	rows := make([]table.Row, 0, len(state.Businesses))
	for _, b := range state.Businesses {
		project := "-"
		if b.Project != nil {
			project = fmt.Sprintf("%s %.0f%%", truncate(b.Project.Name, 18), b.Project.Progress)
		}
		name := b.Name
		if b.Category == econ.CategoryDark {
			name = darkStyle.Render(name)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(b.TemplateID, 10),
			name,
			string(b.Category),
			strconv.FormatInt(int64(b.Level), 10),
			formatMicros(b.IncomePerHourMicros),
			strconv.FormatInt(int64(b.Workers), 10),
			strconv.FormatInt(int64(b.Risk), 10),
			strconv.FormatInt(int64(b.Workload), 10),
			project,
		})
	}
	return rows
}

func (m dashModel) View() string {
	header := titleStyle.Render("MAGNATE") + "  " + statStyle.Render(fmt.Sprintf(
		"balance %s | crypto %s | rep %d | risk %d | innovation %d",
		formatMicros(m.state.Player.BalanceMicros),
		formatMicros(m.state.Player.CryptoBalanceMicros),
		m.state.Player.Reputation,
		m.state.Player.RiskLevel,
		m.state.Player.InnovationPoints,
	))

	lines := header + "\n"
	if m.state.Event != nil {
		lines += eventStyle.Render(fmt.Sprintf("EVENT %s: demand x%.2f until %s",
			m.state.Event.Name, m.state.Event.DemandMult, m.state.Event.ExpiresAt.Local().Format("15:04:05"))) + "\n"
	}
	if m.err != nil {
		lines += errStyle.Render("fetch failed: "+m.err.Error()) + "\n"
	}
	lines += tableStyle.Render(m.table.View()) + "\n"
	if len(m.state.Synergies) > 0 {
		lines += statStyle.Render("synergies: ")
		for i, name := range m.state.Synergies {
			if i > 0 {
				lines += ", "
			}
			lines += name
		}
		lines += "\n"
	}
	lines += helpStyle.Render("q to quit")
	return lines
}
