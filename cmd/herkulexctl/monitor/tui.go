package monitor

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdouchement/herkulexd"
)

type model struct {
	table table.Model
}

func newTUI() *model {
	columns := []table.Column{
		{Title: "Servos", Width: 20},
		{Title: "Positions", Width: 20},
		{Title: "Speeds", Width: 10},
		{Title: "Status", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		table: t,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height)
	case []herkulexd.Snapshot:
		m.update(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	return m.table.View()
}

func (m *model) update(snapshots []herkulexd.Snapshot) {
	slices.SortStableFunc(snapshots, func(a, b herkulexd.Snapshot) int {
		return int(a.ID) - int(b.ID)
	})

	rows := make([]table.Row, 0, len(snapshots))
	for _, s := range snapshots {
		if !s.Online {
			rows = append(rows, table.Row{
				fmt.Sprintf("servo%d(%s)", s.ID, s.Label),
				"-",
				"-",
				"offline",
			})
			continue
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("servo%d(%s)", s.ID, s.Label),
			fmt.Sprintf("%4d (%7.2f°)", s.Position, s.Angle),
			fmt.Sprintf("%5d", s.Speed),
			s.StatusText,
		})
	}

	m.table.SetRows(rows)
}
