package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/billing"
)

// LedgerModel shows the organization's credit balance and recent ledger rows.
type LedgerModel struct {
	CommonModel
	billingService *billing.Service
	orgID          uuid.UUID

	table   table.Model
	balance int64
	loading bool
	err     error
}

func NewLedgerModel(billingSvc *billing.Service, orgID uuid.UUID) LedgerModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Event", Width: 24},
		{Title: "Amount", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return LedgerModel{
		billingService: billingSvc,
		orgID:          orgID,
		table:          t,
		loading:        true,
	}
}

func (m LedgerModel) Title() string     { return "Billing Ledger" }
func (m LedgerModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m LedgerModel) Init() tea.Cmd {
	return m.loadLedgerCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.balance = msg.balance

			rows := make([]table.Row, 0, len(msg.entries))
			for _, e := range msg.entries {
				rows = append(rows, table.Row{
					FormatDate(e.CreatedAt),
					e.EventType,
					fmt.Sprintf("%d", e.Amount),
				})
			}

			m.table.SetRows(rows)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadLedgerCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Credits remaining: %d", m.balance)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

type loadLedgerMsg struct {
	balance int64
	entries []*billing.Entry
	err     error
}

func (m LedgerModel) loadLedgerCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		balance, err := m.billingService.Balance(ctx, m.orgID)
		if err != nil {
			return loadLedgerMsg{err: err}
		}

		entries, err := m.billingService.ListEntries(ctx, m.orgID, 50)

		return loadLedgerMsg{balance: balance, entries: entries, err: err}
	}
}
