package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ocrasesorias/facturas/cmd/tui/internal/view"
	"github.com/ocrasesorias/facturas/internal/billing"
	billingStore "github.com/ocrasesorias/facturas/internal/billing/store"
	"github.com/ocrasesorias/facturas/internal/config"
	"github.com/ocrasesorias/facturas/internal/database"
	"github.com/ocrasesorias/facturas/internal/invoice"
	invoiceStore "github.com/ocrasesorias/facturas/internal/invoice/store"
	"github.com/ocrasesorias/facturas/internal/storage"
)

type model struct {
	invoiceService *invoice.Service
	billingService *billing.Service
	orgID          uuid.UUID
	userID         uuid.UUID

	currentView View

	reviewView view.ReviewModel
	ledgerView view.LedgerModel
}

type View int

const (
	ViewMenu   View = 0
	ViewReview View = 1
	ViewLedger View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	orgID, err := uuid.Parse(os.Getenv("TUI_ORG_ID"))
	if err != nil {
		slog.Error("TUI_ORG_ID must be a valid organization id")
		os.Exit(1)
	}

	userID, err := uuid.Parse(os.Getenv("TUI_USER_ID"))
	if err != nil {
		slog.Error("TUI_USER_ID must be a valid user id")
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	files := storage.New(cfg.Storage.Endpoint, cfg.Storage.ServiceKey, cfg.Storage.SignedURLTTL)

	invSvc := invoice.NewService(invoiceStore.New(db), files)
	billingSvc := billing.NewService(billingStore.New(db))

	return model{
		invoiceService: invSvc,
		billingService: billingSvc,
		orgID:          orgID,
		userID:         userID,
		currentView:    ViewMenu,
		reviewView:     view.NewReviewModel(invSvc, orgID, userID),
		ledgerView:     view.NewLedgerModel(billingSvc, orgID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.invoiceService, m.orgID, m.userID)

				return m, m.reviewView.Init()
			case "2":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.billingService, m.orgID)

				return m, m.ledgerView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Facturas TUI\n\n" +
				"1. Review Pending Invoices\n" +
				"2. Billing Ledger\n\n" +
				"q. Quit",
		)
	case ViewReview:
		return m.reviewView.View()
	case ViewLedger:
		return m.ledgerView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
