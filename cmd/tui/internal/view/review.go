package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/invoice"
)

type reviewState int

const (
	reviewStateList reviewState = iota
	reviewStateEditing
)

// invoiceItem wraps an invoice to implement list.Item.
type invoiceItem struct {
	inv *invoice.Invoice
}

func (i invoiceItem) Title() string {
	docType := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.inv.DocumentType))

	return fmt.Sprintf("%s  %s  %s", FormatDate(i.inv.CreatedAt), docType, i.inv.Filename)
}

func (i invoiceItem) Description() string {
	if i.inv.ErrorMessage != "" {
		return i.inv.ErrorMessage
	}

	return ""
}

func (i invoiceItem) FilterValue() string {
	return i.inv.Filename
}

// ReviewModel walks the organization's needs_review queue: pick an invoice,
// correct the extracted fields, confirm to mark it ready.
type ReviewModel struct {
	CommonModel
	invoiceService *invoice.Service
	orgID          uuid.UUID
	userID         uuid.UUID

	state    reviewState
	list     list.Model
	form     *huh.Form
	selected *invoice.Invoice

	loading bool
	status  string

	// Form field bindings
	formSupplier string
	formTaxID    string
	formNumber   string
	formDate     string
	formBase     string
	formVAT      string
	formTotal    string
	formRate     string
}

func NewReviewModel(invSvc *invoice.Service, orgID, userID uuid.UUID) ReviewModel {
	l := list.New([]list.Item{}, invoiceItemDelegate{}, 0, 0)
	l.Title = "Pending Review"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return ReviewModel{
		invoiceService: invSvc,
		orgID:          orgID,
		userID:         userID,
		list:           l,
		loading:        true,
	}
}

func (m ReviewModel) Title() string { return "Review Invoices" }

func (m ReviewModel) ShortHelp() string {
	switch m.state {
	case reviewStateList:
		return "Esc: back | Enter: review | /: filter"
	case reviewStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		items := make([]list.Item, len(msg.invs))
		for i, inv := range msg.invs {
			items[i] = invoiceItem{inv: inv}
		}

		m.list.SetItems(items)

		if len(msg.invs) == 0 {
			m.status = "Nothing to review."
		} else {
			m.status = fmt.Sprintf("%d invoice(s) pending review", len(msg.invs))
		}

		return m, nil

	case fieldsLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading fields: %v", msg.err)
			m.state = reviewStateList

			return m, nil
		}

		return m.startEditing(msg.fields)

	case validateResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			m.state = reviewStateList

			return m, nil
		}

		m.status = "Marked ready."
		m.state = reviewStateList
		m.loading = true

		return m, m.loadQueueCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case reviewStateList:
		return m.updateList(msg)
	case reviewStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m ReviewModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			if m.list.FilterState() == list.Filtering {
				break // let the list handle it (close filter)
			}

			return m, Back
		case tea.KeyEnter:
			if m.list.FilterState() == list.Filtering {
				break // let the list handle it (confirm filter)
			}

			selected, ok := m.list.SelectedItem().(invoiceItem)
			if !ok {
				return m, nil
			}

			m.selected = selected.inv

			return m, m.loadFieldsCmd(selected.inv.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ReviewModel) startEditing(fields *invoice.Fields) (tea.Model, tea.Cmd) {
	m.formSupplier, m.formTaxID, m.formNumber = "", "", ""
	m.formDate, m.formBase, m.formVAT, m.formTotal, m.formRate = "", "", "", "", ""

	if fields != nil {
		m.formSupplier = fields.SupplierName
		m.formTaxID = fields.SupplierTaxID
		m.formNumber = fields.InvoiceNumber
		m.formBase = FormatOptionalAmount(fields.BaseAmountCents)
		m.formVAT = FormatOptionalAmount(fields.VATAmountCents)
		m.formTotal = FormatOptionalAmount(fields.TotalAmountCents)

		if fields.InvoiceDate != nil {
			m.formDate = FormatDate(*fields.InvoiceDate)
		}

		if fields.VATRate != nil {
			m.formRate = fmt.Sprintf("%g", *fields.VATRate)
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("supplier_name").
				Title("Supplier").
				Value(&m.formSupplier),

			huh.NewInput().
				Key("supplier_tax_id").
				Title("Tax ID (NIF/CIF)").
				Value(&m.formTaxID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("tax id cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("invoice_number").
				Title("Invoice Number").
				Value(&m.formNumber).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("invoice number cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("invoice_date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.formDate).
				Validate(func(s string) error {
					_, err := ParseDate(s)
					return err
				}),

			huh.NewInput().
				Key("base_amount").
				Title("Base Amount").
				Value(&m.formBase).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("vat_amount").
				Title("VAT Amount").
				Value(&m.formVAT).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("total_amount").
				Title("Total Amount").
				Value(&m.formTotal).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("vat_rate").
				Title("VAT Rate (%)").
				Value(&m.formRate),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = reviewStateEditing

	return m, m.form.Init()
}

func (m ReviewModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = reviewStateList
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	// Form completed - validate the invoice and move on
	return m, m.validateCmd()
}

func (m ReviewModel) View() string {
	switch m.state {
	case reviewStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading review queue...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case reviewStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(
			m.invoiceInfoView() + "\n" + m.form.View(),
		)
	}

	return ""
}

func (m ReviewModel) invoiceInfoView() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%s (%s, uploaded %s)",
			m.selected.Filename, m.selected.DocumentType, FormatDate(m.selected.CreatedAt)),
	)
}

type loadQueueMsg struct {
	invs []*invoice.Invoice
	err  error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invs, err := m.invoiceService.ListNeedsReview(ctx, m.orgID, 0)

		return loadQueueMsg{invs: invs, err: err}
	}
}

type fieldsLoadedMsg struct {
	fields *invoice.Fields
	err    error
}

func (m ReviewModel) loadFieldsCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, fields, err := m.invoiceService.GetFields(ctx, m.orgID, id)

		return fieldsLoadedMsg{fields: fields, err: err}
	}
}

type validateResultMsg struct {
	err error
}

func (m ReviewModel) validateCmd() tea.Cmd {
	return func() tea.Msg {
		fields := invoice.Fields{
			SupplierName:  strings.TrimSpace(m.formSupplier),
			SupplierTaxID: m.formTaxID,
			InvoiceNumber: strings.TrimSpace(m.formNumber),
		}

		var err error

		if fields.InvoiceDate, err = ParseDate(m.formDate); err != nil {
			return validateResultMsg{err: err}
		}

		if fields.BaseAmountCents, err = ParseAmount(m.formBase); err != nil {
			return validateResultMsg{err: err}
		}

		if fields.VATAmountCents, err = ParseAmount(m.formVAT); err != nil {
			return validateResultMsg{err: err}
		}

		if fields.TotalAmountCents, err = ParseAmount(m.formTotal); err != nil {
			return validateResultMsg{err: err}
		}

		if s := strings.TrimSpace(m.formRate); s != "" {
			rate, parseErr := ParseAmount(s)
			if parseErr != nil {
				return validateResultMsg{err: parseErr}
			}

			if rate != nil {
				v := float64(*rate) / 100.0
				fields.VATRate = &v
			}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.invoiceService.Validate(ctx, m.orgID, m.userID, m.selected.ID, fields)

		return validateResultMsg{err: err}
	}
}

// invoiceItemDelegate renders items in the list.
type invoiceItemDelegate struct{}

func (d invoiceItemDelegate) Height() int                             { return 2 }
func (d invoiceItemDelegate) Spacing() int                            { return 0 }
func (d invoiceItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d invoiceItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(invoiceItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	title := i.Title()
	desc := i.Description()

	if isSelected {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}
