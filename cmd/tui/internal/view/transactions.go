package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
)

type Ledger interface {
	ListTransactions(ctx context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error)
	AddTransaction(ctx context.Context, userID string, draft ledger.Draft) (*ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error
}

type txState int

const (
	txStateTimeframe txState = iota
	txStateBrowse
	txStateAdding
	txStateDeleting
)

type loadTxsMsg struct {
	txs []*ledger.Transaction
	err error
}

type txSavedMsg struct {
	status string
	err    error
}

type TransactionsModel struct {
	CommonModel
	ledger Ledger

	state           txState
	timeframePicker TimeframePicker
	table           table.Model
	form            *huh.Form
	txs             []*ledger.Transaction

	dateRange ledger.DateRange
	label     string
	loading   bool
	status    string
	err       error

	// Bound by pointer so the huh form survives model copies.
	fields *txFields
}

type txFields struct {
	typ      ledger.Type
	amount   string
	category string
	date     string
	memo     string
	confirm  bool
}

func newTransactionsTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 16},
		{Title: "Memo", Width: 36},
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

	return t
}

func NewTransactionsModel(userID string, l Ledger) TransactionsModel {
	return TransactionsModel{
		CommonModel:     CommonModel{UserID: userID},
		ledger:          l,
		timeframePicker: NewTimeframePicker(),
		table:           newTransactionsTable(),
		fields:          &txFields{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateBrowse:
		return "Esc: timeframe | a: add | d: delete | r: refresh"
	}

	return "Esc: cancel | Enter/Tab: navigate form"
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.dateRange = msg.Range
		m.label = msg.Label
		m.state = txStateBrowse
		m.loading = true

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.refreshTable()
		}

		return m, nil

	case txSavedMsg:
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.status = msg.status

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		if msg.Height > 12 {
			m.table.SetHeight(msg.Height - 10)
		}

		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateBrowse:
		return m.updateBrowse(msg)
	case txStateAdding, txStateDeleting:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = txStateTimeframe
			m.timeframePicker.Reset()
			m.status = ""

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "a":
			return m.enterAddMode()
		case "d":
			return m.enterDeleteMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) enterAddMode() (tea.Model, tea.Cmd) {
	*m.fields = txFields{typ: ledger.TypeExpense, date: FormatDate(time.Now())}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", ledger.TypeExpense),
					huh.NewOption("Income", ledger.TypeIncome),
				).
				Value(&m.fields.typ),

			huh.NewInput().
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					d, err := onboarding.ParseAmount(s)
					if err != nil {
						return err
					}
					if !d.IsPositive() {
						return errors.New("amount must be greater than zero")
					}
					return nil
				}),

			huh.NewInput().
				Title("Category").
				Placeholder("식비").
				Value(&m.fields.category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewInput().
				Title("Memo").
				Value(&m.fields.memo),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateAdding
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) enterDeleteMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]
	m.fields.confirm = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %s on %s?", tx.Category, FormatSigned(tx.Type, tx.Amount), FormatDate(tx.Date))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateDeleting
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == txStateDeleting {
		if !m.fields.confirm {
			m.state = txStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd(m.txs[m.table.Cursor()].ID)
	}

	return m, m.addCmd()
}

func (m TransactionsModel) addCmd() tea.Cmd {
	uid := m.UserID

	f := *m.fields

	amount, _ := onboarding.ParseAmount(f.amount)
	date, _ := time.Parse(time.DateOnly, strings.TrimSpace(f.date))

	draft := ledger.Draft{
		Type:     f.typ,
		Amount:   amount,
		Category: strings.TrimSpace(f.category),
		Date:     date,
		Memo:     strings.TrimSpace(f.memo),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.ledger.AddTransaction(ctx, uid, draft)
		if err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: fmt.Sprintf("Added %s %s.", tx.Category, FormatSigned(tx.Type, tx.Amount))}
	}
}

func (m TransactionsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	uid := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledger.DeleteTransaction(ctx, uid, id); err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Transaction deleted."}
	}
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	uid, r := m.UserID, m.dateRange

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.ledger.ListTransactions(ctx, uid, r)
		return loadTxsMsg{txs: txs, err: err}
	}
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, len(m.txs))
	for i, tx := range m.txs {
		memo := ""
		if tx.Memo != nil {
			memo = *tx.Memo
		}

		rows[i] = table.Row{FormatDate(tx.Date), tx.Category, FormatSigned(tx.Type, tx.Amount), memo}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return padded.Render(m.timeframePicker.View())
	case txStateAdding, txStateDeleting:
		return padded.Render(m.form.View())
	}

	header := titleStyle.Render(fmt.Sprintf("Transactions: %s", m.label))

	status := faintStyle.Render(fmt.Sprintf("%d transactions", len(m.txs)))

	switch {
	case m.loading:
		status = "Loading..."
	case m.err != nil:
		status = FormatError(m.err)
	case m.status != "":
		status = successStyle.Render(m.status)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.table.View(),
		"",
		status,
	))
}
