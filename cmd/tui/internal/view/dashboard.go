package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

type DashboardSource interface {
	Dashboard(ctx context.Context, userID string, now time.Time) (*summary.Dashboard, error)
}

type dashboardMsg struct {
	dashboard *summary.Dashboard
	err       error
}

type DashboardModel struct {
	CommonModel
	source DashboardSource

	dashboard *summary.Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(userID string, source DashboardSource) DashboardModel {
	return DashboardModel{CommonModel: CommonModel{UserID: userID}, source: source, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) loadCmd() tea.Cmd {
	uid := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.source.Dashboard(ctx, uid, time.Now())
		return dashboardMsg{dashboard: d, err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.dashboard, m.err = msg.dashboard, msg.err

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	switch {
	case m.loading:
		return padded.Render("Loading...")
	case m.err != nil:
		return padded.Render(FormatError(m.err))
	}

	d := m.dashboard
	month := d.Month

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render("Total assets  "+FormatAmount(d.TotalAssets)))

	if d.Snapshot != nil {
		fmt.Fprintf(&b, "  Cash         %s\n", FormatAmount(d.Snapshot.Cash))
		fmt.Fprintf(&b, "  Investments  %s\n", FormatAmount(d.Snapshot.Investments))
		fmt.Fprintf(&b, "  Savings      %s\n", FormatAmount(d.Snapshot.Savings))
		fmt.Fprintf(&b, "  %s\n", faintStyle.Render("Updated "+FormatDate(d.Snapshot.LastUpdated)))
	} else {
		b.WriteString(faintStyle.Render("  No asset snapshot yet.") + "\n")
	}

	fmt.Fprintf(&b, "\n%d-%02d\n\n", month.Year, month.Month)
	fmt.Fprintf(&b, "  Income       %s\n", FormatAmount(month.TotalIncome))
	fmt.Fprintf(&b, "  Expense      %s\n", FormatAmount(month.TotalExpense))
	fmt.Fprintf(&b, "  Saving       %s\n", FormatAmount(month.TotalSavingInvestment))
	fmt.Fprintf(&b, "  Net          %s\n", FormatAmount(month.NetBalance))

	if len(month.ExpenseByCategory) > 0 {
		b.WriteString("\nTop expenses\n\n")

		for i, c := range month.ExpenseByCategory {
			if i == 5 {
				break
			}

			fmt.Fprintf(&b, "  %-12s %s\n", c.Category, FormatAmount(c.Amount))
		}
	}

	return padded.Render(b.String())
}
