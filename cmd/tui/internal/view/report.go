package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/peraccount/internal/report"
)

type Reports interface {
	Month(ctx context.Context, userID string, year int, month time.Month) (*report.Report, error)
}

type reportState int

const (
	reportStateViewing reportState = iota
	reportStatePath
	reportStateExporting
)

type reportMsg struct {
	year   int
	month  time.Month
	report *report.Report
	err    error
}

type exportResultMsg struct {
	path string
	err  error
}

type exportFields struct {
	dir string
}

// ReportModel shows one month at a time and writes it out as CSV.
type ReportModel struct {
	CommonModel
	reports Reports

	state   reportState
	year    int
	month   time.Month
	report  *report.Report
	loading bool
	err     error
	status  string

	form    *huh.Form
	fields  *exportFields
	spinner spinner.Model
}

func NewReportModel(userID string, reports Reports, now time.Time) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ReportModel{
		CommonModel: CommonModel{UserID: userID},
		reports:     reports,
		year:        now.Year(),
		month:       now.Month(),
		loading:     true,
		fields:      &exportFields{dir: "./exports"},
		spinner:     s,
	}
}

func (m ReportModel) Title() string { return "Monthly Report" }

func (m ReportModel) ShortHelp() string {
	if m.state == reportStateViewing {
		return "Esc: back | ←/→: month | e: export CSV"
	}

	return "Esc: cancel | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportModel) loadCmd() tea.Cmd {
	uid, year, month := m.UserID, m.year, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.reports.Month(ctx, uid, year, month)
		return reportMsg{year: year, month: month, report: r, err: err}
	}
}

func (m ReportModel) shift(months int) (tea.Model, tea.Cmd) {
	t := time.Date(m.year, m.month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	m.year, m.month = t.Year(), t.Month()
	m.loading = true
	m.status = ""

	return m, m.loadCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		// A slower response for a month we already left.
		if msg.year != m.year || msg.month != m.month {
			return m, nil
		}

		m.loading = false
		m.report, m.err = msg.report, msg.err

		return m, nil

	case exportResultMsg:
		m.state = reportStateViewing
		m.err = msg.err

		if msg.err == nil {
			m.status = "Saved " + msg.path
		}

		return m, nil
	}

	switch m.state {
	case reportStateViewing:
		return m.updateViewing(msg)
	case reportStatePath:
		return m.updatePath(msg)
	case reportStateExporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ReportModel) updateViewing(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		return m.shift(-1)
	case "right", "l":
		return m.shift(1)
	case "e":
		if m.report == nil {
			return m, nil
		}

		m.form = m.buildPathForm()
		m.state = reportStatePath

		return m, m.form.Init()
	}

	return m, nil
}

func (m ReportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.fields.dir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ReportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reportStateViewing
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, exportCmd(m.fields.dir, m.year, m.month, m.report))
}

func exportCmd(dir string, year int, month time.Month, r *report.Report) tea.Cmd {
	return func() tea.Msg {
		path, err := WriteReportFile(dir, year, month, r)
		return exportResultMsg{path: path, err: err}
	}
}

// WriteReportFile writes the month's transactions as CSV under dir and
// returns the file path.
func WriteReportFile(dir string, year int, month time.Month, r *report.Report) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, report.Filename(year, month))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := report.WriteCSV(f, r.Transactions); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}

	return path, nil
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStatePath:
		return padded.Render(m.form.View())
	case reportStateExporting:
		return padded.Render(fmt.Sprintf("%s Exporting %d-%02d...", m.spinner.View(), m.year, m.month))
	}

	var body string

	switch {
	case m.loading:
		body = "Loading..."
	case m.err != nil && m.report == nil:
		body = FormatError(m.err)
	default:
		body = report.Body(m.report)
	}

	status := ""

	switch {
	case m.err != nil && m.report != nil:
		status = FormatError(m.err)
	case m.status != "":
		status = successStyle.Render(m.status)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left, body, "", status))
}
