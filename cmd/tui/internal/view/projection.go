package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/projection"
)

const projectionTimeout = 30 * time.Second

type Projector interface {
	Request(ctx context.Context, userID string, years int) (*projection.Result, error)
}

type projectionMsg struct {
	userID string
	result *projection.Result
	err    error
}

type projectionFields struct {
	years string
}

type ProjectionModel struct {
	CommonModel
	projector Projector

	form    *huh.Form
	fields  *projectionFields
	spinner spinner.Model

	pending bool
	result  *projection.Result
	err     error
}

func NewProjectionModel(userID string, p Projector) ProjectionModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ProjectionModel{
		CommonModel: CommonModel{UserID: userID},
		projector:   p,
		fields:      &projectionFields{years: "5"},
		spinner:     s,
	}
	m.form = m.buildForm()

	return m
}

func (m ProjectionModel) Title() string     { return "Asset Projection" }
func (m ProjectionModel) ShortHelp() string { return "Esc: back | Enter: request" }

// ParseYears accepts a whole number of years in the range the service allows.
func ParseYears(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < projection.MinYears || n > projection.MaxYears {
		return 0, apperr.Validation("years", fmt.Sprintf("enter a number from %d to %d", projection.MinYears, projection.MaxYears))
	}

	return n, nil
}

func (m ProjectionModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Years ahead").
				Value(&m.fields.years).
				Validate(func(s string) error {
					_, err := ParseYears(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ProjectionModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ProjectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectionMsg:
		// The result belongs to whoever asked for it.
		if msg.userID != m.UserID {
			return m, nil
		}

		m.pending = false
		m.result, m.err = msg.result, msg.err
		m.form = m.buildForm()

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.pending {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	years, err := ParseYears(m.fields.years)
	if err != nil {
		m.err = err
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.pending = true
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.requestCmd(years))
}

func (m ProjectionModel) requestCmd(years int) tea.Cmd {
	uid := m.UserID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), projectionTimeout)
		defer cancel()

		result, err := m.projector.Request(ctx, uid, years)
		return projectionMsg{userID: uid, result: result, err: err}
	}
}

func (m ProjectionModel) View() string {
	if m.pending {
		return padded.Render(fmt.Sprintf("%s Requesting projection...", m.spinner.View()))
	}

	out := m.form.View()

	switch {
	case m.err != nil:
		out += "\n\n" + FormatError(m.err)
	case m.result != nil:
		out += "\n\n" + titleStyle.Render(fmt.Sprintf("In %d years: %s", m.result.Years, FormatAmount(m.result.PredictedAmount)))
	}

	return padded.Render(out)
}
