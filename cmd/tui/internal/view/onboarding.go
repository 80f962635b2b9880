package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

// StepReadyMsg carries a filled-in onboarding step to the session.
type StepReadyMsg struct {
	Step onboarding.Step
}

// StepBackMsg asks the session to show the previous step.
type StepBackMsg struct{}

// ParseItems reads one "name amount" pair per line. The amount is the last
// field, so names may contain spaces. Blank lines are skipped.
func ParseItems(text string) ([]profile.Item, error) {
	var items []profile.Item

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cut := strings.LastIndexAny(line, " \t:=")
		if cut <= 0 {
			return nil, apperr.Validation(fmt.Sprintf("line %d", i+1), "expected a name followed by an amount")
		}

		amount, err := onboarding.ParseAmount(line[cut+1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		name := strings.TrimRight(strings.TrimSpace(line[:cut]), ":=")
		items = append(items, profile.Item{Name: strings.TrimSpace(name), Amount: amount})
	}

	return items, nil
}

func validateAmount(s string) error {
	_, err := onboarding.ParseAmount(s)
	return err
}

func validateItems(s string) error {
	_, err := ParseItems(s)
	return err
}

type OnboardingModel struct {
	step   int
	form   *huh.Form
	values *onboardingValues
}

// onboardingValues outlives a single step so going back keeps the input.
type onboardingValues struct {
	cash        string
	investments string
	savings     string
	income      string
	expenses    string
}

func NewOnboardingModel() OnboardingModel {
	m := OnboardingModel{values: &onboardingValues{}}
	m.SetStep(1)

	return m
}

// SetStep shows step n with whatever was typed before.
func (m *OnboardingModel) SetStep(n int) {
	m.step = n
	m.form = m.buildForm()
}

func (m OnboardingModel) Step() int { return m.step }

func (m OnboardingModel) buildForm() *huh.Form {
	v := m.values

	var group *huh.Group

	switch m.step {
	case 1:
		group = huh.NewGroup(
			huh.NewInput().Title("Cash balance").Placeholder("0").Value(&v.cash).Validate(validateAmount),
			huh.NewInput().Title("Investments").Placeholder("0").Value(&v.investments).Validate(validateAmount),
			huh.NewInput().Title("Savings").Placeholder("0").Value(&v.savings).Validate(validateAmount),
		).Title("Step 1/3: Current assets")
	case 2:
		group = huh.NewGroup(
			huh.NewText().
				Title("Monthly income").
				Description("One per line, e.g. \"월급 3,000,000\"").
				Value(&v.income).
				Validate(validateItems),
		).Title("Step 2/3: Income")
	default:
		group = huh.NewGroup(
			huh.NewText().
				Title("Monthly fixed expenses").
				Description("One per line, e.g. \"월세 500,000\"").
				Value(&v.expenses).
				Validate(validateItems),
		).Title("Step 3/3: Fixed expenses")
	}

	return huh.NewForm(group).WithWidth(60).WithShowHelp(false)
}

// collect turns the bound fields into the step being shown. The form has
// already validated every field.
func (m OnboardingModel) collect() (onboarding.Step, error) {
	switch m.step {
	case 1:
		cash, err := onboarding.ParseAmount(m.values.cash)
		if err != nil {
			return nil, err
		}

		investments, err := onboarding.ParseAmount(m.values.investments)
		if err != nil {
			return nil, err
		}

		savings, err := onboarding.ParseAmount(m.values.savings)
		if err != nil {
			return nil, err
		}

		return onboarding.AssetsStep{Cash: cash, Investments: investments, Savings: savings}, nil
	case 2:
		items, err := ParseItems(m.values.income)
		if err != nil {
			return nil, err
		}

		return onboarding.IncomeStep{Items: items}, nil
	}

	items, err := ParseItems(m.values.expenses)
	if err != nil {
		return nil, err
	}

	return onboarding.ExpensesStep{Items: items}, nil
}

func (m OnboardingModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update must not be called while the session is persisting a step.
func (m OnboardingModel) Update(msg tea.Msg) (OnboardingModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.step > 1 {
		return m, func() tea.Msg { return StepBackMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	step, err := m.collect()
	if err != nil {
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	// Rebuilt now so a failed save can be retried with the same values.
	m.form = m.buildForm()

	return m, tea.Batch(m.form.Init(), func() tea.Msg { return StepReadyMsg{Step: step} })
}

// View renders the form with the session's progress and last failure.
func (m OnboardingModel) View(busy bool, lastErr error) string {
	status := faintStyle.Render("Enter: next | Esc: previous step | Ctrl+C: quit")

	switch {
	case busy:
		status = "Saving..."
	case lastErr != nil:
		status = FormatError(lastErr)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Welcome to Peraccount"),
		"",
		m.form.View(),
		"",
		status,
	))
}
