package view

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/peraccount/internal/auth"
)

// Authenticator signs the user in. A successful call changes the current
// identity, which the session picks up on its own.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
}

const (
	modeSignIn = "signin"
	modeSignUp = "signup"
)

type authResultMsg struct {
	err error
}

type AuthModel struct {
	auth Authenticator

	form   *huh.Form
	fields *authFields

	busy bool
	err  error
}

type authFields struct {
	mode     string
	email    string
	password string
}

func NewAuthModel(a Authenticator) AuthModel {
	m := AuthModel{auth: a, fields: &authFields{mode: modeSignIn}}
	m.form = m.buildForm()

	return m
}

func (m AuthModel) buildForm() *huh.Form {
	m.fields.password = ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Peraccount").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create account", modeSignUp),
				).
				Value(&m.fields.mode),

			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fields.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter an email address")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fields.password).
				Validate(func(s string) error {
					if len(s) < auth.MinPasswordLength {
						return errors.New("at least 6 characters")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m AuthModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	if result, ok := msg.(authResultMsg); ok {
		m.busy = false
		m.err = result.err

		// On success the session switches screens; the form is rebuilt for
		// the next sign-out.
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.submitCmd(*m.fields)
}

func (m AuthModel) submitCmd(f authFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error
		if f.mode == modeSignUp {
			_, err = m.auth.SignUp(ctx, f.email, f.password)
		} else {
			_, err = m.auth.SignIn(ctx, f.email, f.password)
		}

		return authResultMsg{err: err}
	}
}

func (m AuthModel) View() string {
	status := faintStyle.Render("Enter to continue | Ctrl+C: quit")

	switch {
	case m.busy:
		status = "Signing in..."
	case m.err != nil:
		status = FormatError(m.err)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left, m.form.View(), "", status))
}
