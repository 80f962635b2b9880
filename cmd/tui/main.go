package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/peraccount/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/peraccount/internal/auth"
	"github.com/MrJamesThe3rd/peraccount/internal/config"
	"github.com/MrJamesThe3rd/peraccount/internal/importer"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
	"github.com/MrJamesThe3rd/peraccount/internal/projection"
	"github.com/MrJamesThe3rd/peraccount/internal/report"
	"github.com/MrJamesThe3rd/peraccount/internal/session"
	"github.com/MrJamesThe3rd/peraccount/internal/storage"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

type services struct {
	ledger     *ledger.Service
	summary    *summary.Service
	report     *report.Service
	importer   *importer.Service
	projection *projection.Client
}

type model struct {
	services
	provider    *auth.Provider
	coordinator *session.Coordinator
	identities  <-chan auth.Event

	screen session.Screen
	userID string

	auth       view.AuthModel
	onboarding view.OnboardingModel

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu         View = 0
	ViewDashboard    View = 1
	ViewTransactions View = 2
	ViewReport       View = 3
	ViewProjection   View = 4
	ViewImport       View = 5
)

// identityMsg delivers an auth.Event into the Update loop.
type identityMsg struct {
	uid    string
	closed bool
}

// sessionMsg carries the result of a session.Cmd back to the coordinator.
type sessionMsg struct {
	event session.Event
}

func waitForIdentity(ch <-chan auth.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return identityMsg{closed: true}
		}

		return identityMsg{uid: ev.UID}
	}
}

func runSession(cmd session.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		ev := cmd(ctx)
		if ev == nil {
			return nil
		}

		return sessionMsg{event: ev}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForIdentity(m.identities), m.auth.Init())
}

// handle feeds ev to the coordinator and moves to whatever screen it now
// wants shown.
func (m model) handle(ev session.Event) (model, tea.Cmd) {
	cmd := runSession(m.coordinator.Handle(ev))

	m, sync := m.sync()

	return m, tea.Batch(cmd, sync)
}

func (m model) sync() (model, tea.Cmd) {
	screen := m.coordinator.CurrentScreen()
	uid := m.coordinator.UserID()

	if screen == m.screen && uid == m.userID {
		if screen == session.ScreenOnboarding && m.onboarding.Step() != m.coordinator.Step() {
			m.onboarding.SetStep(m.coordinator.Step())
			return m, m.onboarding.Init()
		}

		return m, nil
	}

	m.screen, m.userID = screen, uid

	switch screen {
	case session.ScreenOnboarding:
		m.onboarding = view.NewOnboardingModel()
		m.onboarding.SetStep(m.coordinator.Step())

		return m, m.onboarding.Init()
	case session.ScreenMain:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	m.auth = view.NewAuthModel(m.provider)

	return m, m.auth.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case identityMsg:
		if msg.closed {
			return m, nil
		}

		next, cmd := m.handle(session.IdentityChanged{UID: msg.uid})

		return next, tea.Batch(cmd, waitForIdentity(m.identities))

	case sessionMsg:
		return m.handle(msg.event)

	case view.StepReadyMsg:
		return m.handle(session.StepSubmitted{Step: msg.Step})

	case view.StepBackMsg:
		return m.handle(session.StepBack{})
	}

	switch m.screen {
	case session.ScreenAuth:
		var cmd tea.Cmd
		m.auth, cmd = m.auth.Update(msg)

		return m, cmd

	case session.ScreenOnboarding:
		if m.coordinator.Busy() {
			return m, nil
		}

		var cmd tea.Cmd
		m.onboarding, cmd = m.onboarding.Update(msg)

		return m, cmd
	}

	return m.updateMain(msg)
}

func (m model) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		m.provider.SignOut()
		return m, nil
	case "1":
		m.currentView = ViewDashboard
		m.active = view.NewDashboardModel(m.userID, m.summary)
	case "2":
		m.currentView = ViewTransactions
		m.active = view.NewTransactionsModel(m.userID, m.ledger)
	case "3":
		m.currentView = ViewReport
		m.active = view.NewReportModel(m.userID, m.report, time.Now())
	case "4":
		m.currentView = ViewProjection
		m.active = view.NewProjectionModel(m.userID, m.projection)
	case "5":
		m.currentView = ViewImport
		m.active = view.NewImportModel(m.userID, m.importer)
	default:
		return m, nil
	}

	return m, m.active.Init()
}

func (m model) View() string {
	switch m.screen {
	case session.ScreenAuth:
		return m.auth.View()
	case session.ScreenOnboarding:
		return m.onboarding.View(m.coordinator.Busy(), m.coordinator.LastError())
	}

	if m.currentView == ViewMenu || m.active == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Peraccount\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Monthly Report\n" +
				"4. Asset Projection\n" +
				"5. Import Bank Statement\n\n" +
				"s. Sign Out\n" +
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, m.active.View(), help)
}

func setupLogging(cfg *config.Config) (func(), error) {
	if cfg.App.LogFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}

	f, err := tea.LogToFile(cfg.App.LogFile, "peraccount")
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))

	return func() { f.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	statePath, err := cfg.StatePath()
	if err != nil {
		slog.Error("failed to resolve state path", "error", err)
		os.Exit(1)
	}

	repos, err := storage.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repos.Close()

	var (
		ledgerService     = ledger.NewService(repos.Ledger)
		summaryService    = summary.NewService(ledgerService, repos.Summary, summary.NewCategorySet(cfg.Ledger.SavingCategories...))
		profileService    = profile.NewService(repos.Profile)
		onboardingService = onboarding.NewService(ledgerService, profileService)
		tokens            = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		provider          = auth.NewProvider(repos.Auth, profileService)
	)

	ledgerService.OnChange(summaryService.Invalidate)

	identities, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	coordinator := session.New(onboardingService, profileService, session.FilePreferences{Path: statePath}, slog.Default())

	m := model{
		services: services{
			ledger:     ledgerService,
			summary:    summaryService,
			report:     report.NewService(ledgerService, summaryService),
			importer:   importer.NewService(ledgerService),
			projection: projection.NewClient(cfg.Projection.URL, cfg.Projection.Timeout, tokens),
		},
		provider:    provider,
		coordinator: coordinator,
		identities:  identities,
		screen:      coordinator.CurrentScreen(),
		auth:        view.NewAuthModel(provider),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
