// Package session decides which of the auth, onboarding and main screens a
// client shows.
//
// The Coordinator keeps one authoritative onboarding flag per identity.
// The flag changes in two ways only. Persisting the last onboarding step
// sets it. Reconciliation adopts the remote record when that record says
// onboarding is already complete. Signing out clears it.
//
// All mutation goes through Handle, which must be called from a single
// goroutine. Blocking work is returned as a Cmd; the caller runs it elsewhere
// and feeds the resulting Event back into Handle. This is the same contract
// as a bubbletea Update loop, and Run provides it for headless use.
package session

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
)

type State int32

const (
	StateUnauthenticated State = iota
	StateOnboarding
	StateActive
)

func (s State) String() string {
	switch s {
	case StateOnboarding:
		return "authenticated_onboarding"
	case StateActive:
		return "authenticated_active"
	}

	return "unauthenticated"
}

type Screen int

const (
	ScreenAuth Screen = iota
	ScreenOnboarding
	ScreenMain
)

func (s Screen) String() string {
	switch s {
	case ScreenOnboarding:
		return "onboarding"
	case ScreenMain:
		return "main"
	}

	return "auth"
}

// Event is anything Handle understands. Unknown events are ignored.
type Event any

// Cmd is follow-up work produced by Handle. It runs off the loop and returns
// the Event to feed back, or nil.
type Cmd func(ctx context.Context) Event

// IdentityChanged reports a sign-in, sign-up or, with an empty UID, a sign-out.
type IdentityChanged struct {
	UID string
}

// StepSubmitted asks to persist the onboarding step currently shown.
type StepSubmitted struct {
	Step onboarding.Step
}

// StepBack returns to the previous onboarding step without persisting.
type StepBack struct{}

// StepPersisted completes a StepSubmitted.
type StepPersisted struct {
	UID  string
	Step int
	Err  error
}

// RemoteFlagFetched completes a reconciliation read.
type RemoteFlagFetched struct {
	UID       string
	Completed bool
	Err       error
}

type Persister interface {
	Persist(ctx context.Context, userID string, step onboarding.Step) error
}

// RemoteFlag reads the authoritative onboarding flag.
type RemoteFlag interface {
	OnboardingCompleted(ctx context.Context, userID string) (bool, error)
}

type Coordinator struct {
	steps  Persister
	remote RemoteFlag
	prefs  Preferences
	log    *slog.Logger

	// restored is what the previous run left behind. It is consulted by the
	// first sign-in only.
	restored Flags

	uid       string
	completed bool
	step      int
	busy      bool
	lastErr   error

	state atomic.Int32
}

// New starts signed out with the onboarding flag unset. The flags saved by the
// previous run are kept aside until the first sign-in. A nil prefs keeps
// nothing between runs.
func New(steps Persister, remote RemoteFlag, prefs Preferences, logger *slog.Logger) *Coordinator {
	if prefs == nil {
		prefs = NopPreferences{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		steps:  steps,
		remote: remote,
		prefs:  prefs,
		log:    logger,
		step:   1,
	}

	flags, err := prefs.Load()
	if err != nil {
		logger.Warn("failed to load preferences", "error", err)
	}

	c.restored = flags
	c.publish()

	return c
}

// CurrentScreen is safe to call from any goroutine and never blocks.
func (c *Coordinator) CurrentScreen() Screen {
	switch c.State() {
	case StateOnboarding:
		return ScreenOnboarding
	case StateActive:
		return ScreenMain
	}

	return ScreenAuth
}

// State is safe to call from any goroutine.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// The accessors below must be called from the goroutine that calls Handle.

func (c *Coordinator) UserID() string { return c.uid }

// Step is the 1-based onboarding step being shown.
func (c *Coordinator) Step() int { return c.step }

// Busy reports whether a step is being persisted.
func (c *Coordinator) Busy() bool { return c.busy }

// LastError is the failure of the most recent step submission, if any.
func (c *Coordinator) LastError() error { return c.lastErr }

func (c *Coordinator) OnboardingCompleted() bool { return c.completed }

// Handle applies ev and returns follow-up work, or nil.
func (c *Coordinator) Handle(ev Event) Cmd {
	switch e := ev.(type) {
	case IdentityChanged:
		return c.identityChanged(e)
	case StepSubmitted:
		return c.stepSubmitted(e)
	case StepBack:
		if c.State() == StateOnboarding && !c.busy && c.step > 1 {
			c.step--
			c.lastErr = nil
		}
	case StepPersisted:
		c.stepPersisted(e)
	case RemoteFlagFetched:
		c.remoteFlagFetched(e)
	}

	return nil
}

func (c *Coordinator) identityChanged(e IdentityChanged) Cmd {
	if e.UID == c.uid {
		return nil
	}

	if e.UID == "" {
		c.log.Info("signed out", "user_id", c.uid)
		c.uid = ""
		c.completed = false
		c.restored = Flags{}
		c.resetOnboarding()
		c.save()
		c.publish()

		return nil
	}

	// The flag belongs to whoever held it last; anyone else starts over.
	c.completed = c.restored.completedFor(e.UID)
	c.restored = Flags{}

	c.uid = e.UID
	c.resetOnboarding()
	c.save()
	c.publish()

	c.log.Info("signed in", "user_id", c.uid, "state", c.State())

	if c.completed {
		return nil
	}

	return c.fetchRemote(c.uid)
}

func (c *Coordinator) resetOnboarding() {
	c.step = 1
	c.busy = false
	c.lastErr = nil
}

func (c *Coordinator) fetchRemote(uid string) Cmd {
	if c.remote == nil {
		return nil
	}

	return func(ctx context.Context) Event {
		completed, err := c.remote.OnboardingCompleted(ctx, uid)
		return RemoteFlagFetched{UID: uid, Completed: completed, Err: err}
	}
}

func (c *Coordinator) stepSubmitted(e StepSubmitted) Cmd {
	if c.State() != StateOnboarding || c.busy || e.Step == nil {
		return nil
	}

	if e.Step.Number() != c.step {
		c.log.Debug("ignoring out of order step", "submitted", e.Step.Number(), "current", c.step)
		return nil
	}

	c.busy = true
	c.lastErr = nil

	uid, step := c.uid, e.Step

	return func(ctx context.Context) Event {
		err := c.steps.Persist(ctx, uid, step)
		return StepPersisted{UID: uid, Step: step.Number(), Err: err}
	}
}

func (c *Coordinator) stepPersisted(e StepPersisted) {
	if e.UID != c.uid || !c.busy || e.Step != c.step {
		c.log.Debug("discarding stale step result", "user_id", e.UID, "step", e.Step)
		return
	}

	c.busy = false

	if e.Err != nil {
		c.lastErr = e.Err

		if apperr.IsValidation(e.Err) {
			c.log.Debug("onboarding step rejected", "step", e.Step, "error", e.Err)
		} else {
			c.log.Error("failed to persist onboarding step", "user_id", c.uid, "step", e.Step, "error", e.Err)
		}

		return
	}

	if e.Step < onboarding.Steps {
		c.step++
		return
	}

	c.completed = true
	c.save()
	c.publish()
	c.log.Info("onboarding completed", "user_id", c.uid)
}

func (c *Coordinator) remoteFlagFetched(e RemoteFlagFetched) {
	if e.UID != c.uid {
		c.log.Debug("discarding stale reconciliation", "user_id", e.UID)
		return
	}

	if e.Err != nil {
		c.log.Warn("failed to reconcile onboarding flag", "user_id", e.UID, "error", e.Err)
		return
	}

	// Only ever confirm forward.
	if !e.Completed || c.completed {
		return
	}

	c.completed = true
	c.resetOnboarding()
	c.save()
	c.publish()
	c.log.Info("adopted remote onboarding flag", "user_id", c.uid)
}

func (c *Coordinator) publish() {
	s := StateUnauthenticated

	switch {
	case c.uid != "" && c.completed:
		s = StateActive
	case c.uid != "":
		s = StateOnboarding
	}

	c.state.Store(int32(s))
}

func (c *Coordinator) save() {
	flags := Flags{LoggedIn: c.uid != "", OnboardingCompleted: c.completed, UserID: c.uid}
	if err := c.prefs.Save(flags); err != nil {
		c.log.Warn("failed to save preferences", "error", err)
	}
}
