// Package auth owns credentials and the signed-in identity.
//
// Register and Verify are stateless and back the HTTP API. SignUp, SignIn and
// SignOut additionally move the provider's current identity and notify
// subscribers, which is what the interactive client listens to.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

// MinPasswordLength matches the hosted identity service the app started on.
const MinPasswordLength = 6

// ErrEmailTaken is returned by stores when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

// Profiles is the part of the profile service touched by sign-up and sign-in.
type Profiles interface {
	Create(ctx context.Context, userID, email string) (*profile.Profile, error)
	TouchLogin(ctx context.Context, userID string) error
}

// Event reports an identity change. An empty UID means signed out.
type Event struct {
	UID string
}

type Provider struct {
	repo     Repository
	profiles Profiles
	cost     int

	mu      sync.Mutex
	current string
	subs    map[int]chan Event
	nextSub int
}

func NewProvider(repo Repository, profiles Profiles) *Provider {
	return &Provider{
		repo:     repo,
		profiles: profiles,
		cost:     bcrypt.DefaultCost,
		subs:     make(map[int]chan Event),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return apperr.Auth(apperr.AuthInvalidInput, errors.New("email is malformed"))
	}

	if len(password) < MinPasswordLength {
		return apperr.Auth(apperr.AuthInvalidInput, errors.New("password is too short"))
	}

	return nil
}

// Register creates an account and its profile and returns the new user id.
func (p *Provider) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", apperr.Auth(apperr.AuthInvalidInput, err)
	}

	account := &Account{Email: email, PasswordHash: hash}
	if err := p.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", apperr.Auth(apperr.AuthEmailInUse, err)
		}

		return "", apperr.Auth(apperr.AuthUnavailable, err)
	}

	uid := account.ID.String()

	// Onboarding writes upsert the profile, so a failed create is recoverable.
	if _, err := p.profiles.Create(ctx, uid, email); err != nil {
		slog.Warn("failed to create profile", "user_id", uid, "error", err)
	}

	return uid, nil
}

// Verify checks the credentials and returns the user id.
func (p *Provider) Verify(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", apperr.Auth(apperr.AuthInvalidInput, errors.New("email and password are required"))
	}

	account, err := p.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Auth(apperr.AuthInvalidCredentials, nil)
		}

		return "", apperr.Auth(apperr.AuthUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return "", apperr.Auth(apperr.AuthInvalidCredentials, nil)
	}

	uid := account.ID.String()
	if err := p.profiles.TouchLogin(ctx, uid); err != nil {
		slog.Warn("failed to record login", "user_id", uid, "error", err)
	}

	return uid, nil
}

// SignUp registers and becomes the current identity.
func (p *Provider) SignUp(ctx context.Context, email, password string) (string, error) {
	uid, err := p.Register(ctx, email, password)
	if err != nil {
		return "", err
	}

	p.setCurrent(uid)

	return uid, nil
}

// SignIn verifies and becomes the current identity.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	uid, err := p.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	p.setCurrent(uid)

	return uid, nil
}

// SignOut clears the current identity. Signing out twice is harmless.
func (p *Provider) SignOut() {
	p.setCurrent("")
}

// Current returns the signed-in user id, or "".
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current
}

// Subscribe returns a channel of identity changes, starting with the current
// identity. Each channel buffers one event and keeps only the latest, so a
// slow reader never blocks the provider. cancel closes the channel.
func (p *Provider) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, 1)
	ch <- Event{UID: p.current}

	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()

			delete(p.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

func (p *Provider) setCurrent(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = uid

	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}

		ch <- Event{UID: uid}
	}
}
