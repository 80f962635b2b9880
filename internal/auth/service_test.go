package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/auth"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

func TestProvider_Register(t *testing.T) {
	type testCase struct {
		name      string
		email     string
		password  string
		setupMock func(r *auth.MockRepository, p *auth.MockProfiles)
		wantKind  apperr.AuthKind
		wantErr   bool
	}

	tests := []testCase{
		{
			name:     "Success",
			email:    " Jane@Example.com ",
			password: "secret1",
			setupMock: func(r *auth.MockRepository, p *auth.MockProfiles) {
				r.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *auth.Account) error {
						assert.Equal(t, "jane@example.com", a.Email)
						assert.NoError(t, bcrypt.CompareHashAndPassword(a.PasswordHash, []byte("secret1")))

						a.ID = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

						return nil
					})
				p.EXPECT().
					Create(gomock.Any(), "7d444840-9dc0-11d1-b245-5ffdce74fad2", "jane@example.com").
					Return(&profile.Profile{}, nil)
			},
		},
		{
			name:     "ProfileFailureStillRegisters",
			email:    "jane@example.com",
			password: "secret1",
			setupMock: func(r *auth.MockRepository, p *auth.MockProfiles) {
				r.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil)
				p.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
		},
		{
			name:     "ShortPassword",
			email:    "jane@example.com",
			password: "12345",
			wantKind: apperr.AuthInvalidInput,
			wantErr:  true,
		},
		{
			name:     "MalformedEmail",
			email:    "not-an-email",
			password: "secret1",
			wantKind: apperr.AuthInvalidInput,
			wantErr:  true,
		},
		{
			name:     "EmailTaken",
			email:    "jane@example.com",
			password: "secret1",
			setupMock: func(r *auth.MockRepository, _ *auth.MockProfiles) {
				r.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(auth.ErrEmailTaken)
			},
			wantKind: apperr.AuthEmailInUse,
			wantErr:  true,
		},
		{
			name:     "StoreDown",
			email:    "jane@example.com",
			password: "secret1",
			setupMock: func(r *auth.MockRepository, _ *auth.MockProfiles) {
				r.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
			},
			wantKind: apperr.AuthUnavailable,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := auth.NewMockRepository(ctrl)
			profiles := auth.NewMockProfiles(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, profiles)
			}

			uid, err := auth.NewProvider(repo, profiles).Register(context.Background(), tt.email, tt.password)

			if tt.wantErr {
				require.Error(t, err)

				kind, ok := apperr.AuthKindOf(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantKind, kind)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, uid)
		})
	}
}

func hashed(t *testing.T, password string) []byte {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return h
}

func TestProvider_SignInAndSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	profiles := auth.NewMockProfiles(ctrl)
	provider := auth.NewProvider(repo, profiles)

	id := uuid.New()
	account := &auth.Account{ID: id, Email: "jane@example.com", PasswordHash: hashed(t, "secret1")}

	events, cancel := provider.Subscribe()
	defer cancel()

	assert.Equal(t, auth.Event{UID: ""}, <-events)

	t.Run("WrongPassword", func(t *testing.T) {
		repo.EXPECT().GetAccountByEmail(gomock.Any(), "jane@example.com").Return(account, nil)

		_, err := provider.SignIn(context.Background(), "jane@example.com", "wrong-password")
		kind, _ := apperr.AuthKindOf(err)
		assert.Equal(t, apperr.AuthInvalidCredentials, kind)
		assert.Empty(t, provider.Current())
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo.EXPECT().GetAccountByEmail(gomock.Any(), "who@example.com").Return(nil, apperr.ErrNotFound)

		_, err := provider.SignIn(context.Background(), "who@example.com", "secret1")
		kind, _ := apperr.AuthKindOf(err)
		assert.Equal(t, apperr.AuthInvalidCredentials, kind)
	})

	t.Run("Success", func(t *testing.T) {
		repo.EXPECT().GetAccountByEmail(gomock.Any(), "jane@example.com").Return(account, nil)
		profiles.EXPECT().TouchLogin(gomock.Any(), id.String()).Return(nil)

		uid, err := provider.SignIn(context.Background(), "Jane@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, id.String(), uid)
		assert.Equal(t, id.String(), provider.Current())
		assert.Equal(t, auth.Event{UID: id.String()}, <-events)
	})

	t.Run("SignOutKeepsLatestOnly", func(t *testing.T) {
		provider.SignOut()
		provider.SignOut()

		assert.Equal(t, auth.Event{UID: ""}, <-events)
		assert.Empty(t, events)
	})

	t.Run("LateSubscriberGetsCurrent", func(t *testing.T) {
		late, cancelLate := provider.Subscribe()
		assert.Equal(t, auth.Event{UID: ""}, <-late)

		cancelLate()
		cancelLate()

		_, open := <-late
		assert.False(t, open)
	})
}

func TestTokens(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	uid, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = auth.NewTokens("other-secret", time.Hour).Parse(token)
	kind, ok := apperr.AuthKindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.AuthInvalidCredentials, kind)

	expired, err := auth.NewTokens("test-secret", -time.Minute).Issue("u1")
	require.NoError(t, err)

	_, err = tokens.Parse(expired)
	assert.Error(t, err)

	_, err = tokens.Parse("")
	assert.Error(t, err)
}
