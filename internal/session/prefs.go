package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Flags are the two booleans kept between runs, plus the user they belong to.
// Both are caches; the identity provider and the profile store hold the real
// values. OnboardingCompleted is only trusted for UserID, and only when the
// last run ended signed in.
type Flags struct {
	LoggedIn            bool   `json:"isUserLoggedIn"`
	OnboardingCompleted bool   `json:"hasCompletedOnboarding"`
	UserID              string `json:"userId,omitempty"`
}

// completedFor reports whether f vouches for uid having finished onboarding.
func (f Flags) completedFor(uid string) bool {
	return f.LoggedIn && f.OnboardingCompleted && f.UserID != "" && f.UserID == uid
}

type Preferences interface {
	Load() (Flags, error)
	Save(Flags) error
}

type NopPreferences struct{}

func (NopPreferences) Load() (Flags, error) { return Flags{}, nil }

func (NopPreferences) Save(Flags) error { return nil }

// FilePreferences stores Flags as JSON at Path.
type FilePreferences struct {
	Path string
}

// Load returns zero Flags when the file does not exist yet.
func (p FilePreferences) Load() (Flags, error) {
	var f Flags

	b, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}

		return f, fmt.Errorf("reading preferences: %w", err)
	}

	if err := json.Unmarshal(b, &f); err != nil {
		return Flags{}, fmt.Errorf("decoding preferences: %w", err)
	}

	return f, nil
}

// Save replaces the file atomically.
func (p FilePreferences) Save(f Flags) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing preferences: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing preferences: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.Path); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}

	return nil
}
