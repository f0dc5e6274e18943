package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotLoggedIn is returned when no local identity is stored
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrEmptyUsername is returned by Login for a blank username
	ErrEmptyUsername = errors.New("username is required")

	// ErrInvalidTheme is returned for themes other than light and dark
	ErrInvalidTheme = errors.New("theme must be light or dark")
)

// User is the locally stored identity
type User struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// Theme is the display preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Session manages the local identity and preferences
type Session struct {
	storage *LocalStorage
	now     func() time.Time
}

// NewSession creates a Session over storage
func NewSession(storage *LocalStorage) *Session {
	return &Session{storage: storage, now: time.Now}
}

// Login stores username as the current identity, replacing any previous one
func (s *Session) Login(username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrEmptyUsername
	}

	u := User{Username: username, LoggedInAt: s.now().UTC()}
	if err := s.storage.Save(KeyUser, u); err != nil {
		return User{}, fmt.Errorf("failed to store user: %w", err)
	}
	return u, nil
}

// Logout clears the current identity
func (s *Session) Logout() error {
	return s.storage.Remove(KeyUser)
}

// Current returns the stored identity or ErrNotLoggedIn
func (s *Session) Current() (User, error) {
	var u User
	ok, err := s.storage.Load(KeyUser, &u)
	if err != nil {
		return User{}, err
	}
	if !ok || u.Username == "" {
		return User{}, ErrNotLoggedIn
	}
	return u, nil
}

// Theme returns the stored theme, light when unset
func (s *Session) Theme() (Theme, error) {
	var t Theme
	ok, err := s.storage.Load(KeyTheme, &t)
	if err != nil {
		return "", err
	}
	if !ok || (t != ThemeLight && t != ThemeDark) {
		return ThemeLight, nil
	}
	return t, nil
}

// SetTheme stores the theme preference
func (s *Session) SetTheme(t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}
	return s.storage.Save(KeyTheme, t)
}

// ToggleTheme flips between light and dark and returns the new theme
func (s *Session) ToggleTheme() (Theme, error) {
	current, err := s.Theme()
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}
