package domain

import (
	"fmt"
	"strings"

	apperrors "hairly/internal/platform/errors"
)

type Screen string

const (
	ScreenLogin    Screen = "login"
	ScreenSignup   Screen = "signup"
	ScreenHome     Screen = "home"
	ScreenAnalysis Screen = "analysis"
	ScreenPlan     Screen = "plan"
	ScreenTracking Screen = "tracking"
)

// AuthenticatedScreens is fully connected: any one reaches any other.
var AuthenticatedScreens = []Screen{ScreenHome, ScreenAnalysis, ScreenPlan, ScreenTracking}

func ParseScreen(raw string) (Screen, error) {
	s := Screen(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case ScreenLogin, ScreenSignup, ScreenHome, ScreenAnalysis, ScreenPlan, ScreenTracking:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown screen %q", apperrors.ErrInvalidInput, raw)
}

func (s Screen) Authenticated() bool {
	for _, candidate := range AuthenticatedScreens {
		if s == candidate {
			return true
		}
	}
	return false
}

// Navigator is the screen state machine. It performs no I/O and has no
// terminal state. Rejected transitions leave it unchanged.
type Navigator struct {
	current       Screen
	authenticated bool
	user          string
}

func NewNavigator() *Navigator {
	return &Navigator{current: ScreenLogin}
}

// NewAuthenticatedNavigator starts at Home; used for headless CLI commands.
func NewAuthenticatedNavigator(user string) *Navigator {
	return &Navigator{current: ScreenHome, authenticated: true, user: user}
}

func (n *Navigator) Current() Screen     { return n.current }
func (n *Navigator) Authenticated() bool { return n.authenticated }
func (n *Navigator) User() string        { return n.user }

// Login accepts any non-empty credentials; authentication is mocked.
func (n *Navigator) Login(email, password string) error {
	if n.current != ScreenLogin {
		return n.reject("login")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidInput)
	}
	n.authenticated = true
	n.user = email
	n.current = ScreenHome
	return nil
}

func (n *Navigator) Signup(name, email, password string) error {
	if n.current != ScreenSignup {
		return n.reject("signup")
	}
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidInput)
	}
	n.authenticated = true
	n.user = email
	n.current = ScreenHome
	return nil
}

func (n *Navigator) ShowSignup() error {
	if n.current != ScreenLogin {
		return n.reject("show signup")
	}
	n.current = ScreenSignup
	return nil
}

func (n *Navigator) ShowLogin() error {
	if n.current != ScreenSignup {
		return n.reject("show login")
	}
	n.current = ScreenLogin
	return nil
}

func (n *Navigator) Go(target Screen) error {
	if !n.authenticated {
		return fmt.Errorf("%w: %s requires login", apperrors.ErrNotAuthenticated, target)
	}
	if !target.Authenticated() {
		return n.reject("go to " + string(target))
	}
	n.current = target
	return nil
}

func (n *Navigator) Logout() error {
	if !n.authenticated {
		return n.reject("logout")
	}
	n.authenticated = false
	n.user = ""
	n.current = ScreenLogin
	return nil
}

func (n *Navigator) reject(edge string) error {
	return fmt.Errorf("%w: %s from %s", apperrors.ErrInvalidTransition, edge, n.current)
}
