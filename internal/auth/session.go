package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shotcraft/internal/api"
	"shotcraft/pkg/logger"
)

// State is the authentication lifecycle state.
type State int

const (
	// StateUnknown is the pre-Init state.
	StateUnknown State = iota
	// StateLoading means an identity check is in flight.
	StateLoading
	// StateAnonymous means no valid credential is held.
	StateAnonymous
	// StateAuthenticated means the identity check or login succeeded.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// sessionExpiredMessage is shown whenever a held credential turns out to be
// expired or rejected.
const sessionExpiredMessage = "Session expired. Please log in again."

// Backend is the subset of the API client the auth session depends on.
type Backend interface {
	Me(ctx context.Context) (*api.User, error)
	Token(ctx context.Context, username, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, username, password, confirmPassword string) (*api.User, error)
}

// Session owns the current-user state derived from the token store.
//
// It is a single injected instance with an explicit lifecycle: Init drives the
// Unknown → Loading → {Authenticated, Anonymous} startup transition, Teardown
// detaches subscribers. Login, Register and Logout never return errors to the
// caller; failures are reported through the boolean result and LastError.
type Session struct {
	store   TokenStore
	backend Backend

	mu        sync.Mutex
	state     State
	user      *api.User
	lastError string
	subs      map[int]func(State)
	nextSub   int
}

// NewSession creates an auth session in the Unknown state.
func NewSession(store TokenStore, backend Backend) *Session {
	return &Session{
		store:   store,
		backend: backend,
		state:   StateUnknown,
		subs:    make(map[int]func(State)),
	}
}

// Init performs the startup identity check.
//
// With no stored token the session transitions straight to Anonymous without a
// network call. With a token it transitions to Loading, verifies the identity
// via GET /me, and lands in Authenticated or (clearing the token) Anonymous.
// A token whose JWT expiry has already passed is treated as rejected without
// issuing the doomed request.
func (s *Session) Init(ctx context.Context) {
	token, ok := s.store.Get()
	if !ok {
		logger.Debugf("no stored token, starting anonymous")
		s.transition(StateAnonymous, nil, "")
		return
	}

	s.transition(StateLoading, nil, "")

	if tokenExpired(token) {
		logger.Infof("stored token is expired")
		s.expire()
		return
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		logger.Debugf("identity check failed: %v", err)
		s.expire()
		return
	}
	s.transition(StateAuthenticated, user, "")
}

// Login exchanges credentials for a token. On success the token is persisted,
// the user is set and true is returned. On failure the stored token is left
// untouched, a readable message is exposed via LastError and false is
// returned.
func (s *Session) Login(ctx context.Context, username, password string) bool {
	resp, err := s.backend.Token(ctx, username, password)
	if err != nil {
		s.setError(messageOrFallback(err, "Login failed"))
		return false
	}
	if resp.AccessToken == "" {
		s.setError("Login failed")
		return false
	}

	if err := s.store.Set(resp.AccessToken); err != nil {
		s.setError("Failed to save credentials: " + err.Error())
		return false
	}

	user := resp.User
	if user == nil {
		// Older backends omit the user from the token response.
		user = &api.User{Username: username}
	}
	s.transition(StateAuthenticated, user, "")
	return true
}

// Register creates a new account. A client-side password confirmation mismatch
// blocks the request entirely; server validation errors arrive pre-flattened
// from the API layer. Mirrors Login's non-throwing contract.
func (s *Session) Register(ctx context.Context, username, password, confirmPassword string) bool {
	if password != confirmPassword {
		s.setError("Passwords do not match")
		return false
	}
	if _, err := s.backend.Register(ctx, username, password, confirmPassword); err != nil {
		s.setError(messageOrFallback(err, "Registration failed"))
		return false
	}
	s.clearError()
	return true
}

// Logout clears the token and user unconditionally. No network call is made.
func (s *Session) Logout() {
	if err := s.store.Clear(); err != nil {
		logger.Warnf("failed to clear stored token: %v", err)
	}
	s.transition(StateAnonymous, nil, "")
}

// HandleUnauthorized is the shared 401 policy: clear the credential and drop
// to Anonymous with the session-expired message. Registered once as the API
// client's unauthorized handler.
func (s *Session) HandleUnauthorized() {
	logger.Infof("credential rejected by server")
	s.expire()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated user, or nil.
func (s *Session) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// LastError returns the most recent human-readable failure message.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Subscribe registers a state-change callback and returns its cancel func.
// Callbacks run synchronously after each transition, outside the session lock.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Teardown detaches all subscribers.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.subs = make(map[int]func(State))
	s.mu.Unlock()
}

func (s *Session) expire() {
	if err := s.store.Clear(); err != nil {
		logger.Warnf("failed to clear stored token: %v", err)
	}
	s.transition(StateAnonymous, nil, sessionExpiredMessage)
}

func (s *Session) transition(state State, user *api.User, message string) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.user = user
	s.lastError = message
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if prev != state {
		logger.Debugf("auth state: %s -> %s", prev, state)
	}
	for _, fn := range subs {
		fn(state)
	}
}

func (s *Session) setError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
}

func (s *Session) clearError() {
	s.setError("")
}

// messageOrFallback prefers the server-provided detail over a generic message.
func messageOrFallback(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// tokenExpired reports whether the bearer token is a JWT whose exp claim has
// passed. The signature is not verified; the server stays authoritative, this
// only short-circuits calls that are guaranteed to 401.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) <= 0
}
