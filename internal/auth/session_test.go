package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shotcraft/internal/api"
)

// fakeBackend scripts the three auth endpoints and counts calls.
type fakeBackend struct {
	meUser  *api.User
	meErr   error
	meCalls int

	tokenResp  *api.TokenResponse
	tokenErr   error
	tokenCalls int

	regUser  *api.User
	regErr   error
	regCalls int
}

func (f *fakeBackend) Me(context.Context) (*api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeBackend) Token(context.Context, string, string) (*api.TokenResponse, error) {
	f.tokenCalls++
	return f.tokenResp, f.tokenErr
}

func (f *fakeBackend) Register(context.Context, string, string, string) (*api.User, error) {
	f.regCalls++
	return f.regUser, f.regErr
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "access.token"))
}

// makeJWT builds an unsigned JWT with the given expiry, enough for the
// client-side expiry pre-check which never verifies signatures.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"alice","exp":%d}`, exp.Unix())))
	return header + "." + claims + "."
}

func TestSessionInitWithoutTokenGoesAnonymous(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	session := NewSession(newTestStore(t), backend)
	require.Equal(t, StateUnknown, session.State())

	session.Init(context.Background())

	require.Equal(t, StateAnonymous, session.State())
	require.Nil(t, session.User())
	require.Empty(t, session.LastError())
	require.Zero(t, backend.meCalls)
}

func TestSessionInitWithValidToken(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set("t1"))

	backend := &fakeBackend{meUser: &api.User{Username: "alice"}}
	session := NewSession(store, backend)

	var states []State
	session.Subscribe(func(s State) { states = append(states, s) })

	session.Init(context.Background())

	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, "alice", session.User().Username)
	require.Equal(t, []State{StateLoading, StateAuthenticated}, states)
}

func TestSessionInitWithRejectedTokenClearsIt(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set("t1"))

	backend := &fakeBackend{meErr: &api.Error{Status: http.StatusUnauthorized, Detail: "Token has expired"}}
	session := NewSession(store, backend)
	session.Init(context.Background())

	require.Equal(t, StateAnonymous, session.State())
	require.Equal(t, sessionExpiredMessage, session.LastError())
	_, ok := store.Get()
	require.False(t, ok)
}

func TestSessionInitSkipsRequestForExpiredJWT(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set(makeJWT(t, time.Now().Add(-time.Hour))))

	backend := &fakeBackend{meUser: &api.User{Username: "alice"}}
	session := NewSession(store, backend)
	session.Init(context.Background())

	require.Equal(t, StateAnonymous, session.State())
	require.Equal(t, sessionExpiredMessage, session.LastError())
	require.Zero(t, backend.meCalls)
	_, ok := store.Get()
	require.False(t, ok)
}

func TestSessionInitAcceptsUnexpiredJWT(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set(makeJWT(t, time.Now().Add(time.Hour))))

	backend := &fakeBackend{meUser: &api.User{Username: "alice"}}
	session := NewSession(store, backend)
	session.Init(context.Background())

	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, 1, backend.meCalls)
}

func TestSessionLoginSuccess(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	backend := &fakeBackend{tokenResp: &api.TokenResponse{
		AccessToken: "t1",
		User:        &api.User{Username: "alice"},
	}}
	session := NewSession(store, backend)

	ok := session.Login(context.Background(), "alice", "pw123")
	require.True(t, ok)
	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, "alice", session.User().Username)
	require.Empty(t, session.LastError())

	token, stored := store.Get()
	require.True(t, stored)
	require.Equal(t, "t1", token)
}

func TestSessionLoginFailureKeepsStoredToken(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set("old"))

	backend := &fakeBackend{tokenErr: &api.Error{Status: http.StatusUnauthorized, Detail: "Invalid credentials"}}
	session := NewSession(store, backend)

	ok := session.Login(context.Background(), "alice", "wrong")
	require.False(t, ok)
	require.Equal(t, "Invalid credentials", session.LastError())

	token, stored := store.Get()
	require.True(t, stored)
	require.Equal(t, "old", token)
}

func TestSessionLoginFallbackMessage(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{tokenErr: fmt.Errorf("connection refused")}
	session := NewSession(newTestStore(t), backend)

	require.False(t, session.Login(context.Background(), "alice", "pw"))
	require.Equal(t, "Login failed", session.LastError())
}

func TestSessionLoginWithoutUserInResponse(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{tokenResp: &api.TokenResponse{AccessToken: "t1"}}
	session := NewSession(newTestStore(t), backend)

	require.True(t, session.Login(context.Background(), "alice", "pw"))
	require.Equal(t, "alice", session.User().Username)
}

func TestSessionRegisterMismatchBlocksRequest(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	session := NewSession(newTestStore(t), backend)

	require.False(t, session.Register(context.Background(), "alice", "pw1", "pw2"))
	require.Equal(t, "Passwords do not match", session.LastError())
	require.Zero(t, backend.regCalls)
}

func TestSessionRegisterServerError(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{regErr: &api.Error{Status: http.StatusBadRequest, Detail: "Username already registered"}}
	session := NewSession(newTestStore(t), backend)

	require.False(t, session.Register(context.Background(), "alice", "pw", "pw"))
	require.Equal(t, "Username already registered", session.LastError())
}

func TestSessionRegisterSuccessDoesNotAuthenticate(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{regUser: &api.User{Username: "alice"}}
	session := NewSession(newTestStore(t), backend)

	require.True(t, session.Register(context.Background(), "alice", "pw", "pw"))
	require.Equal(t, StateUnknown, session.State())
	require.Empty(t, session.LastError())
}

func TestSessionLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	backend := &fakeBackend{tokenResp: &api.TokenResponse{
		AccessToken: "t1",
		User:        &api.User{Username: "alice"},
	}}
	session := NewSession(store, backend)
	require.True(t, session.Login(context.Background(), "alice", "pw"))

	session.Logout()

	require.Equal(t, StateAnonymous, session.State())
	require.Nil(t, session.User())
	_, ok := store.Get()
	require.False(t, ok)
}

func TestSessionHandleUnauthorized(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	backend := &fakeBackend{tokenResp: &api.TokenResponse{
		AccessToken: "t1",
		User:        &api.User{Username: "alice"},
	}}
	session := NewSession(store, backend)
	require.True(t, session.Login(context.Background(), "alice", "pw"))

	session.HandleUnauthorized()

	require.Equal(t, StateAnonymous, session.State())
	require.Equal(t, sessionExpiredMessage, session.LastError())
	_, ok := store.Get()
	require.False(t, ok)
}

func TestSessionSubscribeCancelAndTeardown(t *testing.T) {
	t.Parallel()

	session := NewSession(newTestStore(t), &fakeBackend{})

	var first, second int
	cancel := session.Subscribe(func(State) { first++ })
	session.Subscribe(func(State) { second++ })

	session.Logout()
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)

	cancel()
	session.Logout()
	require.Equal(t, 1, first)
	require.Equal(t, 2, second)

	session.Teardown()
	session.Logout()
	require.Equal(t, 2, second)
}
