package session

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	"github.com/noah-isme/smart-attendance-cli/internal/store"
)

type memoryStore struct {
	token   string
	hasOne  bool
	getErr  error
	setErr  error
	removes int
}

func (m *memoryStore) Get(ctx context.Context) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	if !m.hasOne {
		return "", store.ErrNotFound
	}
	return m.token, nil
}

func (m *memoryStore) Set(ctx context.Context, token string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.token = token
	m.hasOne = true
	return nil
}

func (m *memoryStore) Remove(ctx context.Context) error {
	m.removes++
	m.token = ""
	m.hasOne = false
	return nil
}

type fakeAuthenticator struct {
	token string
	err   error
	calls int
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (*models.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Token{AccessToken: f.token, TokenType: "bearer"}, nil
}

type sinkRecorder struct {
	token   string
	set     bool
	cleared int
}

func (s *sinkRecorder) SetToken(token string) {
	s.token = token
	s.set = true
}

func (s *sinkRecorder) ClearToken() {
	s.token = ""
	s.set = false
	s.cleared++
}

func newTestContext(st store.CredentialStore, auth Authenticator, sink TokenSink) *Context {
	return New(st, auth, sink, validator.New(), zap.NewNop())
}

func TestContextStartsInitializing(t *testing.T) {
	ctx := newTestContext(&memoryStore{}, &fakeAuthenticator{}, &sinkRecorder{})
	assert.Equal(t, StateInitializing, ctx.State())
}

func TestInitializeWithStoredToken(t *testing.T) {
	sink := &sinkRecorder{}
	ctx := newTestContext(&memoryStore{token: "stored-token", hasOne: true}, &fakeAuthenticator{}, sink)

	state := ctx.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, "stored-token", ctx.Token())
	assert.Equal(t, "stored-token", sink.token)
}

func TestInitializeWithoutToken(t *testing.T) {
	sink := &sinkRecorder{}
	ctx := newTestContext(&memoryStore{}, &fakeAuthenticator{}, sink)

	state := ctx.Initialize(context.Background())

	assert.Equal(t, StateUnauthenticated, state)
	assert.Empty(t, ctx.Token())
	assert.False(t, sink.set)
}

func TestInitializeSwallowsReadFailure(t *testing.T) {
	sink := &sinkRecorder{}
	ctx := newTestContext(&memoryStore{getErr: errors.New("disk gone")}, &fakeAuthenticator{}, sink)

	state := ctx.Initialize(context.Background())

	assert.Equal(t, StateUnauthenticated, state)
	assert.False(t, sink.set)
}

func TestSignInPersistsAndConfigures(t *testing.T) {
	st := &memoryStore{}
	sink := &sinkRecorder{}
	ctx := newTestContext(st, &fakeAuthenticator{token: "fresh-token"}, sink)
	ctx.Initialize(context.Background())

	err := ctx.SignIn(context.Background(), "alice.teacher@example.com", "TeacherPass123")
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, ctx.State())
	assert.Equal(t, "fresh-token", ctx.Token())
	assert.Equal(t, "fresh-token", sink.token)
	assert.Equal(t, "fresh-token", st.token)
}

func TestSignInRoundTripsThroughFreshProcess(t *testing.T) {
	st := &memoryStore{}
	ctx := newTestContext(st, &fakeAuthenticator{token: "persisted"}, &sinkRecorder{})
	ctx.Initialize(context.Background())
	require.NoError(t, ctx.SignIn(context.Background(), "alice.teacher@example.com", "TeacherPass123"))

	// A fresh context over the same store models a process restart.
	sink := &sinkRecorder{}
	restarted := newTestContext(st, &fakeAuthenticator{}, sink)
	state := restarted.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, "persisted", restarted.Token())
	assert.Equal(t, "persisted", sink.token)
}

func TestSignInFailureStaysUnauthenticated(t *testing.T) {
	sink := &sinkRecorder{}
	ctx := newTestContext(&memoryStore{}, &fakeAuthenticator{err: errors.New("invalid email or password")}, sink)
	ctx.Initialize(context.Background())

	err := ctx.SignIn(context.Background(), "alice.teacher@example.com", "wrong")
	require.Error(t, err)

	assert.Equal(t, StateUnauthenticated, ctx.State())
	assert.Empty(t, ctx.Token())
	assert.False(t, sink.set)
}

func TestSignInRejectsMalformedEmail(t *testing.T) {
	auth := &fakeAuthenticator{token: "never"}
	ctx := newTestContext(&memoryStore{}, auth, &sinkRecorder{})
	ctx.Initialize(context.Background())

	err := ctx.SignIn(context.Background(), "not-an-email", "secret")
	require.Error(t, err)
	assert.Zero(t, auth.calls)
}

func TestSignOutIsIdempotent(t *testing.T) {
	st := &memoryStore{token: "tok", hasOne: true}
	sink := &sinkRecorder{}
	ctx := newTestContext(st, &fakeAuthenticator{}, sink)
	ctx.Initialize(context.Background())

	require.NoError(t, ctx.SignOut(context.Background()))
	require.NoError(t, ctx.SignOut(context.Background()))

	assert.Equal(t, StateUnauthenticated, ctx.State())
	assert.Empty(t, ctx.Token())
	assert.False(t, st.hasOne)
	assert.Equal(t, 2, st.removes)
}

func TestHandleUnauthorizedForcesSignOut(t *testing.T) {
	st := &memoryStore{token: "revoked", hasOne: true}
	sink := &sinkRecorder{}
	ctx := newTestContext(st, &fakeAuthenticator{}, sink)
	ctx.Initialize(context.Background())
	require.Equal(t, StateAuthenticated, ctx.State())

	ctx.HandleUnauthorized()

	assert.Equal(t, StateUnauthenticated, ctx.State())
	assert.Empty(t, ctx.Token())
	assert.False(t, st.hasOne)
	assert.Equal(t, 1, sink.cleared)
}
