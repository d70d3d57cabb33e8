package session

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	"github.com/noah-isme/smart-attendance-cli/internal/store"
	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

// State is the authentication state of the process.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Authenticator exchanges credentials for a token. Implemented by api.Client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Token, error)
}

// TokenSink mirrors the live token into the request dispatcher.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}

// Context owns the access token and mediates between the credential store, the
// dispatcher and the frontend. It is the only component allowed to mutate the
// token; the dispatcher and the store hold mirrors.
type Context struct {
	store     store.CredentialStore
	auth      Authenticator
	sink      TokenSink
	validator *validator.Validate
	logger    *zap.Logger

	mu    sync.RWMutex
	state State
	token string
}

// New returns a context in the Initializing state. Nothing should render until
// Initialize has resolved, so the frontend cannot flash the wrong screen.
func New(credStore store.CredentialStore, auth Authenticator, sink TokenSink, validate *validator.Validate, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &Context{
		store:     credStore,
		auth:      auth,
		sink:      sink,
		validator: validate,
		logger:    logger,
		state:     StateInitializing,
	}
}

// Initialize reads the persisted token exactly once at process start. A read
// failure is indistinguishable from an absent token: both land in
// Unauthenticated and require sign-in.
func (c *Context) Initialize(ctx context.Context) State {
	token, err := c.store.Get(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("credential store read failed, treating as signed out", zap.Error(err))
		}
		c.state = StateUnauthenticated
		return c.state
	}

	c.token = token
	c.sink.SetToken(token)
	c.state = StateAuthenticated
	return c.state
}

// SignIn authenticates and persists the returned token. On failure the state
// stays Unauthenticated and the error is surfaced unchanged; nothing retries.
// Concurrent sign-ins are not coalesced: the last store write wins.
func (c *Context) SignIn(ctx context.Context, email, password string) error {
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, 0, "invalid login payload")
	}

	token, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := c.store.Set(ctx, token.AccessToken); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "persist access token")
	}

	c.mu.Lock()
	c.token = token.AccessToken
	c.sink.SetToken(token.AccessToken)
	c.state = StateAuthenticated
	c.mu.Unlock()

	c.logger.Info("signed in", zap.String("email", email))
	return nil
}

// SignOut clears the persisted and in-memory token and de-configures the
// dispatcher. Safe to call when no token is set.
func (c *Context) SignOut(ctx context.Context) error {
	if err := c.store.Remove(ctx); err != nil {
		c.logger.Warn("credential store remove failed", zap.Error(err))
	}

	c.mu.Lock()
	c.token = ""
	c.sink.ClearToken()
	c.state = StateUnauthenticated
	c.mu.Unlock()

	return nil
}

// HandleUnauthorized reacts to an authentication-rejection response on any
// authenticated call by forcing a sign-out. Wired as the dispatcher's 401 hook.
func (c *Context) HandleUnauthorized() {
	c.logger.Warn("token rejected by server, signing out")
	_ = c.SignOut(context.Background())
}

// State returns the current authentication state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Token returns the live access token, empty when signed out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
