package session

import (
	"context"
	"sync"

	"github.com/tmwangi/kitabu/internal/logger"
	"github.com/tmwangi/kitabu/internal/model"
)

// State is the store's position in the auth lifecycle
type State int

const (
	// StateBootstrapping means the persisted token has not been resolved
	// yet; treat authentication as unknown and don't branch on it
	StateBootstrapping State = iota
	StateAnonymous
	StateAuthenticated
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAnonymous:
		return "anonymous"
	default:
		return "authenticated"
	}
}

// AuthGateway is the remote auth surface the store drives
type AuthGateway interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, payload model.RegisterPayload) (model.RegisterResult, error)
	GetProfile(ctx context.Context) (model.User, error)
}

// Store is the single source of truth for "who is logged in". It cycles
// between Anonymous and Authenticated for the life of the process and
// keeps one invariant at all times: a user is set iff a token is
// persisted. A token that can't be resolved to a profile collapses to the
// anonymous state. Safe for concurrent use: the TUI reads it from the
// render path while auth calls run in command goroutines. Gateway calls
// happen outside the lock so reads never block on the network.
type Store struct {
	gateway AuthGateway
	tokens  TokenStore

	mu       sync.Mutex
	state    State
	user     *model.User
	resolved bool // Bootstrap has started
}

// New creates a store in the Bootstrapping state. Call Bootstrap before
// trusting IsAuthenticated.
func New(gateway AuthGateway, tokens TokenStore) *Store {
	return &Store{
		gateway: gateway,
		tokens:  tokens,
		state:   StateBootstrapping,
	}
}

// Bootstrap resolves the initial auth state from the persisted token. It
// is idempotent, never returns an error outward, and makes at most one
// profile fetch: no token means anonymous, and any fetch failure discards
// the token and degrades to anonymous. The profile is always re-fetched
// from the server rather than trusted from a local copy, so a revoked
// token can't present a stale login.
func (s *Store) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.resolved {
		s.mu.Unlock()
		return
	}
	s.resolved = true

	if s.tokens.Token() == "" {
		s.state = StateAnonymous
		s.mu.Unlock()
		logger.Debug("Bootstrap: no persisted token")
		return
	}
	s.mu.Unlock()

	user, err := s.gateway.GetProfile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logger.Info("Bootstrap: discarding unusable token", logger.F("error", err))
		_ = s.tokens.Clear()
		s.user = nil
		s.state = StateAnonymous
		return
	}

	s.user = &user
	s.state = StateAuthenticated
	logger.Info("Bootstrap: session restored", logger.F("user", user.Email))
}

// Login authenticates with the backend. On success the returned token is
// persisted and the store becomes Authenticated. On failure the gateway
// error is returned for display and the store stays Anonymous with no
// token persisted.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	res, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An explicit login settles the lifecycle even if Bootstrap never ran
	s.resolved = true

	if err := s.tokens.Save(res.Token); err != nil {
		// Can't keep a user without a persisted token
		_ = s.tokens.Clear()
		s.user = nil
		s.state = StateAnonymous
		return model.User{}, err
	}

	s.user = &res.User
	s.state = StateAuthenticated
	logger.Info("Logged in", logger.F("user", res.User.Email))
	return res.User, nil
}

// Logout clears the local session unconditionally, then reports the
// remote invalidation error if there was one. The store is Anonymous when
// this returns no matter what the network did.
func (s *Store) Logout(ctx context.Context) error {
	err := s.gateway.Logout(ctx)

	s.mu.Lock()
	_ = s.tokens.Clear()
	s.user = nil
	s.state = StateAnonymous
	s.resolved = true
	s.mu.Unlock()

	if err != nil {
		logger.Warn("Remote logout failed, local session cleared anyway", logger.F("error", err))
		return err
	}
	logger.Info("Logged out")
	return nil
}

// Register is a stateless pass-through to the registration endpoint; it
// does not touch the session
func (s *Store) Register(ctx context.Context, payload model.RegisterPayload) (model.RegisterResult, error) {
	return s.gateway.Register(ctx, payload)
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current profile, if authenticated
func (s *Store) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated is true iff a profile is present
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}
