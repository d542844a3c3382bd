package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmwangi/kitabu/internal/model"
)

type fakeGateway struct {
	loginFn    func(model.Credentials) (model.AuthResult, error)
	logoutErr  error
	registerFn func(model.RegisterPayload) (model.RegisterResult, error)
	profileFn  func() (model.User, error)

	profileCalls int
	logoutCalls  int
}

func (g *fakeGateway) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	if g.loginFn == nil {
		return model.AuthResult{}, errors.New("login not configured")
	}
	return g.loginFn(creds)
}

func (g *fakeGateway) Logout(ctx context.Context) error {
	g.logoutCalls++
	return g.logoutErr
}

func (g *fakeGateway) Register(ctx context.Context, payload model.RegisterPayload) (model.RegisterResult, error) {
	if g.registerFn == nil {
		return model.RegisterResult{}, errors.New("register not configured")
	}
	return g.registerFn(payload)
}

func (g *fakeGateway) GetProfile(ctx context.Context) (model.User, error) {
	g.profileCalls++
	if g.profileFn == nil {
		return model.User{}, errors.New("no session")
	}
	return g.profileFn()
}

func newTokens(t *testing.T) *FileTokenStore {
	t.Helper()
	return NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestBootstrapWithoutToken(t *testing.T) {
	gw := &fakeGateway{}
	store := New(gw, newTokens(t))

	assert.Equal(t, StateBootstrapping, store.State())

	store.Bootstrap(context.Background())

	assert.Equal(t, StateAnonymous, store.State())
	assert.False(t, store.IsAuthenticated())
	assert.Zero(t, gw.profileCalls, "no token means no profile fetch")
}

func TestBootstrapResolvesPersistedToken(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.Save("tok-123"))

	gw := &fakeGateway{profileFn: func() (model.User, error) {
		return model.User{ID: "u1", Email: "amina@example.com"}, nil
	}}
	store := New(gw, tokens)

	store.Bootstrap(context.Background())

	assert.Equal(t, StateAuthenticated, store.State())
	user, ok := store.User()
	require.True(t, ok)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.Equal(t, 1, gw.profileCalls)
}

func TestBootstrapDiscardsUnusableToken(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.Save("revoked"))

	gw := &fakeGateway{profileFn: func() (model.User, error) {
		return model.User{}, errors.New("invalid token")
	}}
	store := New(gw, tokens)

	store.Bootstrap(context.Background())

	assert.Equal(t, StateAnonymous, store.State())
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, tokens.Token(), "unusable token must not linger")
}

func TestBootstrapIsIdempotent(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.Save("tok-123"))

	gw := &fakeGateway{profileFn: func() (model.User, error) {
		return model.User{ID: "u1"}, nil
	}}
	store := New(gw, tokens)

	store.Bootstrap(context.Background())
	store.Bootstrap(context.Background())
	store.Bootstrap(context.Background())

	assert.Equal(t, 1, gw.profileCalls, "bootstrap must fetch the profile at most once")
}

func TestLoginSuccess(t *testing.T) {
	tokens := newTokens(t)
	gw := &fakeGateway{loginFn: func(creds model.Credentials) (model.AuthResult, error) {
		return model.AuthResult{
			Token: "fresh-token",
			User:  model.User{ID: "u1", Email: creds.Email},
		}, nil
	}}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	user, err := store.Login(context.Background(), model.Credentials{Email: "amina@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "fresh-token", tokens.Token())
}

func TestLoginFailureLeavesAnonymous(t *testing.T) {
	tokens := newTokens(t)
	gw := &fakeGateway{loginFn: func(model.Credentials) (model.AuthResult, error) {
		return model.AuthResult{}, errors.New("invalid credentials")
	}}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	_, err := store.Login(context.Background(), model.Credentials{Email: "x@y.z", Password: "wrong"})

	require.EqualError(t, err, "invalid credentials")
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, StateAnonymous, store.State())
	assert.Empty(t, tokens.Token(), "failed login must not persist a token")
}

func TestLogoutClearsLocallyEvenWhenRemoteFails(t *testing.T) {
	tokens := newTokens(t)
	gw := &fakeGateway{
		loginFn: func(model.Credentials) (model.AuthResult, error) {
			return model.AuthResult{Token: "tok", User: model.User{ID: "u1"}}, nil
		},
		logoutErr: errors.New("network down"),
	}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	_, err := store.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	err = store.Logout(context.Background())

	assert.EqualError(t, err, "network down", "remote failure is surfaced")
	assert.False(t, store.IsAuthenticated(), "local session cleared regardless")
	assert.Equal(t, StateAnonymous, store.State())
	assert.Empty(t, tokens.Token())
	_, ok := store.User()
	assert.False(t, ok)
}

func TestLogoutCallsRemoteOnce(t *testing.T) {
	tokens := newTokens(t)
	gw := &fakeGateway{
		loginFn: func(model.Credentials) (model.AuthResult, error) {
			return model.AuthResult{Token: "tok", User: model.User{ID: "u1"}}, nil
		},
	}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	_, err := store.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, store.Logout(context.Background()))
	assert.Equal(t, 1, gw.logoutCalls)
}

func TestRegisterDoesNotTouchSession(t *testing.T) {
	tokens := newTokens(t)
	gw := &fakeGateway{registerFn: func(p model.RegisterPayload) (model.RegisterResult, error) {
		return model.RegisterResult{Success: true}, nil
	}}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	res, err := store.Register(context.Background(), model.RegisterPayload{
		FirstName: "Amina", LastName: "W", Email: "a@b.c",
		Password: "secret1", ConfirmPassword: "secret1",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, tokens.Token())
}

func TestStoreIsSafeForConcurrentUse(t *testing.T) {
	// The TUI reads the store from its render path while Bootstrap, Login,
	// and Logout run in command goroutines; run under -race
	tokens := newTokens(t)
	require.NoError(t, tokens.Save("tok-123"))

	release := make(chan struct{})
	gw := &fakeGateway{
		profileFn: func() (model.User, error) {
			<-release
			return model.User{ID: "u1", Email: "amina@example.com"}, nil
		},
		loginFn: func(model.Credentials) (model.AuthResult, error) {
			return model.AuthResult{Token: "tok-456", User: model.User{ID: "u1"}}, nil
		},
	}
	store := New(gw, tokens)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Bootstrap(context.Background())
	}()

	// Reads race the in-flight profile fetch
	for i := 0; i < 200; i++ {
		_ = store.State()
		_ = store.IsAuthenticated()
		_, _ = store.User()
		_ = tokens.Token()
	}
	close(release)
	<-done

	require.True(t, store.IsAuthenticated())

	// Same pattern around login and logout
	authDone := make(chan struct{})
	go func() {
		defer close(authDone)
		_, _ = store.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
		_ = store.Logout(context.Background())
	}()
	for i := 0; i < 200; i++ {
		_ = store.State()
		_ = tokens.Token()
	}
	<-authDone

	assert.False(t, store.IsAuthenticated())
}

func TestUserAndTokenStayInLockstep(t *testing.T) {
	// The invariant: a user is present iff a token is persisted
	tokens := newTokens(t)
	gw := &fakeGateway{
		loginFn: func(model.Credentials) (model.AuthResult, error) {
			return model.AuthResult{Token: "tok", User: model.User{ID: "u1"}}, nil
		},
	}
	store := New(gw, tokens)
	store.Bootstrap(context.Background())

	check := func() {
		_, hasUser := store.User()
		assert.Equal(t, hasUser, tokens.Token() != "")
	}

	check()
	_, _ = store.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	check()
	_ = store.Logout(context.Background())
	check()
}
