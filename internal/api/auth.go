package api

import (
	"context"

	"github.com/tmwangi/kitabu/internal/model"
)

// AuthAPI is the remote auth gateway
type AuthAPI struct {
	client *Client
}

// NewAuthAPI creates the auth gateway on a shared client
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Login exchanges credentials for a token and profile
func (a *AuthAPI) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var res model.AuthResult
	if err := a.client.post(ctx, "/login", creds, &res); err != nil {
		return model.AuthResult{}, err
	}
	return res, nil
}

// Register creates an account
func (a *AuthAPI) Register(ctx context.Context, payload model.RegisterPayload) (model.RegisterResult, error) {
	var res model.RegisterResult
	if err := a.client.post(ctx, "/register", payload, &res); err != nil {
		return model.RegisterResult{}, err
	}
	return res, nil
}

// Logout invalidates the server-side session
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.post(ctx, "/auth/logout", nil, nil)
}

// GetProfile resolves the current token to a profile
func (a *AuthAPI) GetProfile(ctx context.Context) (model.User, error) {
	var user model.User
	if err := a.client.get(ctx, "/auth/me", &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
