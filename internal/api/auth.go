package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

func (r authResponse) user() models.User {
	if len(r.User) == 0 {
		return models.User{}
	}
	var w wireUser
	if err := json.Unmarshal(r.User, &w); err != nil {
		return models.User{}
	}
	return w.toModel()
}

// Register creates an account. The returned token, if any, is stored.
func (c *Client) Register(ctx context.Context, reg Registration) (models.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", reg, &resp); err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	return resp.user(), nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, creds Credentials) (models.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		logger.Warn("Login response carried no token")
	}
	return resp.user(), nil
}

// Logout ends the session. The local token is cleared even when the
// service call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.tokens.ClearToken(); clearErr != nil {
		logger.Warn("Failed to clear token on logout", "error", clearErr)
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// CurrentUser returns the account the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &body); err != nil {
		return models.User{}, fmt.Errorf("current user: %w", err)
	}
	var w wireUser
	if err := json.Unmarshal(unwrap(body, "user"), &w); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	return w.toModel(), nil
}
