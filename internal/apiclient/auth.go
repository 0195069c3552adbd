package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/placementcell/portal/internal/models"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// loginPath returns the backend login endpoint for a role
func loginPath(role models.Role) string {
	if role == models.RoleAdmin {
		return "/api/auth/admin/login"
	}
	return "/api/auth/login"
}

// Login authenticates against the backend and populates the session.
// A 401 here means bad credentials, so it does not expire anything.
func (c *Client) Login(ctx context.Context, role models.Role, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, loginPath(role), RequestOptions{
		Method: http.MethodPost,
		Body:   LoginRequest{Email: email, Password: password},
	}, &resp, false)
	if err != nil {
		return nil, err
	}

	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("login response is missing token or user")
	}
	if resp.User.Role == "" {
		resp.User.Role = role
	}

	if c.session != nil {
		if err := c.session.Login(ctx, resp.Token, resp.User); err != nil {
			return nil, err
		}
	}

	return &resp, nil
}

// Logout clears the local session; the backend holds no server-side state
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	return c.session.Logout(ctx)
}

// Me returns the currently authenticated user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.Do(ctx, "/api/auth/me", RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}
