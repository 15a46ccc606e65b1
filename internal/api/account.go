package api

import (
	"context"
	"net/url"
)

// Token exchanges credentials for a bearer token via POST /token.
//
// The backend expects an OAuth2-style form-encoded body.
func (c *Client) Token(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp TokenResponse
	if err := c.postForm(ctx, "/token", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account via POST /register.
func (c *Client) Register(ctx context.Context, username, password, confirmPassword string) (*User, error) {
	payload := map[string]string{
		"username":         username,
		"password":         password,
		"confirm_password": confirmPassword,
	}
	var user User
	if err := c.postJSON(ctx, "/register", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account behind the current bearer token via GET /me.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
