package chatapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// registerResponse tolerates both id spellings the backend has shipped.
type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	ID      string `json:"id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and returns the new user's id. A duplicate
// email yields ConflictError with the backend's message verbatim.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &ValidationError{Detail: "email is required"}
	}
	if password == "" {
		return "", &ValidationError{Detail: "password is required"}
	}

	var resp registerResponse
	err := c.do(ctx, http.MethodPost, "/auth/register/", registerRequest{
		Email:    email,
		Password: password,
		FullName: strings.TrimSpace(fullName),
	}, &resp, false)
	if err != nil {
		// The backend answers 400 for duplicate emails; surface it as a
		// conflict so callers can tell it apart from other bad requests.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return "", &ConflictError{Detail: apiErr.Detail}
		}
		return "", err
	}
	if resp.UserID != "" {
		return resp.UserID, nil
	}
	return resp.ID, nil
}

// Login exchanges credentials for a bearer token. The token is stored on the
// client for subsequent authenticated calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &ValidationError{Detail: "email and password are required"}
	}

	var tok Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &tok, false); err != nil {
		return nil, err
	}
	c.SetToken(tok.AccessToken)
	return &tok, nil
}

// Refresh exchanges the current token for a fresh one and installs it.
func (c *Client) Refresh(ctx context.Context) (*Token, error) {
	var tok Token
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &tok, true); err != nil {
		return nil, err
	}
	c.SetToken(tok.AccessToken)
	return &tok, nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}
