package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/miportal/portal/internal/models"
)

// Authenticate exchanges credentials for a bearer token. The username may
// also be the account email.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	const op = "authenticate"

	resp, err := c.request(ctx, "").
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post("/login/access-token")

	var token models.Token
	if err := decode(op, resp, err, classifyLogin, &token); err != nil {
		return "", err
	}

	if len(strings.TrimSpace(token.AccessToken)) == 0 {
		return "", &Error{Op: op, Kind: KindUnexpected, Status: http.StatusOK, Err: errors.New("empty access token")}
	}
	if len(token.TokenType) > 0 && !strings.EqualFold(token.TokenType, models.TokenTypeBearer) {
		return "", &Error{Op: op, Kind: KindUnexpected, Status: http.StatusOK, Err: errors.New("unsupported token type " + token.TokenType)}
	}

	return token.AccessToken, nil
}

// CurrentUser returns the identity bound to token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "current user"

	resp, err := c.request(ctx, token).Get("/users/me")

	var user models.User
	if err := decode(op, resp, err, classifyDefault, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new student account. It does not log in.
func (c *Client) Register(ctx context.Context, request models.RegisterRequest) (*models.User, error) {
	const op = "register"

	resp, err := c.request(ctx, "").
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post("/users/")

	var user models.User
	if err := decode(op, resp, err, classifyRegister, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
