package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// LoginResult is the credential issued by the API for an administrator
type LoginResult struct {
	Token string
	User  map[string]any
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	Token       string         `json:"token"`
	User        map[string]any `json:"user"`
}

// Login exchanges username and password for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]any{"username": username, "password": password}
	body, err := c.do(ctx, http.MethodPost, "/api/login", payload, false)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, errors.New("login response did not include a token")
	}
	if resp.User == nil {
		resp.User = map[string]any{"username": username}
	}
	return &LoginResult{Token: token, User: resp.User}, nil
}
