// Package session holds the administrator credential for the lifetime of a console session
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jifma-project/jifmactl/internal/gateway"
)

// Fixed storage keys; token and profile are always written and cleared together
const (
	TokenKey = "jifma_token"
	UserKey  = "jifma_user"
)

// ErrNotLoggedIn is returned when an operation needs a stored credential
var ErrNotLoggedIn = errors.New("not logged in")

// Store persists the token and user profile
type Store interface {
	// Load returns empty values and no error when nothing is stored
	Load(ctx context.Context) (token string, user map[string]any, err error)
	Save(ctx context.Context, token string, user map[string]any) error
	Clear(ctx context.Context) error
}

// Authenticator exchanges credentials for a token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginResult, error)
}

// Context is the injected session: it serves the bearer token to the gateway and owns
// the login/logout transitions.
type Context struct {
	mu    sync.RWMutex
	store Store
	token string
	user  map[string]any
}

var _ gateway.TokenSource = (*Context)(nil)

// New restores a session from store
func New(ctx context.Context, store Store) (*Context, error) {
	token, user, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	// A token without its profile (or the reverse) is treated as no session
	if token == "" || user == nil {
		token, user = "", nil
	}
	return &Context{store: store, token: token, user: user}, nil
}

// Token implements gateway.TokenSource
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Profile returns a copy of the stored user object, or nil when logged out
func (c *Context) Profile() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	return maps.Clone(c.user)
}

// Authenticated reports whether a credential is held
func (c *Context) Authenticated() bool {
	return c.Token() != ""
}

// Username returns the profile's username or email, if any
func (c *Context) Username() string {
	profile := c.Profile()
	for _, key := range []string{"username", "email"} {
		if v, ok := profile[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Login authenticates and persists token and profile together
func (c *Context) Login(ctx context.Context, auth Authenticator, username, password string) error {
	res, err := auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, res.Token, res.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	c.mu.Lock()
	c.token = res.Token
	c.user = maps.Clone(res.User)
	c.mu.Unlock()
	return nil
}

// Logout clears token and profile together
func (c *Context) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
	return nil
}

// Claims is the informational content of the token. It is decoded without signature
// verification; the API remains the only authority on validity.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the held token's payload
func (c *Context) Claims() (*Claims, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	out := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
