package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Credentials are supplied out of band (flags or prompt) before SignIn.
type Credentials struct {
	Username string
	Password string
}

// Client is an HTTP-backed Provider. A successful sign-in caches the
// bearer token on disk so a restarted process resumes the session.
type Client struct {
	base      string
	tokenPath string
	creds     Credentials
	http      *http.Client

	mu      sync.Mutex
	current *User
	token   string

	notifier notifier
}

var _ Provider = (*Client)(nil)

// NewClient builds a Client against the identity endpoints of the card
// service. Any token cached at tokenPath is restored immediately.
func NewClient(baseURL, tokenPath string, creds Credentials) *Client {
	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		tokenPath: tokenPath,
		creds:     creds,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
	c.restore()
	return c
}

// OnUserChanged registers fn, firing it once with the current state.
func (c *Client) OnUserChanged(fn func(*User)) (cancel func()) {
	return c.notifier.subscribe(fn, c.Current())
}

// Current returns the signed-in user, or nil.
func (c *Client) Current() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	u := *c.current
	return &u
}

// Token returns the cached bearer token. Implements store.TokenSource.
func (c *Client) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

// Register creates an account for the configured credentials. It does
// not sign in; call SignIn afterwards.
func (c *Client) Register(ctx context.Context) error {
	if c.creds.Username == "" || c.creds.Password == "" {
		return ErrInvalidCredentials
	}
	body, err := json.Marshal(loginRequest{Username: c.creds.Username, Password: c.creds.Password})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s (%s)", ErrUnavailable, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignIn exchanges the configured credentials for a token and notifies
// subscribers of the new user.
func (c *Client) SignIn(ctx context.Context) error {
	if c.creds.Username == "" {
		return ErrInvalidCredentials
	}

	body, err := json.Marshal(loginRequest{Username: c.creds.Username, Password: c.creds.Password})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s (%s)", ErrUnavailable, resp.Status, strings.TrimSpace(string(msg)))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if lr.Token == "" || lr.User.ID == "" {
		return fmt.Errorf("%w: incomplete login response", ErrUnavailable)
	}

	c.mu.Lock()
	c.token = lr.Token
	u := lr.User
	c.current = &u
	c.mu.Unlock()

	if err := c.persist(lr); err != nil {
		fmt.Fprintf(os.Stderr, "auth: persist token: %v\n", err)
	}

	c.notifier.notify(c.Current())
	return nil
}

// SignOut drops the session and the cached token, then notifies.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.token = ""
	c.current = nil
	c.mu.Unlock()

	if c.tokenPath != "" {
		if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("auth: remove cached token: %w", err)
		}
	}

	c.notifier.notify(nil)
	return nil
}

func (c *Client) persist(lr loginResponse) error {
	if c.tokenPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.tokenPath), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(lr)
	if err != nil {
		return err
	}
	tmp := c.tokenPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.tokenPath)
}

func (c *Client) restore() {
	if c.tokenPath == "" {
		return
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return
	}
	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil || lr.Token == "" || lr.User.ID == "" {
		return
	}
	c.mu.Lock()
	c.token = lr.Token
	u := lr.User
	c.current = &u
	c.mu.Unlock()
}
