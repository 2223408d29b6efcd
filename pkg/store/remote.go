package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/flip/pkg/card"
)

// TokenSource supplies the bearer token for the current session.
type TokenSource interface {
	Token() (string, error)
}

// NewRemote returns a Remote that talks to the card service at baseURL.
func NewRemote(baseURL string, tokens TokenSource) Remote {
	return &httpRemote{
		base:   strings.TrimRight(baseURL, "/"),
		tokens: tokens,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type httpRemote struct {
	base   string
	tokens TokenSource
	client *http.Client
}

func (r *httpRemote) List(ctx context.Context, userID string) ([]card.Card, error) {
	var cards []card.Card
	if err := r.do(ctx, userID, http.MethodGet, "/v1/cards", nil, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []card.Card{}
	}
	return cards, nil
}

func (r *httpRemote) Create(ctx context.Context, userID string, draft card.Draft) (*card.Card, error) {
	c := &card.Card{}
	if err := r.do(ctx, userID, http.MethodPost, "/v1/cards", draft, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *httpRemote) Update(ctx context.Context, userID, cardID string, draft card.Draft) error {
	return r.do(ctx, userID, http.MethodPut, "/v1/cards/"+url.PathEscape(cardID), draft, nil)
}

func (r *httpRemote) Delete(ctx context.Context, userID, cardID string) error {
	return r.do(ctx, userID, http.MethodDelete, "/v1/cards/"+url.PathEscape(cardID), nil, nil)
}

func (r *httpRemote) do(ctx context.Context, userID, method, path string, in, out interface{}) error {
	if userID == "" {
		return ErrNoUser
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// The service cross-checks this against the token subject.
	req.Header.Set("X-Flip-User", userID)

	token, err := r.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s (%s)",
			ErrUnavailable, method, path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return nil
}
