package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func loginServer(t *testing.T, wantUser, wantPass string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		if req.Username != wantUser || req.Password != wantPass {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(loginResponse{
			Token: "tok-1",
			User:  User{ID: "u-1", Name: wantUser},
		})
	}))
}

func TestOnUserChangedFiresAtRegistration(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", Credentials{})

	var calls []*User
	cancel := c.OnUserChanged(func(u *User) { calls = append(calls, u) })
	defer cancel()

	if len(calls) != 1 {
		t.Fatalf("expected 1 immediate callback, got %d", len(calls))
	}
	if calls[0] != nil {
		t.Fatalf("expected signed-out state, got %+v", calls[0])
	}
}

func TestSignInNotifiesAndCachesToken(t *testing.T) {
	srv := loginServer(t, "ada", "secret")
	defer srv.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	c := NewClient(srv.URL, tokenPath, Credentials{Username: "ada", Password: "secret"})

	var last *User
	cancel := c.OnUserChanged(func(u *User) { last = u })
	defer cancel()

	if err := c.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if last == nil || last.ID != "u-1" {
		t.Fatalf("expected user notification, got %+v", last)
	}
	if tok, _ := c.Token(); tok != "tok-1" {
		t.Fatalf("Token() = %q", tok)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		t.Fatalf("token cache not written: %v", err)
	}

	// A fresh client simulating a restarted process resumes the session.
	c2 := NewClient(srv.URL, tokenPath, Credentials{})
	if u := c2.Current(); u == nil || u.ID != "u-1" {
		t.Fatalf("restored user = %+v", u)
	}
}

func TestSignInRejectedCredentials(t *testing.T) {
	srv := loginServer(t, "ada", "secret")
	defer srv.Close()

	c := NewClient(srv.URL, "", Credentials{Username: "ada", Password: "wrong"})
	if err := c.SignIn(context.Background()); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if c.Current() != nil {
		t.Fatalf("expected no user after failed sign-in")
	}
}

func TestSignOutClearsSessionAndCache(t *testing.T) {
	srv := loginServer(t, "ada", "secret")
	defer srv.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	c := NewClient(srv.URL, tokenPath, Credentials{Username: "ada", Password: "secret"})
	if err := c.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var last *User = &User{ID: "sentinel"}
	cancel := c.OnUserChanged(func(u *User) { last = u })
	defer cancel()

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if last != nil {
		t.Fatalf("expected signed-out notification, got %+v", last)
	}
	if _, err := os.Stat(tokenPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("token cache should be removed, stat err = %v", err)
	}
}

func TestCancelStopsNotifications(t *testing.T) {
	srv := loginServer(t, "ada", "secret")
	defer srv.Close()

	c := NewClient(srv.URL, "", Credentials{Username: "ada", Password: "secret"})
	count := 0
	cancel := c.OnUserChanged(func(*User) { count++ })
	cancel()

	if err := c.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the registration callback, got %d", count)
	}
}
