package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableflip.dev/flip/pkg/card"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

func TestListSendsIdentityHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/cards" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Flip-User"); got != "u-1" {
			t.Fatalf("X-Flip-User = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]card.Card{{ID: "1", Front: "Hola", Back: "Hello"}})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, staticToken("tok-1"))
	cards, err := r.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "1" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestListEmptyBodyYieldsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, staticToken("t"))
	cards, err := r.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if cards == nil || len(cards) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", cards)
	}
}

func TestCreateDecodesAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var d card.Draft
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			t.Fatalf("decode draft: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(card.Card{ID: "9", Front: d.Front, Back: d.Back})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, staticToken("t"))
	c, err := r.Create(context.Background(), "u-1", card.Draft{Front: "Bonjour", Back: "Hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID != "9" || c.Front != "Bonjour" || c.Back != "Hello" {
		t.Fatalf("unexpected card: %+v", c)
	}
}

func TestFailuresWrapErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, staticToken("t"))
	if err := r.Delete(context.Background(), "u-1", "1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := r.Create(context.Background(), "u-1", card.Draft{Front: "a", Back: "b"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMissingUserRefusedLocally(t *testing.T) {
	r := NewRemote("http://127.0.0.1:1", staticToken("t"))
	if _, err := r.List(context.Background(), ""); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestUpdateTargetsCardPath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, staticToken("t"))
	if err := r.Update(context.Background(), "u-1", "c-42", card.Draft{Front: "a", Back: "b"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/cards/c-42" {
		t.Fatalf("got %s %s", gotMethod, gotPath)
	}
}
