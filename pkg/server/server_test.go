package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/flip/pkg/card"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	storage, err := OpenStorage(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStorage: %v", err)
	}
	cfg := &Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4,
	}
	s := New(cfg, zerolog.Nop(), storage)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	if out != nil {
		defer func() { _ = resp.Body.Close() }()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func signUp(t *testing.T, base, user, pass string) loginResponse {
	t.Helper()
	resp := postJSON(t, base+"/v1/register", credentialsRequest{Username: user, Password: pass}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %s", resp.Status)
	}
	var lr loginResponse
	resp = postJSON(t, base+"/v1/login", credentialsRequest{Username: user, Password: pass}, &lr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %s", resp.Status)
	}
	if lr.Token == "" || lr.User.ID == "" {
		t.Fatalf("incomplete login response: %+v", lr)
	}
	return lr
}

func doAuthed(t *testing.T, method, url, token, userID string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if userID != "" {
		req.Header.Set("X-Flip-User", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestRegisterLoginAndCardLifecycle(t *testing.T) {
	_, ts := testServer(t)

	lr := signUp(t, ts.URL, "ada", "secret")

	// Create.
	resp := doAuthed(t, http.MethodPost, ts.URL+"/v1/cards", lr.Token, lr.User.ID, card.Draft{Front: "Hola", Back: "Hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %s", resp.Status)
	}
	var created card.Card
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	_ = resp.Body.Close()
	if created.ID == "" || created.Front != "Hola" {
		t.Fatalf("created = %+v", created)
	}

	// List.
	resp = doAuthed(t, http.MethodGet, ts.URL+"/v1/cards", lr.Token, lr.User.ID, nil)
	var cards []card.Card
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	_ = resp.Body.Close()
	if len(cards) != 1 || cards[0].ID != created.ID {
		t.Fatalf("list = %+v", cards)
	}

	// Update.
	resp = doAuthed(t, http.MethodPut, ts.URL+"/v1/cards/"+created.ID, lr.Token, lr.User.ID, card.Draft{Front: "Hola", Back: "Hi"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update: %s", resp.Status)
	}

	// Delete.
	resp = doAuthed(t, http.MethodDelete, ts.URL+"/v1/cards/"+created.ID, lr.Token, lr.User.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %s", resp.Status)
	}
	resp = doAuthed(t, http.MethodDelete, ts.URL+"/v1/cards/"+created.ID, lr.Token, lr.User.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: %s", resp.Status)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, ts := testServer(t)
	signUp(t, ts.URL, "ada", "secret")

	resp := postJSON(t, ts.URL+"/v1/login", credentialsRequest{Username: "ada", Password: "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: %s", resp.Status)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, ts := testServer(t)
	signUp(t, ts.URL, "ada", "secret")

	resp := postJSON(t, ts.URL+"/v1/register", credentialsRequest{Username: "ada", Password: "other"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: %s", resp.Status)
	}
}

func TestCardsRequireToken(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/v1/cards")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: %s", resp.Status)
	}
}

func TestUserScopingIsEnforced(t *testing.T) {
	_, ts := testServer(t)
	ada := signUp(t, ts.URL, "ada", "secret")
	bob := signUp(t, ts.URL, "bob", "hunter2")

	resp := doAuthed(t, http.MethodPost, ts.URL+"/v1/cards", ada.Token, ada.User.ID, card.Draft{Front: "a", Back: "b"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %s", resp.Status)
	}

	// Bob's token cannot claim Ada's identity.
	resp = doAuthed(t, http.MethodGet, ts.URL+"/v1/cards", bob.Token, ada.User.ID, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-user list: %s", resp.Status)
	}

	// Bob's own collection is empty.
	resp = doAuthed(t, http.MethodGet, ts.URL+"/v1/cards", bob.Token, bob.User.ID, nil)
	var cards []card.Card
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	_ = resp.Body.Close()
	if len(cards) != 0 {
		t.Fatalf("bob sees %d cards", len(cards))
	}
}

func TestStoragePerUserIsolationAndOrder(t *testing.T) {
	storage, err := OpenStorage(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStorage: %v", err)
	}

	first, err := storage.CreateCard("user-a", card.Draft{Front: "1f", Back: "1b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := storage.CreateCard("user-a", card.Draft{Front: "2f", Back: "2b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := storage.CreateCard("user-b", card.Draft{Front: "x", Back: "y"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cards, err := storage.ListCards(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("user-a has %d cards", len(cards))
	}
	if cards[0].ID != first.ID || cards[1].ID != second.ID {
		t.Fatalf("creation order not preserved: %+v", cards)
	}

	if err := storage.UpdateCard("user-b", first.ID, card.Draft{Front: "x", Back: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user update err = %v", err)
	}
	if err := storage.DeleteCard("user-b", first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete err = %v", err)
	}
}
