// Package auth supplies the identity for a review session: who is
// signed in, sign-in/sign-out, and change notifications.
package auth

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalidCredentials is returned when the provided credentials are rejected.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnavailable is returned when the identity service cannot be reached.
	ErrUnavailable = errors.New("auth: identity service unavailable")
)

// User is the identity a session runs under. A nil *User means signed out.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider is the source of the current user. OnUserChanged fires the
// callback once at registration with the current state, then again on
// every sign-in and sign-out.
type Provider interface {
	OnUserChanged(fn func(*User)) (cancel func())
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Current() *User
}

// notifier implements subscriber fan-out for Provider implementations.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(*User)
}

func (n *notifier) subscribe(fn func(*User), current *User) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[int]func(*User))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	fn(current)

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify(u *User) {
	n.mu.Lock()
	fns := make([]func(*User), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}
