package store

import (
	"context"
	"errors"

	"tableflip.dev/flip/pkg/card"
)

var (
	// ErrUnavailable wraps every transport or permission failure so
	// callers can treat the store as a single "unavailable" condition.
	ErrUnavailable = errors.New("store: card service unavailable")
	// ErrNoUser is returned when an operation is attempted without an
	// authenticated user identity.
	ErrNoUser = errors.New("store: no user identity")
)

// Remote is the per-user card collection reachable over the wire. All
// operations are scoped to the given user identity; implementations
// must reject calls for a user other than the authenticated one.
type Remote interface {
	List(ctx context.Context, userID string) ([]card.Card, error)
	Create(ctx context.Context, userID string, draft card.Draft) (*card.Card, error)
	Update(ctx context.Context, userID, cardID string, draft card.Draft) error
	Delete(ctx context.Context, userID, cardID string) error
}
