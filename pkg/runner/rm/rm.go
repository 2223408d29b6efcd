package rm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/store"
)

type Rm struct {
	CardID string

	Provider auth.Provider
	Remote   store.Remote
}

// Do deletes the card whose id matches CardID. A unique id prefix is
// accepted so users can paste the short form from `flip get --id`.
func (n *Rm) Do(ctx context.Context) error {
	if n.Remote == nil {
		return errors.New("can not remove, no card store")
	}
	u := n.Provider.Current()
	if u == nil {
		return errors.New("not signed in, run `flip login`")
	}
	if n.CardID == "" {
		return errors.New("card id required")
	}

	cards, err := n.Remote.List(ctx, u.ID)
	if err != nil {
		return err
	}

	target := ""
	for _, c := range cards {
		if !strings.HasPrefix(c.ID, n.CardID) {
			continue
		}
		if target != "" {
			return fmt.Errorf("id %q is ambiguous", n.CardID)
		}
		target = c.ID
	}
	if target == "" {
		return fmt.Errorf("no card with id %q", n.CardID)
	}

	if err := n.Remote.Delete(ctx, u.ID, target); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", target)
	return nil
}
