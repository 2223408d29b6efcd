package get

import (
	"context"
	"errors"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/printers"
	"tableflip.dev/flip/pkg/store"
)

type Get struct {
	ShowID   bool
	Provider auth.Provider
	Remote   store.Remote
}

func (n *Get) Do(ctx context.Context) error {
	if n.Remote == nil {
		return errors.New("can not get, no card store")
	}
	u := n.Provider.Current()
	if u == nil {
		return errors.New("not signed in, run `flip login`")
	}

	cards, err := n.Remote.List(ctx, u.ID)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.TitleWithCount(u.Name, len(cards))
	pp.Cards(cards...)
	return nil
}
