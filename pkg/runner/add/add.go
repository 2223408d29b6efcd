package add

import (
	"context"
	"errors"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/card"
	"tableflip.dev/flip/pkg/printers"
	"tableflip.dev/flip/pkg/store"
)

type Add struct {
	Front string
	Back  string

	Provider auth.Provider
	Remote   store.Remote
}

func (n *Add) Do(ctx context.Context) error {
	if n.Remote == nil {
		return errors.New("can not add, no card store")
	}
	u := n.Provider.Current()
	if u == nil {
		return errors.New("not signed in, run `flip login`")
	}

	draft := card.Draft{Front: n.Front, Back: n.Back}
	if !draft.Valid() {
		return errors.New("both front and back are required")
	}

	c, err := n.Remote.Create(ctx, u.ID, draft)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: true}
	pp.NewLine()
	pp.Title(u.Name)
	pp.Cards(*c)
	return nil
}
