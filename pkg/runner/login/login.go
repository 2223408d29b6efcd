package login

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/flip/pkg/auth"
)

// Login signs in against the card service, optionally registering the
// account first.
type Login struct {
	Register bool
	Client   *auth.Client
}

func (n *Login) Do(ctx context.Context) error {
	if n.Client == nil {
		return errors.New("no identity client configured")
	}
	if n.Register {
		if err := n.Client.Register(ctx); err != nil {
			return err
		}
	}
	if err := n.Client.SignIn(ctx); err != nil {
		return err
	}
	u := n.Client.Current()
	fmt.Printf("signed in as %s\n", u.Name)
	return nil
}

// Logout drops the cached session.
type Logout struct {
	Client *auth.Client
}

func (n *Logout) Do(ctx context.Context) error {
	if n.Client == nil {
		return errors.New("no identity client configured")
	}
	if err := n.Client.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

// Whoami prints the current identity.
type Whoami struct {
	Provider auth.Provider
}

func (n *Whoami) Do(ctx context.Context) error {
	if n.Provider == nil {
		return errors.New("no identity client configured")
	}
	u := n.Provider.Current()
	if u == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s (%s)\n", u.Name, u.ID)
	return nil
}
