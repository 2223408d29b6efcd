package commands

import (
	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/config"
	"tableflip.dev/flip/pkg/store"
)

// newClient builds the identity client and card store from the local
// config. Most commands pass empty credentials and rely on the cached
// token; login supplies real ones.
func newClient(creds auth.Credentials) (*auth.Client, store.Remote, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client := auth.NewClient(cfg.ServiceURL(), cfg.TokenPath(), creds)
	return client, store.NewRemote(cfg.ServiceURL(), client), nil
}
