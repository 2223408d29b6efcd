package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/commands/options"
	"tableflip.dev/flip/pkg/runner/login"
)

func addLogin(topLevel *cobra.Command) {
	co := &options.CredentialOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "sign in to the card service",
		Example: `
flip login -u ada -p hunter2
flip login -u ada -p hunter2 --register
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if co.Username == "" || co.Password == "" {
				return errors.New("--user and --password are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(auth.Credentials{
				Username: co.Username,
				Password: co.Password,
			})
			if err != nil {
				return err
			}
			s := login.Login{Register: co.Register, Client: client}
			return s.Do(context.Background())
		},
	}

	options.AddCredentialArgs(cmd, co)
	options.AddRegisterArgs(cmd, co)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "drop the cached session",
		Example: `
flip logout
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			s := login.Logout{Client: client}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}

func addWhoami(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "print the signed-in user",
		Example: `
flip whoami
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			s := login.Whoami{Provider: client}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
