package options

import (
	"github.com/spf13/cobra"
)

// CredentialOptions
type CredentialOptions struct {
	Username string
	Password string
	Register bool
}

func AddCredentialArgs(cmd *cobra.Command, o *CredentialOptions) {
	cmd.Flags().StringVarP(&o.Username, "user", "u", "",
		"Username to sign in with.")
	cmd.Flags().StringVarP(&o.Password, "password", "p", "",
		"Password to sign in with.")
}

func AddRegisterArgs(cmd *cobra.Command, o *CredentialOptions) {
	cmd.Flags().BoolVar(&o.Register, "register", false,
		"Create the account before signing in.")
}
