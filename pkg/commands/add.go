package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add <front> <back>",
		Short: "add a card",
		Example: `
flip add "Hola" "Hello"
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, remote, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			s := add.Add{
				Front:    args[0],
				Back:     args[1],
				Provider: client,
				Remote:   remote,
			}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
