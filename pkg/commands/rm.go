package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/runner/rm"
)

func addRm(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Short:   "remove a card",
		Aliases: []string{"delete", "remove"},
		Example: `
flip rm 4361cb6f
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, remote, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			s := rm.Rm{
				CardID:   args[0],
				Provider: client,
				Remote:   remote,
			}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
