package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/runner/review"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based review interface",
		Example: `
flip ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, remote, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			i := review.Review{Provider: client, Remote: remote}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
