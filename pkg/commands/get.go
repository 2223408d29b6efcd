package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/commands/options"
	"tableflip.dev/flip/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "list your cards",
		Example: `
flip get
flip get --show-id
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, remote, err := newClient(auth.Credentials{})
			if err != nil {
				return err
			}
			s := get.Get{
				ShowID:   io.ShowID,
				Provider: client,
				Remote:   remote,
			}
			return s.Do(context.Background())
		},
	}

	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
