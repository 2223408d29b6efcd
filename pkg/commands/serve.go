package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/flip/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the card service",
		Long: "Run the HTTP card service backing the CLI. Configure with " +
			"FLIP_ADDR, FLIP_DATA_DIR, FLIP_JWT_SECRET and FLIP_LOG_LEVEL, " +
			"or a .env file in the working directory.",
		Example: `
flip serve
FLIP_ADDR=:9000 flip serve
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := serve.Serve{}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
