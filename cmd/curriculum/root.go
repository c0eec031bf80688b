package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/curriculum-backend/internal/app"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "curriculum",
		Short:         "Curriculum import and shard retrieval service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newImportCmd(), newShardsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}
