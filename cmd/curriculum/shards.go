package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/curriculum-backend/internal/app"
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/query"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type shardsOptions struct {
	filter    query.Filter
	canonical bool
}

func newShardsCmd() *cobra.Command {
	var opts shardsOptions

	cmd := &cobra.Command{
		Use:   "shards",
		Short: "Fetch the remote curriculum shards and print the filtered records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), app.WithoutHTTP())
			if err != nil {
				return err
			}
			defer a.Close()
			return runShards(cmd, a.Services.Catalog, opts)
		},
	}

	cmd.Flags().StringVar(&opts.filter.Subject, "subject", "", "Subject or learning area substring")
	cmd.Flags().StringVar(&opts.filter.Level, "level", "", "Level substring")
	cmd.Flags().StringVar(&opts.filter.Keyword, "keyword", "", "Keyword matched against descriptive fields and topics")
	cmd.Flags().IntVar(&opts.filter.Limit, "limit", 0, "Max records per shard (0 means all)")
	cmd.Flags().BoolVar(&opts.canonical, "canonical", false, "Print canonical snake_case records instead of display-cased keys")
	return cmd
}

type shardsOutput struct {
	Shards    any                      `json:"shards"`
	FetchedAt time.Time                `json:"fetched_at"`
	Status    []curriculum.ShardStatus `json:"status"`
}

func runShards(cmd *cobra.Command, catalog services.CatalogService, opts shardsOptions) error {
	view, err := catalog.Shards(cmd.Context(), opts.filter)
	if err != nil {
		return err
	}
	out := shardsOutput{FetchedAt: view.FetchedAt, Status: view.Status}
	if opts.canonical {
		out.Shards = view.Shards
	} else {
		out.Shards = shards.DisplayShards(view.Shards)
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
