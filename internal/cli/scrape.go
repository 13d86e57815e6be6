package cli

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/spf13/cobra"
)

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	var dryRun, raw bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the latest box scores into the player store now",
		Long: `Fetches the box score listing, normalizes every completed game and writes
one record per player. With --dry-run the records are printed instead; add
--raw to print the exact stored values keyed by player name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer teardown(c)

			ctx, cancel := context.WithTimeout(cmd.Context(), c.Config.Scrape.RunTimeout)
			defer cancel()

			if dryRun {
				scraped, err := c.Ingester.Scrape(ctx)
				if err != nil {
					return err
				}
				if raw {
					encoded, err := scraped.Players.Encoded()
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), encoded)
				}
				return writeJSON(cmd.OutOrStdout(), scraped.Players.Records())
			}

			summary, err := c.Scheduler.RunNow(ctx, scheduler.TriggerManual)
			if summary != nil {
				if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
					return werr
				}
			}
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print normalized records without writing them")
	cmd.Flags().BoolVar(&raw, "raw", false, "With --dry-run, print encoded store values")
	return cmd
}
