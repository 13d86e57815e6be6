package cli

import (
	"fmt"
	"strings"

	"github.com/fortuna/courtside/internal/reply"
	"github.com/spf13/cobra"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var card bool

	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "Resolve chat text to a stored player record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer teardown(c)

			text := strings.Join(args, " ")
			rec, err := c.Resolver.Resolve(cmd.Context(), text)
			if err != nil {
				return err
			}

			if card {
				return writeJSON(cmd.OutOrStdout(), reply.Compose(rec).Bubble())
			}
			if rec == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "no player matched %q\n", text)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().BoolVar(&card, "card", false, "Print the flex bubble that would be sent")
	return cmd
}
