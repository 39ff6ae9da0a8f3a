package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// newReviewCommand exposes the review session registry directly (the
// interactive review walk itself is driven through "gcli pulls ... review",
// since it needs a pull request's shared item the same way every other
// pull action does).
func newReviewCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect persisted review sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List in-progress, postponed, and submitted review sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Registry == nil {
				return gclierr.Usagef("no review session registry is configured")
			}
			sessions, err := deps.Registry.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-8s %s/%s#%d  %s\n",
					s.Backend, s.Status, s.Owner, s.Repo, s.PullID, s.CachePath)
			}
			return nil
		},
	})
	return cmd
}
