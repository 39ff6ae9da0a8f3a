package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newForksCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var create bool

	cmd := &cobra.Command{
		Use:   "forks",
		Short: "List forks of a repository, or create one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if create {
				fork, err := deps.Facade.ForkCreate(ctx, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "forked to %s/%s\n", fork.Owner, fork.Repo)
				return nil
			}

			forks, err := deps.Facade.GetForks(ctx, path)
			if err != nil {
				return err
			}
			for _, f := range forks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", f.Owner, f.Repo)
			}
			return nil
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().BoolVar(&create, "create", false, "Create a fork instead of listing existing ones")
	return cmd
}
