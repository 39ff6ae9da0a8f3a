package cli

import (
	"github.com/spf13/cobra"
)

func newCommentsCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var onPull bool
	var body string

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List or submit comments on an issue or pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if body != "" {
				_, err := deps.Facade.PerformSubmitComment(ctx, path, body)
				return err
			}

			if onPull {
				got, err := deps.Facade.GetPullComments(ctx, path)
				if err != nil {
					return err
				}
				printComments(got)
				return nil
			}
			got, err := deps.Facade.GetIssueComments(ctx, path)
			if err != nil {
				return err
			}
			printComments(got)
			return nil
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().BoolVar(&onPull, "pull", false, "Target a pull request instead of an issue")
	cmd.Flags().StringVar(&body, "body", "", "Submit a new comment with this body instead of listing")
	return cmd
}
