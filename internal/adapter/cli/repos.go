package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

func newReposCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var own bool
	var createName, visibility string
	var deletePath, setVisibilityPath bool

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories, create one, delete one, or change a repository's visibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if createName != "" {
				repo, err := deps.Facade.RepoCreate(ctx, createName, visibility)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s/%s (%s)\n", repo.Owner, repo.Name, repo.Visibility)
				return nil
			}

			path := pf.toPath()
			if deletePath {
				return deps.Facade.RepoDelete(ctx, path)
			}
			if setVisibilityPath {
				if visibility == "" {
					return gclierr.Usagef("--visibility is required with --set-visibility")
				}
				return deps.Facade.RepoSetVisibility(ctx, path, visibility)
			}

			if own {
				got, err := deps.Facade.GetOwnRepos(ctx)
				if err != nil {
					return err
				}
				for _, r := range got {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s/%s\n", r.Visibility, r.Owner, r.Name)
				}
				return nil
			}
			got, err := deps.Facade.GetRepos(ctx, pf.owner)
			if err != nil {
				return err
			}
			for _, r := range got {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s/%s\n", r.Visibility, r.Owner, r.Name)
			}
			return nil
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().BoolVar(&own, "own", false, "List only repositories owned by the authenticated account")
	cmd.Flags().StringVar(&createName, "create", "", "Create a repository with this name instead of listing")
	cmd.Flags().StringVar(&visibility, "visibility", "", "Visibility for --create or --set-visibility (public|private)")
	cmd.Flags().BoolVar(&deletePath, "delete", false, "Delete the targeted repository instead of listing")
	cmd.Flags().BoolVar(&setVisibilityPath, "set-visibility", false, "Change the targeted repository's visibility instead of listing")
	return cmd
}
