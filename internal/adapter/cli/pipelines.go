package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/action"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func newPipelinesCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags

	cmd := &cobra.Command{
		Use:   "pipelines <action>...",
		Short: "List GitLab pipelines for a repository, or drive a chain of actions against one (status, jobs, children, open)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if len(args) == 0 {
				pipelines, err := deps.Facade.GetPipelines(ctx, path)
				if err != nil {
					return err
				}
				for _, p := range pipelines {
					fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-8s %s\n", p.ID, p.Status, p.Ref)
				}
				return nil
			}

			_, err := pipelineChain(deps.Facade).Run(ctx, deps.Ctx, path, args)
			return err
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	return cmd
}

func pipelineChain(f interface {
	GetPipeline(ctx context.Context, path gclipath.Path, id uint64) (gclidomain.Pipeline, error)
	GetPipelineJobs(ctx context.Context, path gclipath.Path, id uint64) ([]gclidomain.Job, error)
	GetPipelineChildren(ctx context.Context, path gclipath.Path, id uint64) ([]gclidomain.Pipeline, error)
}) action.Chain[gclidomain.Pipeline] {
	return action.Chain[gclidomain.Pipeline]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Pipeline, error) {
			return f.GetPipeline(ctx, path, path.ID)
		},
		Actions: []action.Action[gclidomain.Pipeline]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Pipeline, args []string) (int, error) {
				fmt.Printf("#%d %s on %s\n", item.ID, item.Status, item.Ref)
				return 0, nil
			}},
			{Name: "jobs", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Pipeline, args []string) (int, error) {
				jobs, err := f.GetPipelineJobs(noCtx(), path, path.ID)
				if err != nil {
					return 0, err
				}
				for _, j := range jobs {
					fmt.Printf("#%-6d %-8s %-8s %s\n", j.ID, j.Status, j.Stage, j.Name)
				}
				return 0, nil
			}},
			{Name: "children", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Pipeline, args []string) (int, error) {
				children, err := f.GetPipelineChildren(noCtx(), path, path.ID)
				if err != nil {
					return 0, err
				}
				for _, c := range children {
					fmt.Printf("#%-6d %-8s %s\n", c.ID, c.Status, c.Ref)
				}
				return 0, nil
			}},
			{Name: "open", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Pipeline, args []string) (int, error) {
				printURL(item.WebURL)
				return 0, nil
			}},
		},
	}
}
