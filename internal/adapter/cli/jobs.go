package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/action"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func newJobsCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var artifactsOut string

	cmd := &cobra.Command{
		Use:   "jobs <action>...",
		Short: "Drive a chain of actions against a GitLab job (status, log, cancel, retry, artifacts, open)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()
			_, err := jobChain(deps.Facade, artifactsOut).Run(ctx, deps.Ctx, path, args)
			return err
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().StringVar(&artifactsOut, "output", "", "File to write downloaded artifacts to (artifacts action)")
	return cmd
}

func jobChain(f interface {
	GetJob(ctx context.Context, path gclipath.Path, id uint64) (gclidomain.Job, error)
	JobGetLog(ctx context.Context, path gclipath.Path, id uint64) (string, error)
	JobCancel(ctx context.Context, path gclipath.Path, id uint64) error
	JobRetry(ctx context.Context, path gclipath.Path, id uint64) error
	JobDownloadArtifacts(ctx context.Context, path gclipath.Path, id uint64) ([]byte, error)
}, artifactsOut string) action.Chain[gclidomain.Job] {
	return action.Chain[gclidomain.Job]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Job, error) {
			return f.GetJob(ctx, path, path.ID)
		},
		Actions: []action.Action[gclidomain.Job]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				fmt.Printf("#%d %s (%s) %s\n", item.ID, item.Name, item.Stage, item.Status)
				return 0, nil
			}},
			{Name: "log", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				log, err := f.JobGetLog(noCtx(), path, path.ID)
				if err != nil {
					return 0, err
				}
				fmt.Println(log)
				return 0, nil
			}},
			{Name: "cancel", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				return 0, f.JobCancel(noCtx(), path, path.ID)
			}},
			{Name: "retry", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				return 0, f.JobRetry(noCtx(), path, path.ID)
			}},
			{Name: "artifacts", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				data, err := f.JobDownloadArtifacts(noCtx(), path, path.ID)
				if err != nil {
					return 0, err
				}
				out := artifactsOut
				consumed := 0
				if len(args) > 0 && args[0] == "-o" {
					if len(args) < 2 {
						return 0, gclierr.Usagef("-o needs a file path")
					}
					out = args[1]
					consumed = 2
				}
				if out == "" {
					out = fmt.Sprintf("artifacts-%d.zip", path.ID)
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return consumed, gclierr.Dataf("job", "writing artifacts to %q: %v", out, err)
				}
				fmt.Printf("wrote %s\n", out)
				return consumed, nil
			}},
			{Name: "open", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Job, args []string) (int, error) {
				fmt.Printf("job #%d\n", item.ID)
				return 0, nil
			}},
		},
	}
}
