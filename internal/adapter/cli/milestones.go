package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/action"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func newMilestonesCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags

	cmd := &cobra.Command{
		Use:   "milestones <action>...",
		Short: "List milestones, or drive a chain of actions against one (status, issues, delete, set-duedate, open)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if len(args) == 0 {
				milestones, err := deps.Facade.GetMilestones(ctx, path)
				if err != nil {
					return err
				}
				for _, m := range milestones {
					fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-8s %s\n", m.ID, m.State, m.Title)
				}
				return nil
			}

			_, err := milestoneChain(deps.Facade).Run(ctx, deps.Ctx, path, args)
			return err
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	return cmd
}

func milestoneChain(f interface {
	GetMilestones(ctx context.Context, path gclipath.Path) ([]gclidomain.Milestone, error)
	DeleteMilestone(ctx context.Context, path gclipath.Path) error
	MilestoneGetIssues(ctx context.Context, path gclipath.Path) ([]gclidomain.Issue, error)
	MilestoneSetDueDate(ctx context.Context, path gclipath.Path, dueDate int64) error
}) action.Chain[gclidomain.Milestone] {
	return action.Chain[gclidomain.Milestone]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Milestone, error) {
			all, err := f.GetMilestones(ctx, path)
			if err != nil {
				return gclidomain.Milestone{}, err
			}
			for _, m := range all {
				if m.ID == path.ID {
					return m, nil
				}
			}
			return gclidomain.Milestone{}, gclierr.Dataf("milestone", "milestone %d not found", path.ID)
		},
		Actions: []action.Action[gclidomain.Milestone]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Milestone, args []string) (int, error) {
				fmt.Printf("#%d %s (%s)\n%s\n", item.ID, item.Title, item.State, item.Description)
				return 0, nil
			}},
			{Name: "issues", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Milestone, args []string) (int, error) {
				issues, err := f.MilestoneGetIssues(noCtx(), path)
				if err != nil {
					return 0, err
				}
				for _, iss := range issues {
					fmt.Printf("#%-6d %-8s %s\n", iss.Number, iss.State, iss.Title)
				}
				return 0, nil
			}},
			{Name: "delete", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Milestone, args []string) (int, error) {
				return 0, f.DeleteMilestone(noCtx(), path)
			}},
			{Name: "set-duedate", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Milestone, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("set-duedate action needs a date argument (YYYY-MM-DD)")
				}
				t, err := time.Parse("2006-01-02", args[0])
				if err != nil {
					return 0, gclierr.Usagef("invalid date %q: %v", args[0], err)
				}
				return 1, f.MilestoneSetDueDate(noCtx(), path, t.Unix())
			}},
			{Name: "open", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Milestone, args []string) (int, error) {
				fmt.Printf("milestone #%d\n", item.ID)
				return 0, nil
			}},
		},
	}
}
