package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/action"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func newPullsCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var all bool
	var author, label, milestone, search string
	var max int
	var squash, inhibitDelete bool

	cmd := &cobra.Command{
		Use:   "pulls <action>...",
		Short: "Search pull requests, or drive a chain of actions against one (status, commits, diff, patch, ci, merge, checkout, review, ...)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if len(args) == 0 {
				pulls, err := deps.Facade.SearchPulls(ctx, path, forge.IssueSearchOptions{
					All: all, Author: author, Label: label, Milestone: milestone, SearchTerm: search,
				}, max)
				if err != nil {
					return err
				}
				printPullTable(cmd, pulls)
				return nil
			}

			_, err := pullChain(deps, squash, inhibitDelete).Run(ctx, deps.Ctx, path, args)
			return err
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().BoolVar(&all, "all", false, "Include closed/merged pull requests")
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	cmd.Flags().StringVar(&label, "label", "", "Filter by label")
	cmd.Flags().StringVar(&milestone, "milestone", "", "Filter by milestone")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search term")
	cmd.Flags().IntVar(&max, "max", -1, "Maximum results (-1 for all pages)")
	cmd.Flags().BoolVarP(&squash, "squash", "s", false, "Squash commits on merge")
	cmd.Flags().BoolVarP(&inhibitDelete, "inhibit-delete", "D", false, "Do not delete the head branch on merge")
	return cmd
}

// pullChain builds the action-chain vocabulary for pulls: status, commits,
// diff, patch, ci, comments, close, reopen, labels, milestone, title,
// merge, request-review, review, checkout and open. The issue actions
// assign, notes and attachments are not registered here, and neither
// chain has an "all" or "op" action.
func pullChain(deps Dependencies, squash, inhibitDelete bool) action.Chain[gclidomain.PullRequest] {
	f := deps.Facade

	return action.Chain[gclidomain.PullRequest]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
			return f.GetPull(ctx, path)
		},
		Actions: []action.Action[gclidomain.PullRequest]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				printPullDetail(*item)
				return 0, nil
			}},
			{Name: "commits", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				commits, err := f.GetPullCommits(noCtx(), path)
				if err != nil {
					return 0, err
				}
				for _, c := range commits {
					fmt.Printf("%s %s\n", c.ShortSha, c.Message)
				}
				return 0, nil
			}},
			{Name: "diff", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				out, err := f.PullGetDiff(noCtx(), path)
				if err != nil {
					return 0, err
				}
				fmt.Println(out)
				return 0, nil
			}},
			{Name: "patch", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				out, err := f.PullGetPatch(noCtx(), path)
				if err != nil {
					return 0, err
				}
				fmt.Println(out)
				return 0, nil
			}},
			{Name: "ci", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				runs, err := f.CI(noCtx(), path)
				if err != nil {
					return 0, err
				}
				for _, r := range runs {
					fmt.Printf("%-10s %-8s %s\n", r.Kind, r.Status, r.Name)
				}
				return 0, nil
			}},
			{Name: "comments", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				comments, err := f.GetPullComments(noCtx(), path)
				if err != nil {
					return 0, err
				}
				printComments(comments)
				return 0, nil
			}},
			{Name: "close", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				return 0, f.PullClose(noCtx(), path)
			}},
			{Name: "reopen", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				return 0, f.PullReopen(noCtx(), path)
			}},
			{Name: "labels", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				return labelsSubAction(path, args, f.PullAddLabels, f.PullRemoveLabels)
			}},
			{Name: "milestone", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("milestone action needs an id argument or -d")
				}
				if args[0] == "-d" {
					return 1, f.PullClearMilestone(noCtx(), path)
				}
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return 0, gclierr.Usagef("invalid milestone id %q", args[0])
				}
				return 1, f.PullSetMilestone(noCtx(), path, id)
			}},
			{Name: "title", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("title action needs a title argument")
				}
				return 1, f.PullSetTitle(noCtx(), path, args[0])
			}},
			{Name: "merge", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				var flags forge.MergeFlags
				if squash {
					flags |= forge.MergeSquash
				}
				if !inhibitDelete {
					flags |= forge.MergeDeleteHead
				}
				return 0, f.PullMerge(noCtx(), path, flags)
			}},
			{Name: "request-review", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("request-review action needs a username argument")
				}
				return 1, f.PullAddReviewer(noCtx(), path, args[0])
			}},
			{Name: "review", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				if deps.Session == nil {
					return 0, gclierr.Usagef("interactive review is not available in this invocation")
				}
				result, err := deps.Session(path).Run(noCtx())
				if err != nil {
					return 0, err
				}
				fmt.Printf("review outcome: %s\n", result.Outcome)
				return 0, nil
			}},
			{Name: "checkout", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				localBranch := item.HeadLabel
				if len(args) > 0 {
					localBranch = args[0]
					return 1, f.PullCheckout(noCtx(), path, localBranch)
				}
				return 0, f.PullCheckout(noCtx(), path, localBranch)
			}},
			{Name: "open", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.PullRequest, args []string) (int, error) {
				printURL(item.WebURL)
				return 0, nil
			}},
		},
	}
}

func printPullTable(cmd *cobra.Command, pulls []gclidomain.PullRequest) {
	for _, pr := range pulls {
		fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-8s %s\n", pr.Number, pr.State, pr.Title)
	}
}

func printPullDetail(pr gclidomain.PullRequest) {
	fmt.Printf("#%d %s (%s) by %s\n", pr.Number, pr.Title, pr.State, pr.Author)
	fmt.Printf("%s -> %s  +%d/-%d in %d files, %d commits\n", pr.HeadLabel, pr.BaseLabel, pr.Additions, pr.Deletions, pr.ChangedFiles, pr.Commits)
	if len(pr.Labels) > 0 {
		var names []string
		for _, l := range pr.Labels {
			names = append(names, l.Name)
		}
		fmt.Printf("labels: %s\n", strings.Join(names, ", "))
	}
}

