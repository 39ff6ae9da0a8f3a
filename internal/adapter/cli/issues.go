package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/action"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/facade"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func newIssuesCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var all bool
	var author, label, milestone, search string
	var max int

	cmd := &cobra.Command{
		Use:   "issues <action>...",
		Short: "Search issues, or drive a chain of actions against one (status, close, reopen, assign, labels, milestone, title, open)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if len(args) == 0 {
				issues, err := deps.Facade.SearchIssues(ctx, path, forge.IssueSearchOptions{
					All: all, Author: author, Label: label, Milestone: milestone, SearchTerm: search,
				}, max)
				if err != nil {
					return err
				}
				printIssueTable(cmd, issues)
				return nil
			}

			_, err := issueChain(deps.Facade).Run(ctx, deps.Ctx, path, args)
			return err
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().BoolVar(&all, "all", false, "Include closed issues")
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	cmd.Flags().StringVar(&label, "label", "", "Filter by label")
	cmd.Flags().StringVar(&milestone, "milestone", "", "Filter by milestone")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search term")
	cmd.Flags().IntVar(&max, "max", -1, "Maximum results (-1 for all pages)")
	return cmd
}

// issueChain builds the action-chain vocabulary for issues: status,
// comments, notes, close, reopen, labels (add|remove) N…, milestone
// (ID | -d), assign, attachments, title T and open. There is no "all" or
// "op" action; either name is rejected as an unknown action.
func issueChain(f *facade.Facade) action.Chain[gclidomain.Issue] {
	return action.Chain[gclidomain.Issue]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error) {
			return f.GetIssue(ctx, path)
		},
		Actions: []action.Action[gclidomain.Issue]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				printIssueDetail(*item)
				return 0, nil
			}},
			{Name: "comments", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				comments, err := f.GetIssueComments(noCtx(), path)
				if err != nil {
					return 0, err
				}
				printComments(comments)
				return 0, nil
			}},
			// notes is the Bugzilla-facing name for the same comment thread.
			{Name: "notes", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				comments, err := f.GetIssueComments(noCtx(), path)
				if err != nil {
					return 0, err
				}
				printComments(comments)
				return 0, nil
			}},
			{Name: "close", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				return 0, f.IssueClose(noCtx(), path)
			}},
			{Name: "reopen", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				return 0, f.IssueReopen(noCtx(), path)
			}},
			{Name: "labels", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				return labelsSubAction(path, args, f.IssueAddLabels, f.IssueRemoveLabels)
			}},
			{Name: "milestone", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("milestone action needs an id argument or -d")
				}
				if args[0] == "-d" {
					return 1, f.IssueClearMilestone(noCtx(), path)
				}
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return 0, gclierr.Usagef("invalid milestone id %q", args[0])
				}
				return 1, f.IssueSetMilestone(noCtx(), path, id)
			}},
			{Name: "assign", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("assign action needs a username argument")
				}
				return 1, f.IssueAssign(noCtx(), path, args[0])
			}},
			{Name: "attachments", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				return 0, gclierr.Unsupportedf("issue", "attachments")
			}},
			{Name: "title", NeedsItem: false, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				if len(args) == 0 {
					return 0, gclierr.Usagef("title action needs a title argument")
				}
				return 1, f.IssueSetTitle(noCtx(), path, args[0])
			}},
			{Name: "open", NeedsItem: true, Handler: func(path gclipath.Path, item *gclidomain.Issue, args []string) (int, error) {
				printURL(item.URL)
				return 0, nil
			}},
		},
	}
}

func printIssueTable(cmd *cobra.Command, issues []gclidomain.Issue) {
	for _, iss := range issues {
		fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-8s %s\n", iss.Number, iss.State, iss.Title)
	}
}

func printIssueDetail(iss gclidomain.Issue) {
	fmt.Printf("#%d %s (%s) by %s\n", iss.Number, iss.Title, iss.State, iss.Author)
	if len(iss.Labels) > 0 {
		var names []string
		for _, l := range iss.Labels {
			names = append(names, l.Name)
		}
		fmt.Printf("labels: %s\n", strings.Join(names, ", "))
	}
}

func printComments(comments []gclidomain.Comment) {
	for _, c := range comments {
		fmt.Printf("%s:\n%s\n\n", c.Author, c.Body)
	}
}

func printURL(url string) {
	fmt.Println(url)
}
