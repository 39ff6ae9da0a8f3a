// Package cli wires the cobra command tree spec.md §6 names onto
// internal/gcli/facade, internal/gcli/action, and internal/gcli/review.
// Grounded on the teacher's internal/adapter/cli/root.go (cobra tree,
// resolveX flag-precedence helpers, version flag handling).
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/facade"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/review"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/review/store"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators the command tree dispatches
// into: the domain facade bound to one backend, the review session
// factory, and the optional persisted session registry behind
// `gcli review list`.
type Dependencies struct {
	Facade  *facade.Facade
	Ctx     *gclictx.Context
	Session func(path gclipath.Path) *review.Session
	Registry *store.Store

	Args        Arguments
	DefaultOwner string
	DefaultRepo  string
	Version      string
}

// pathFlags holds the owner/repo/id/product/component flag values common
// to every resource-targeting subcommand.
type pathFlags struct {
	owner     string
	repo      string
	id        uint64
	product   string
	component string
}

func addPathFlags(cmd *cobra.Command, pf *pathFlags, defaultOwner, defaultRepo string) {
	cmd.Flags().StringVarP(&pf.owner, "owner", "o", defaultOwner, "Repository owner (or Bugzilla product)")
	cmd.Flags().StringVarP(&pf.repo, "repo", "r", defaultRepo, "Repository name (or Bugzilla component)")
	cmd.Flags().Uint64Var(&pf.id, "id", 0, "Numeric id (issue/pull/milestone number, or raw backend id)")
	cmd.Flags().StringVar(&pf.product, "product", "", "Bugzilla product (overrides --owner)")
	cmd.Flags().StringVar(&pf.component, "component", "", "Bugzilla component (overrides --repo)")
}

func (pf pathFlags) toPath() gclipath.Path {
	if pf.product != "" || pf.component != "" {
		return gclipath.Bugzilla(pf.product, pf.component)
	}
	return gclipath.Default(pf.owner, pf.repo, pf.id)
}

// NewRootCommand constructs the root cobra command. Every resource
// subcommand (issues, pulls, milestones, labels, comments, notifications,
// sshkeys, repos, forks, pipelines, jobs, review, status) is attached here.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "gcli",
		Short: "A unified command-line client for GitHub, GitLab, Gitea and Bugzilla-like forges",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	root.AddCommand(
		newIssuesCommand(deps),
		newPullsCommand(deps),
		newMilestonesCommand(deps),
		newLabelsCommand(deps),
		newCommentsCommand(deps),
		newNotificationsCommand(deps),
		newSSHKeysCommand(deps),
		newReposCommand(deps),
		newForksCommand(deps),
		newPipelinesCommand(deps),
		newJobsCommand(deps),
		newReviewCommand(deps),
		newStatusCommand(deps),
	)

	return root
}
