// Package forge defines the per-backend capability set (spec.md §4.5): a
// record of nullable function fields, one filled instance per backend,
// rather than a Go interface — so "this backend doesn't implement X" is
// representable as a nil field the facade checks before calling, exactly as
// spec.md's redesign note asks for (a trait object per backend would force
// every adapter to stub out methods it cannot implement).
package forge

import (
	"context"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

// IssueSearchOptions mirrors spec.md §4.6's search_issues filter bag.
type IssueSearchOptions struct {
	All         bool
	Author      string
	Label       string
	Milestone   string
	SearchTerm  string
}

// MergeFlags is a bitmask of pull_merge options (spec.md §4.6).
type MergeFlags uint8

const (
	MergeSquash MergeFlags = 1 << iota
	MergeDeleteHead
)

// PullSubmitOptions mirrors spec.md §4.6's pull_submit contract.
type PullSubmitOptions struct {
	Title      string
	Body       string
	Head       string
	Base       string
	Labels     []string
	Reviewers  []string
	Automerge  bool
}

// Capability is the function-pointer table spec.md §4.5 describes, one
// filled instance per backend. Every field may be nil; the facade checks
// non-nilness before calling and reports gclierr.Unsupportedf otherwise.
type Capability struct {
	Name string // "github" | "gitlab" | "gitea" | "bugzilla"

	GetAuthHeader   func(ctx *gclictx.Context) (string, string)
	APIErrorString  func(statusCode int, body []byte) string

	SearchIssues func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts IssueSearchOptions, max int) ([]gclidomain.Issue, error)
	GetIssue     func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error)
	SubmitIssue  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, title, body string) (gclidomain.Issue, error)
	IssueClose   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	IssueReopen  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	IssueAssign  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, assignee string) error

	IssueAddLabels      func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error
	IssueRemoveLabels   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error
	IssueSetMilestone   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, milestoneID uint64) error
	IssueClearMilestone func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	IssueSetTitle       func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, title string) error

	SearchPulls    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts IssueSearchOptions, max int) ([]gclidomain.PullRequest, error)
	GetPull        func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error)
	GetPullCommits func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Commit, error)
	PullGetDiff    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (string, error)
	PullGetPatch   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (string, error)
	PullGetChecks  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.CheckRun, error)
	PullMerge      func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, flags MergeFlags) error
	PullClose      func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	PullReopen     func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error

	PullAddLabels    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error
	PullRemoveLabels func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error
	PullSetMilestone func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, milestoneID uint64) error
	PullClearMilestone func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	PullAddReviewer  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, reviewer string) error
	PullSetTitle     func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, title string) error

	PullCreateReview   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, approve bool, comments []gclidomain.Comment) error
	PerformSubmitPull  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts PullSubmitOptions) (gclidomain.PullRequest, error)
	PullCheckout       func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, localBranch string) error

	// EnableAutomerge turns on the backend's auto-merge-when-green behaviour
	// for an already-submitted pull request (spec.md §4.6's pull_submit
	// automerge step). GitHub does this as a single GraphQL mutation; GitLab
	// requires polling the MR's "can be merged" flag first, so its own
	// closure owns that loop (DESIGN.md Open Question decision #2).
	EnableAutomerge func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error

	GetLabels    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Label, error)
	CreateLabel  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, label gclidomain.Label) error
	DeleteLabel  func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, name string) error

	GetMilestones      func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Milestone, error)
	GetMilestone       func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Milestone, error)
	CreateMilestone    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, m gclidomain.Milestone) (gclidomain.Milestone, error)
	DeleteMilestone    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	MilestoneGetIssues func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Issue, error)
	MilestoneSetDueDate func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, dueDate int64) error

	GetForks   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Fork, error)
	ForkCreate func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Fork, error)

	GetRepos      func(ctx context.Context, gctx *gclictx.Context, owner string) ([]gclidomain.Repo, error)
	GetOwnRepos   func(ctx context.Context, gctx *gclictx.Context) ([]gclidomain.Repo, error)
	RepoCreate    func(ctx context.Context, gctx *gclictx.Context, name, visibility string) (gclidomain.Repo, error)
	RepoDelete    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error
	RepoSetVisibility func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, visibility string) error

	GetNotifications       func(ctx context.Context, gctx *gclictx.Context, all bool) ([]gclidomain.Notification, error)
	NotificationMarkAsRead func(ctx context.Context, gctx *gclictx.Context, id uint64) error
	NotificationGetIssue   func(ctx context.Context, gctx *gclictx.Context, id uint64) (gclidomain.Issue, error)
	NotificationGetComments func(ctx context.Context, gctx *gclictx.Context, id uint64) ([]gclidomain.Comment, error)

	GetIssueComments   func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error)
	GetPullComments    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error)
	GetComment         func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) (gclidomain.Comment, error)
	PerformSubmitComment func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, body string) (gclidomain.Comment, error)

	SSHKeysList   func(ctx context.Context, gctx *gclictx.Context) ([]gclidomain.SSHKey, error)
	SSHKeysAdd    func(ctx context.Context, gctx *gclictx.Context, title, publicKey string) (gclidomain.SSHKey, error)
	SSHKeysDelete func(ctx context.Context, gctx *gclictx.Context, id uint64) error

	// GitLab-only capabilities.
	GetPipelines       func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Pipeline, error)
	GetMRPipelines     func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Pipeline, error)
	GetPipeline        func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) (gclidomain.Pipeline, error)
	GetPipelineJobs    func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) ([]gclidomain.Job, error)
	GetPipelineChildren func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) ([]gclidomain.Pipeline, error)
	GetJob             func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) (gclidomain.Job, error)
	JobGetLog          func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) (string, error)
	JobCancel          func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) error
	JobRetry           func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) error
	JobDownloadArtifacts func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) ([]byte, error)

	// Quirks, per resource kind, tell the renderer which summary fields are
	// meaningful on this backend (spec.md §4.5).
	IssueQuirks    gclidomain.Quirk
	PullQuirks     gclidomain.Quirk
	MilestoneQuirks gclidomain.Quirk
}

// Unsupported reports a gclierr.Unsupportedf for a named capability that
// this backend's table leaves nil — the facade's uniform "not supported by
// this forge" path.
func (c *Capability) Unsupported(capability string) error {
	return gclierr.Unsupportedf(c.Name, capability)
}
