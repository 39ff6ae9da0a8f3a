// Package facade maps user-level verbs onto the forge.Capability table
// (spec.md §4.6): validate arguments, adjust the path (e.g. the Bugzilla
// reinterpretation gclipath.Sanitise performs), dispatch to the capability
// if present, and otherwise report "not supported by this forge". Grounded
// on the teacher's internal/usecase layering convention — thin
// orchestration structs that call straight into adapters with no business
// logic of their own beyond validation and sequencing.
package facade

import (
	"context"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
)

// Facade is the per-request dispatch surface. One Facade wraps one
// backend's Capability table plus the ambient Context and path inference
// source the caller configured.
type Facade struct {
	Cap        *forge.Capability
	Ctx        *gclictx.Context
	Infer      gclipath.Inferrer
	IsBugzilla bool
}

func (f *Facade) sanitise(path gclipath.Path) (gclipath.Path, error) {
	return gclipath.Sanitise(path, f.IsBugzilla, f.Infer)
}

// ResolvePath runs the same owner/repo inference and Bugzilla reinterpretation
// every other Facade method applies, for callers (the review session) that
// need a concrete path before talking to the backend directly rather than
// through a Capability field.
func (f *Facade) ResolvePath(path gclipath.Path) (gclipath.Path, error) {
	return f.sanitise(path)
}

// SearchIssues implements spec.md §4.6's search_issues worked contract.
// max == -1 means "all".
func (f *Facade) SearchIssues(ctx context.Context, path gclipath.Path, opts forge.IssueSearchOptions, max int) ([]gclidomain.Issue, error) {
	if f.Cap.SearchIssues == nil {
		return nil, f.Cap.Unsupported("search_issues")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.SearchIssues(ctx, f.Ctx, path, opts, max)
}

func (f *Facade) GetIssue(ctx context.Context, path gclipath.Path) (gclidomain.Issue, error) {
	if f.Cap.GetIssue == nil {
		return gclidomain.Issue{}, f.Cap.Unsupported("get_issue")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Issue{}, err
	}
	iss, err := f.Cap.GetIssue(ctx, f.Ctx, path)
	if err != nil {
		return gclidomain.Issue{}, err
	}
	iss.Quirks = f.Cap.IssueQuirks
	return iss, nil
}

func (f *Facade) IssueClose(ctx context.Context, path gclipath.Path) error {
	if f.Cap.IssueClose == nil {
		return f.Cap.Unsupported("issue_close")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueClose(ctx, f.Ctx, path)
}

func (f *Facade) IssueReopen(ctx context.Context, path gclipath.Path) error {
	if f.Cap.IssueReopen == nil {
		return f.Cap.Unsupported("issue_reopen")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueReopen(ctx, f.Ctx, path)
}

// IssueAddLabels implements spec.md §4.6's Gitea name-to-id translation
// note: backends that need that translation do it inside their own
// Capability.IssueAddLabels closure (see forge/gitea), so the facade's job
// here is only validation, path adjustment, and dispatch.
func (f *Facade) IssueAddLabels(ctx context.Context, path gclipath.Path, labels []string) error {
	if len(labels) == 0 {
		return gclierr.Usagef("no labels given")
	}
	if f.Cap.IssueAddLabels == nil {
		return f.Cap.Unsupported("issue_add_labels")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueAddLabels(ctx, f.Ctx, path, labels)
}

func (f *Facade) IssueRemoveLabels(ctx context.Context, path gclipath.Path, labels []string) error {
	if len(labels) == 0 {
		return gclierr.Usagef("no labels given")
	}
	if f.Cap.IssueRemoveLabels == nil {
		return f.Cap.Unsupported("issue_remove_labels")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueRemoveLabels(ctx, f.Ctx, path, labels)
}

func (f *Facade) IssueSetMilestone(ctx context.Context, path gclipath.Path, milestoneID uint64) error {
	if f.Cap.IssueSetMilestone == nil {
		return f.Cap.Unsupported("issue_set_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueSetMilestone(ctx, f.Ctx, path, milestoneID)
}

func (f *Facade) IssueSetTitle(ctx context.Context, path gclipath.Path, title string) error {
	if title == "" {
		return gclierr.Usagef("title must not be empty")
	}
	if f.Cap.IssueSetTitle == nil {
		return f.Cap.Unsupported("issue_set_title")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueSetTitle(ctx, f.Ctx, path, title)
}

func (f *Facade) IssueAssign(ctx context.Context, path gclipath.Path, assignee string) error {
	if assignee == "" {
		return gclierr.Usagef("assignee must not be empty")
	}
	if f.Cap.IssueAssign == nil {
		return f.Cap.Unsupported("issue_assign")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueAssign(ctx, f.Ctx, path, assignee)
}

func (f *Facade) IssueClearMilestone(ctx context.Context, path gclipath.Path) error {
	if f.Cap.IssueClearMilestone == nil {
		return f.Cap.Unsupported("issue_clear_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.IssueClearMilestone(ctx, f.Ctx, path)
}

func (f *Facade) SearchPulls(ctx context.Context, path gclipath.Path, opts forge.IssueSearchOptions, max int) ([]gclidomain.PullRequest, error) {
	if f.Cap.SearchPulls == nil {
		return nil, f.Cap.Unsupported("search_pulls")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.SearchPulls(ctx, f.Ctx, path, opts, max)
}

func (f *Facade) GetPull(ctx context.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
	if f.Cap.GetPull == nil {
		return gclidomain.PullRequest{}, f.Cap.Unsupported("get_pull")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.PullRequest{}, err
	}
	pr, err := f.Cap.GetPull(ctx, f.Ctx, path)
	if err != nil {
		return gclidomain.PullRequest{}, err
	}
	pr.Quirks = f.Cap.PullQuirks
	return pr, nil
}

func (f *Facade) GetPullCommits(ctx context.Context, path gclipath.Path) ([]gclidomain.Commit, error) {
	if f.Cap.GetPullCommits == nil {
		return nil, f.Cap.Unsupported("get_pull_commits")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetPullCommits(ctx, f.Ctx, path)
}

func (f *Facade) PullGetDiff(ctx context.Context, path gclipath.Path) (string, error) {
	if f.Cap.PullGetDiff == nil {
		return "", f.Cap.Unsupported("pull_get_diff")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return "", err
	}
	return f.Cap.PullGetDiff(ctx, f.Ctx, path)
}

func (f *Facade) PullGetPatch(ctx context.Context, path gclipath.Path) (string, error) {
	if f.Cap.PullGetPatch == nil {
		return "", f.Cap.Unsupported("pull_get_patch")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return "", err
	}
	return f.Cap.PullGetPatch(ctx, f.Ctx, path)
}

func (f *Facade) PullGetChecks(ctx context.Context, path gclipath.Path) ([]gclidomain.CheckRun, error) {
	if f.Cap.PullGetChecks == nil {
		return nil, f.Cap.Unsupported("pull_get_checks")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.PullGetChecks(ctx, f.Ctx, path)
}

// PullMerge implements spec.md §4.6's pull_merge worked contract. The
// SQUASH/DELETEHEAD flag translation is backend-specific and lives inside
// each forge/* adapter's own PullMerge closure; the facade's job is purely
// validation, path adjustment, and dispatch.
func (f *Facade) PullMerge(ctx context.Context, path gclipath.Path, flags forge.MergeFlags) error {
	if f.Cap.PullMerge == nil {
		return f.Cap.Unsupported("pull_merge")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullMerge(ctx, f.Ctx, path, flags)
}

func (f *Facade) PullClose(ctx context.Context, path gclipath.Path) error {
	if f.Cap.PullClose == nil {
		return f.Cap.Unsupported("pull_close")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullClose(ctx, f.Ctx, path)
}

func (f *Facade) PullReopen(ctx context.Context, path gclipath.Path) error {
	if f.Cap.PullReopen == nil {
		return f.Cap.Unsupported("pull_reopen")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullReopen(ctx, f.Ctx, path)
}

func (f *Facade) PullAddLabels(ctx context.Context, path gclipath.Path, labels []string) error {
	if len(labels) == 0 {
		return gclierr.Usagef("no labels given")
	}
	if f.Cap.PullAddLabels == nil {
		return f.Cap.Unsupported("pull_add_labels")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullAddLabels(ctx, f.Ctx, path, labels)
}

func (f *Facade) PullRemoveLabels(ctx context.Context, path gclipath.Path, labels []string) error {
	if len(labels) == 0 {
		return gclierr.Usagef("no labels given")
	}
	if f.Cap.PullRemoveLabels == nil {
		return f.Cap.Unsupported("pull_remove_labels")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullRemoveLabels(ctx, f.Ctx, path, labels)
}

func (f *Facade) PullSetMilestone(ctx context.Context, path gclipath.Path, milestoneID uint64) error {
	if f.Cap.PullSetMilestone == nil {
		return f.Cap.Unsupported("pull_set_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullSetMilestone(ctx, f.Ctx, path, milestoneID)
}

func (f *Facade) PullAddReviewer(ctx context.Context, path gclipath.Path, reviewer string) error {
	if reviewer == "" {
		return gclierr.Usagef("reviewer must not be empty")
	}
	if f.Cap.PullAddReviewer == nil {
		return f.Cap.Unsupported("pull_add_reviewer")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullAddReviewer(ctx, f.Ctx, path, reviewer)
}

func (f *Facade) PullClearMilestone(ctx context.Context, path gclipath.Path) error {
	if f.Cap.PullClearMilestone == nil {
		return f.Cap.Unsupported("pull_clear_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullClearMilestone(ctx, f.Ctx, path)
}

func (f *Facade) PullSetTitle(ctx context.Context, path gclipath.Path, title string) error {
	if title == "" {
		return gclierr.Usagef("title must not be empty")
	}
	if f.Cap.PullSetTitle == nil {
		return f.Cap.Unsupported("pull_set_title")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullSetTitle(ctx, f.Ctx, path, title)
}

func (f *Facade) PullCreateReview(ctx context.Context, path gclipath.Path, approve bool, comments []gclidomain.Comment) error {
	if f.Cap.PullCreateReview == nil {
		return f.Cap.Unsupported("pull_create_review")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullCreateReview(ctx, f.Ctx, path, approve, comments)
}

func (f *Facade) PullCheckout(ctx context.Context, path gclipath.Path, localBranch string) error {
	if f.Cap.PullCheckout == nil {
		return f.Cap.Unsupported("pull_checkout")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.PullCheckout(ctx, f.Ctx, path, localBranch)
}

// PullSubmit implements spec.md §4.6's pull_submit worked contract: the PR
// body POST, then optional label/reviewer follow-ups, then automerge -
// refused up front on backends whose quirks flag it unsupported, before any
// network call is made.
func (f *Facade) PullSubmit(ctx context.Context, path gclipath.Path, opts forge.PullSubmitOptions) (gclidomain.PullRequest, error) {
	if opts.Title == "" {
		return gclidomain.PullRequest{}, gclierr.Usagef("pull title must not be empty")
	}
	if opts.Head == "" || opts.Base == "" {
		return gclidomain.PullRequest{}, gclierr.Usagef("head and base branches must both be specified")
	}
	if opts.Automerge && f.Cap.PullQuirks&gclidomain.QuirkHasAutomerge == 0 {
		return gclidomain.PullRequest{}, gclierr.Usagef("automerge is not supported by this forge")
	}
	if f.Cap.PerformSubmitPull == nil {
		return gclidomain.PullRequest{}, f.Cap.Unsupported("perform_submit_pull")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.PullRequest{}, err
	}

	pr, err := f.Cap.PerformSubmitPull(ctx, f.Ctx, path, opts)
	if err != nil {
		return gclidomain.PullRequest{}, err
	}

	prPath := gclipath.Default(path.Owner, path.Repo, pr.Number)
	if len(opts.Labels) > 0 {
		if err := f.PullAddLabels(ctx, prPath, opts.Labels); err != nil {
			return pr, err
		}
	}
	for _, reviewer := range opts.Reviewers {
		if err := f.PullAddReviewer(ctx, prPath, reviewer); err != nil {
			return pr, err
		}
	}
	if opts.Automerge {
		if f.Cap.EnableAutomerge == nil {
			return pr, f.Cap.Unsupported("enable_automerge")
		}
		if err := f.Cap.EnableAutomerge(ctx, f.Ctx, prPath); err != nil {
			return pr, err
		}
	}
	return pr, nil
}

func (f *Facade) GetLabels(ctx context.Context, path gclipath.Path) ([]gclidomain.Label, error) {
	if f.Cap.GetLabels == nil {
		return nil, f.Cap.Unsupported("get_labels")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetLabels(ctx, f.Ctx, path)
}

func (f *Facade) CreateLabel(ctx context.Context, path gclipath.Path, label gclidomain.Label) error {
	if label.Name == "" {
		return gclierr.Usagef("label name must not be empty")
	}
	if f.Cap.CreateLabel == nil {
		return f.Cap.Unsupported("create_label")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.CreateLabel(ctx, f.Ctx, path, label)
}

func (f *Facade) DeleteLabel(ctx context.Context, path gclipath.Path, name string) error {
	if f.Cap.DeleteLabel == nil {
		return f.Cap.Unsupported("delete_label")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.DeleteLabel(ctx, f.Ctx, path, name)
}

func (f *Facade) GetMilestones(ctx context.Context, path gclipath.Path) ([]gclidomain.Milestone, error) {
	if f.Cap.GetMilestones == nil {
		return nil, f.Cap.Unsupported("get_milestones")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetMilestones(ctx, f.Ctx, path)
}

func (f *Facade) CreateMilestone(ctx context.Context, path gclipath.Path, m gclidomain.Milestone) (gclidomain.Milestone, error) {
	if m.Title == "" {
		return gclidomain.Milestone{}, gclierr.Usagef("milestone title must not be empty")
	}
	if f.Cap.CreateMilestone == nil {
		return gclidomain.Milestone{}, f.Cap.Unsupported("create_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Milestone{}, err
	}
	return f.Cap.CreateMilestone(ctx, f.Ctx, path, m)
}

func (f *Facade) DeleteMilestone(ctx context.Context, path gclipath.Path) error {
	if f.Cap.DeleteMilestone == nil {
		return f.Cap.Unsupported("delete_milestone")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.DeleteMilestone(ctx, f.Ctx, path)
}

func (f *Facade) MilestoneGetIssues(ctx context.Context, path gclipath.Path) ([]gclidomain.Issue, error) {
	if f.Cap.MilestoneGetIssues == nil {
		return nil, f.Cap.Unsupported("milestone_get_issues")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.MilestoneGetIssues(ctx, f.Ctx, path)
}

func (f *Facade) MilestoneSetDueDate(ctx context.Context, path gclipath.Path, dueDate int64) error {
	if f.Cap.MilestoneSetDueDate == nil {
		return f.Cap.Unsupported("milestone_set_due_date")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.MilestoneSetDueDate(ctx, f.Ctx, path, dueDate)
}

func (f *Facade) GetForks(ctx context.Context, path gclipath.Path) ([]gclidomain.Fork, error) {
	if f.Cap.GetForks == nil {
		return nil, f.Cap.Unsupported("get_forks")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetForks(ctx, f.Ctx, path)
}

func (f *Facade) ForkCreate(ctx context.Context, path gclipath.Path) (gclidomain.Fork, error) {
	if f.Cap.ForkCreate == nil {
		return gclidomain.Fork{}, f.Cap.Unsupported("fork_create")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Fork{}, err
	}
	return f.Cap.ForkCreate(ctx, f.Ctx, path)
}

func (f *Facade) GetRepos(ctx context.Context, owner string) ([]gclidomain.Repo, error) {
	if f.Cap.GetRepos == nil {
		return nil, f.Cap.Unsupported("get_repos")
	}
	return f.Cap.GetRepos(ctx, f.Ctx, owner)
}

func (f *Facade) GetOwnRepos(ctx context.Context) ([]gclidomain.Repo, error) {
	if f.Cap.GetOwnRepos == nil {
		return nil, f.Cap.Unsupported("get_own_repos")
	}
	return f.Cap.GetOwnRepos(ctx, f.Ctx)
}

func (f *Facade) RepoCreate(ctx context.Context, name, visibility string) (gclidomain.Repo, error) {
	if name == "" {
		return gclidomain.Repo{}, gclierr.Usagef("repo name must not be empty")
	}
	if f.Cap.RepoCreate == nil {
		return gclidomain.Repo{}, f.Cap.Unsupported("repo_create")
	}
	return f.Cap.RepoCreate(ctx, f.Ctx, name, visibility)
}

func (f *Facade) RepoDelete(ctx context.Context, path gclipath.Path) error {
	if f.Cap.RepoDelete == nil {
		return f.Cap.Unsupported("repo_delete")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.RepoDelete(ctx, f.Ctx, path)
}

func (f *Facade) RepoSetVisibility(ctx context.Context, path gclipath.Path, visibility string) error {
	if f.Cap.RepoSetVisibility == nil {
		return f.Cap.Unsupported("repo_set_visibility")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.RepoSetVisibility(ctx, f.Ctx, path, visibility)
}

func (f *Facade) GetNotifications(ctx context.Context, all bool) ([]gclidomain.Notification, error) {
	if f.Cap.GetNotifications == nil {
		return nil, f.Cap.Unsupported("get_notifications")
	}
	return f.Cap.GetNotifications(ctx, f.Ctx, all)
}

func (f *Facade) NotificationMarkAsRead(ctx context.Context, id uint64) error {
	if f.Cap.NotificationMarkAsRead == nil {
		return f.Cap.Unsupported("notification_mark_as_read")
	}
	return f.Cap.NotificationMarkAsRead(ctx, f.Ctx, id)
}

func (f *Facade) GetIssueComments(ctx context.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
	if f.Cap.GetIssueComments == nil {
		return nil, f.Cap.Unsupported("get_issue_comments")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetIssueComments(ctx, f.Ctx, path)
}

func (f *Facade) GetPullComments(ctx context.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
	if f.Cap.GetPullComments == nil {
		return nil, f.Cap.Unsupported("get_pull_comments")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetPullComments(ctx, f.Ctx, path)
}

func (f *Facade) GetComment(ctx context.Context, path gclipath.Path, id uint64) (gclidomain.Comment, error) {
	if f.Cap.GetComment == nil {
		return gclidomain.Comment{}, f.Cap.Unsupported("get_comment")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Comment{}, err
	}
	return f.Cap.GetComment(ctx, f.Ctx, path, id)
}

func (f *Facade) PerformSubmitComment(ctx context.Context, path gclipath.Path, body string) (gclidomain.Comment, error) {
	if body == "" {
		return gclidomain.Comment{}, gclierr.Usagef("comment body must not be empty")
	}
	if f.Cap.PerformSubmitComment == nil {
		return gclidomain.Comment{}, f.Cap.Unsupported("perform_submit_comment")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Comment{}, err
	}
	return f.Cap.PerformSubmitComment(ctx, f.Ctx, path, body)
}

func (f *Facade) SSHKeysList(ctx context.Context) ([]gclidomain.SSHKey, error) {
	if f.Cap.SSHKeysList == nil {
		return nil, f.Cap.Unsupported("sshkeys_list")
	}
	return f.Cap.SSHKeysList(ctx, f.Ctx)
}

// SSHKeysAdd computes the key's fingerprint via forge.Fingerprint before
// upload, per SPEC_FULL.md §4.11, so every backend's stored record carries
// one regardless of whether the backend's own API echoes it back.
func (f *Facade) SSHKeysAdd(ctx context.Context, title, publicKey string) (gclidomain.SSHKey, error) {
	if f.Cap.SSHKeysAdd == nil {
		return gclidomain.SSHKey{}, f.Cap.Unsupported("sshkeys_add")
	}
	fp, err := forge.Fingerprint(publicKey)
	if err != nil {
		return gclidomain.SSHKey{}, err
	}
	key, err := f.Cap.SSHKeysAdd(ctx, f.Ctx, title, publicKey)
	if err != nil {
		return gclidomain.SSHKey{}, err
	}
	key.Fingerprint = fp
	return key, nil
}

func (f *Facade) SSHKeysDelete(ctx context.Context, id uint64) error {
	if f.Cap.SSHKeysDelete == nil {
		return f.Cap.Unsupported("sshkeys_delete")
	}
	return f.Cap.SSHKeysDelete(ctx, f.Ctx, id)
}

func (f *Facade) GetPipelines(ctx context.Context, path gclipath.Path) ([]gclidomain.Pipeline, error) {
	if f.Cap.GetPipelines == nil {
		return nil, f.Cap.Unsupported("get_pipelines")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetPipelines(ctx, f.Ctx, path)
}

func (f *Facade) GetPipeline(ctx context.Context, path gclipath.Path, id uint64) (gclidomain.Pipeline, error) {
	if f.Cap.GetPipeline == nil {
		return gclidomain.Pipeline{}, f.Cap.Unsupported("get_pipeline")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Pipeline{}, err
	}
	return f.Cap.GetPipeline(ctx, f.Ctx, path, id)
}

func (f *Facade) GetPipelineJobs(ctx context.Context, path gclipath.Path, id uint64) ([]gclidomain.Job, error) {
	if f.Cap.GetPipelineJobs == nil {
		return nil, f.Cap.Unsupported("get_pipeline_jobs")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetPipelineJobs(ctx, f.Ctx, path, id)
}

func (f *Facade) GetPipelineChildren(ctx context.Context, path gclipath.Path, id uint64) ([]gclidomain.Pipeline, error) {
	if f.Cap.GetPipelineChildren == nil {
		return nil, f.Cap.Unsupported("get_pipeline_children")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.GetPipelineChildren(ctx, f.Ctx, path, id)
}

func (f *Facade) GetJob(ctx context.Context, path gclipath.Path, id uint64) (gclidomain.Job, error) {
	if f.Cap.GetJob == nil {
		return gclidomain.Job{}, f.Cap.Unsupported("get_job")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return gclidomain.Job{}, err
	}
	return f.Cap.GetJob(ctx, f.Ctx, path, id)
}

func (f *Facade) JobGetLog(ctx context.Context, path gclipath.Path, id uint64) (string, error) {
	if f.Cap.JobGetLog == nil {
		return "", f.Cap.Unsupported("job_get_log")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return "", err
	}
	return f.Cap.JobGetLog(ctx, f.Ctx, path, id)
}

func (f *Facade) JobDownloadArtifacts(ctx context.Context, path gclipath.Path, id uint64) ([]byte, error) {
	if f.Cap.JobDownloadArtifacts == nil {
		return nil, f.Cap.Unsupported("job_download_artifacts")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	return f.Cap.JobDownloadArtifacts(ctx, f.Ctx, path, id)
}

func (f *Facade) JobRetry(ctx context.Context, path gclipath.Path, id uint64) error {
	if f.Cap.JobRetry == nil {
		return f.Cap.Unsupported("job_retry")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.JobRetry(ctx, f.Ctx, path, id)
}

func (f *Facade) JobCancel(ctx context.Context, path gclipath.Path, id uint64) error {
	if f.Cap.JobCancel == nil {
		return f.Cap.Unsupported("job_cancel")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return err
	}
	return f.Cap.JobCancel(ctx, f.Ctx, path, id)
}

// CI serves the single `ci` verb, per DESIGN.md's Open Question decision
// #3: it returns pull_get_checks when the backend has it, otherwise the
// merge request's pipelines as CheckRun entries of Kind "pipeline". Jobs are
// not listed, and a backend with neither capability gets an unsupported
// error.
func (f *Facade) CI(ctx context.Context, path gclipath.Path) ([]gclidomain.CheckRun, error) {
	if f.Cap.PullGetChecks != nil {
		return f.PullGetChecks(ctx, path)
	}
	if f.Cap.GetMRPipelines == nil {
		return nil, f.Cap.Unsupported("ci")
	}
	path, err := f.sanitise(path)
	if err != nil {
		return nil, err
	}
	pipelines, err := f.Cap.GetMRPipelines(ctx, f.Ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]gclidomain.CheckRun, 0, len(pipelines))
	for _, p := range pipelines {
		out = append(out, gclidomain.CheckRun{Kind: "pipeline", ID: p.ID, Status: p.Status, Ref: p.Ref, WebURL: p.WebURL})
	}
	return out, nil
}
