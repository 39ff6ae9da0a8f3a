// Package gitremote wraps the on-disk checked-out repository for the two
// things the core needs from it (SPEC_FULL.md §4.12): inferring owner/repo
// from the origin remote when a path omits them, and fetching a pull
// request's head ref into a local branch for "checkout". Grounded on the
// teacher's internal/adapter/git.Engine, which wraps the same go-git
// primitives (PlainOpenWithOptions, repo.Head, ResolveRevision) for its own
// diff/branch needs.
package gitremote

import (
	"context"
	"fmt"
	"regexp"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// Remote is the git-remote-backed half of path inference and the
// pull_checkout verb, scoped to one on-disk repository.
type Remote struct {
	repoDir string
}

// New constructs a Remote rooted at repoDir.
func New(repoDir string) *Remote {
	return &Remote{repoDir: repoDir}
}

func (r *Remote) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(r.repoDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, gclierr.Transportf("git", false, "open repository: %v", err)
	}
	return repo, nil
}

// originURLPattern matches both scp-like (git@host:owner/repo.git) and URL
// (https://host/owner/repo.git, ssh://git@host/owner/repo) remote forms.
var originURLPattern = regexp.MustCompile(`[:/]([^/:]+)/([^/]+?)(\.git)?/?$`)

// InferOwnerRepo implements gclipath.Inferrer by reading the origin
// remote's URL from the checked-out repository, per SPEC_FULL.md §4.12 —
// this is git-remote inference, not configuration-file parsing.
func (r *Remote) InferOwnerRepo() (owner, repo string, err error) {
	gitRepo, err := r.open()
	if err != nil {
		return "", "", err
	}
	remote, err := gitRepo.Remote("origin")
	if err != nil {
		return "", "", gclierr.Transportf("git", false, "no origin remote configured: %v", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", gclierr.Transportf("git", false, "origin remote has no URL")
	}
	return parseOwnerRepo(urls[0])
}

func parseOwnerRepo(rawURL string) (owner, repo string, err error) {
	m := originURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", gclierr.Transportf("git", false, "cannot parse owner/repo from remote url %q", rawURL)
	}
	return m[1], m[2], nil
}

// CurrentBranch returns the name of the checked-out branch, adapted from
// the teacher's Engine.CurrentBranch.
func (r *Remote) CurrentBranch(ctx context.Context) (string, error) {
	gitRepo, err := r.open()
	if err != nil {
		return "", err
	}
	head, err := gitRepo.Head()
	if err != nil {
		return "", gclierr.Transportf("git", false, "resolve HEAD: %v", err)
	}
	name := head.Name()
	if !name.IsBranch() {
		return "", gclierr.Usagef("HEAD is detached, no current branch")
	}
	return name.Short(), nil
}

// headRefspec picks the remote ref a pull/merge request's head lives under,
// per SPEC_FULL.md §4.12's three-way split. Gitea has no stable numbered
// ref, so callers pass the head branch name directly as headBranch.
func headRefspec(forge gclictx.Forge, id uint64, headBranch string) (string, error) {
	switch forge {
	case gclictx.ForgeGitHub:
		return fmt.Sprintf("refs/pull/%d/head", id), nil
	case gclictx.ForgeGitLab:
		return fmt.Sprintf("refs/merge-requests/%d/head", id), nil
	case gclictx.ForgeGitea:
		if headBranch == "" {
			return "", gclierr.Usagef("gitea checkout requires the pull request's head branch name")
		}
		return "refs/heads/" + headBranch, nil
	default:
		return "", gclierr.Usagef("checkout is not supported for this forge")
	}
}

// Checkout fetches the pull/merge request's head ref from origin into
// localBranch and checks it out, per SPEC_FULL.md §4.12. headBranch is only
// consulted for Gitea, which has no numbered pull ref.
func (r *Remote) Checkout(ctx context.Context, forge gclictx.Forge, id uint64, headBranch, localBranch string) error {
	remoteRef, err := headRefspec(forge, id, headBranch)
	if err != nil {
		return err
	}
	if localBranch == "" {
		return gclierr.Usagef("local branch name must not be empty")
	}

	gitRepo, err := r.open()
	if err != nil {
		return err
	}

	refspec := config.RefSpec(fmt.Sprintf("+%s:refs/heads/%s", remoteRef, localBranch))
	err = gitRepo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refspec},
		Force:      true,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return gclierr.Transportf("git", false, "fetch %s: %v", remoteRef, err)
	}

	worktree, err := gitRepo.Worktree()
	if err != nil {
		return gclierr.Transportf("git", false, "open worktree: %v", err)
	}
	if err := worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(localBranch),
		Force:  true,
	}); err != nil {
		return gclierr.Transportf("git", false, "checkout %s: %v", localBranch, err)
	}
	return nil
}
