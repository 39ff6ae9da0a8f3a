package facade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
)

func newFacade(c *forge.Capability) *Facade {
	return &Facade{Cap: c, Ctx: gclictx.New(gclictx.ForgeGitHub, nil, nil)}
}

func TestSearchIssuesReportsUnsupportedWhenCapabilityNil(t *testing.T) {
	f := newFacade(&forge.Capability{Name: "stub"})
	_, err := f.SearchIssues(context.Background(), gclipath.Default("o", "r", 0), forge.IssueSearchOptions{}, -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_issues")
}

func TestIssueAddLabelsRejectsEmptyLabelList(t *testing.T) {
	called := false
	c := &forge.Capability{IssueAddLabels: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		called = true
		return nil
	}}
	f := newFacade(c)
	err := f.IssueAddLabels(context.Background(), gclipath.Default("o", "r", 1), nil)
	require.Error(t, err)
	assert.False(t, called)
}

func TestIssueAddLabelsDispatchesToCapability(t *testing.T) {
	var got []string
	c := &forge.Capability{IssueAddLabels: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		got = labels
		return nil
	}}
	f := newFacade(c)
	err := f.IssueAddLabels(context.Background(), gclipath.Default("o", "r", 1), []string{"bug", "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "p1"}, got)
}

func TestPullSubmitRefusesAutomergeWhenQuirkAbsent(t *testing.T) {
	c := &forge.Capability{
		PullQuirks: 0,
		PerformSubmitPull: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts forge.PullSubmitOptions) (gclidomain.PullRequest, error) {
			t.Fatal("must not reach the network when automerge is refused up front")
			return gclidomain.PullRequest{}, nil
		},
	}
	f := newFacade(c)
	_, err := f.PullSubmit(context.Background(), gclipath.Default("o", "r", 0), forge.PullSubmitOptions{
		Title: "fix", Head: "feature", Base: "main", Automerge: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "automerge")
}

func TestPullSubmitRunsLabelAndReviewerFollowUps(t *testing.T) {
	var labelled, reviewed []string
	c := &forge.Capability{
		PerformSubmitPull: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts forge.PullSubmitOptions) (gclidomain.PullRequest, error) {
			return gclidomain.PullRequest{Number: 9}, nil
		},
		PullAddLabels: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
			labelled = labels
			assert.Equal(t, uint64(9), path.ID)
			return nil
		},
		PullAddReviewer: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, reviewer string) error {
			reviewed = append(reviewed, reviewer)
			return nil
		},
	}
	f := newFacade(c)
	pr, err := f.PullSubmit(context.Background(), gclipath.Default("o", "r", 0), forge.PullSubmitOptions{
		Title: "fix", Head: "feature", Base: "main",
		Labels: []string{"bug"}, Reviewers: []string{"alice", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), pr.Number)
	assert.Equal(t, []string{"bug"}, labelled)
	assert.Equal(t, []string{"alice", "bob"}, reviewed)
}

func TestCIPrefersChecksOverPipelines(t *testing.T) {
	c := &forge.Capability{
		PullGetChecks: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.CheckRun, error) {
			return []gclidomain.CheckRun{{Kind: "check", ID: 1}}, nil
		},
		GetMRPipelines: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Pipeline, error) {
			t.Fatal("must not fall back to pipelines when checks are available")
			return nil, nil
		},
	}
	f := newFacade(c)
	runs, err := f.CI(context.Background(), gclipath.Default("o", "r", 1))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "check", runs[0].Kind)
}

func TestCIFallsBackToPipelinesWhenChecksUnavailable(t *testing.T) {
	c := &forge.Capability{
		GetMRPipelines: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Pipeline, error) {
			return []gclidomain.Pipeline{{ID: 42, Status: "success"}}, nil
		},
	}
	f := newFacade(c)
	runs, err := f.CI(context.Background(), gclipath.Default("o", "r", 1))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "pipeline", runs[0].Kind)
	assert.Equal(t, uint64(42), runs[0].ID)
}

func TestSSHKeysAddComputesFingerprint(t *testing.T) {
	const key = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBhO+U6vKNyoxep4C1zbdP/hXKB/8XPAoXS3R4VXYvJO user@host"
	c := &forge.Capability{
		SSHKeysAdd: func(ctx context.Context, gctx *gclictx.Context, title, publicKey string) (gclidomain.SSHKey, error) {
			return gclidomain.SSHKey{Title: title, Key: publicKey}, nil
		},
	}
	f := newFacade(c)
	k, err := f.SSHKeysAdd(context.Background(), "laptop", key)
	require.NoError(t, err)
	assert.Contains(t, k.Fingerprint, "SHA256:")
}

func TestPerformSubmitCommentRejectsEmptyBody(t *testing.T) {
	f := newFacade(&forge.Capability{})
	_, err := f.PerformSubmitComment(context.Background(), gclipath.Default("o", "r", 1), "")
	require.Error(t, err)
}
