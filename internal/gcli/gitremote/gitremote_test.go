package gitremote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
)

func TestParseOwnerRepoHandlesSCPStyleURL(t *testing.T) {
	owner, repo, err := parseOwnerRepo("git@github.com:herrhotzenplotz/gcli.git")
	require.NoError(t, err)
	assert.Equal(t, "herrhotzenplotz", owner)
	assert.Equal(t, "gcli", repo)
}

func TestParseOwnerRepoHandlesHTTPSURL(t *testing.T) {
	owner, repo, err := parseOwnerRepo("https://gitlab.com/some-group/some-repo.git")
	require.NoError(t, err)
	assert.Equal(t, "some-group", owner)
	assert.Equal(t, "some-repo", repo)
}

func TestParseOwnerRepoHandlesURLWithoutDotGitSuffix(t *testing.T) {
	owner, repo, err := parseOwnerRepo("https://git.example.org/owner/repo")
	require.NoError(t, err)
	assert.Equal(t, "owner", owner)
	assert.Equal(t, "repo", repo)
}

func TestParseOwnerRepoRejectsUnparseableURL(t *testing.T) {
	_, _, err := parseOwnerRepo("not-a-url")
	require.Error(t, err)
}

func TestHeadRefspecGitHubUsesNumberedPullRef(t *testing.T) {
	ref, err := headRefspec(gclictx.ForgeGitHub, 42, "")
	require.NoError(t, err)
	assert.Equal(t, "refs/pull/42/head", ref)
}

func TestHeadRefspecGitLabUsesNumberedMergeRequestRef(t *testing.T) {
	ref, err := headRefspec(gclictx.ForgeGitLab, 7, "")
	require.NoError(t, err)
	assert.Equal(t, "refs/merge-requests/7/head", ref)
}

func TestHeadRefspecGiteaRequiresHeadBranchName(t *testing.T) {
	_, err := headRefspec(gclictx.ForgeGitea, 3, "")
	require.Error(t, err)

	ref, err := headRefspec(gclictx.ForgeGitea, 3, "feature-branch")
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/feature-branch", ref)
}

func TestHeadRefspecRejectsBugzilla(t *testing.T) {
	_, err := headRefspec(gclictx.ForgeBugzilla, 1, "")
	require.Error(t, err)
}
