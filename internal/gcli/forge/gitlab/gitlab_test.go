package gitlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuthHeaderUsesPrivateTokenHeader(t *testing.T) {
	c := New("tok123", "https://gitlab.example")
	name, value := c.GetAuthHeader(nil)
	assert.Equal(t, "PRIVATE-TOKEN", name)
	assert.Equal(t, "tok123", value)
}

func TestAPIErrorStringPrefersJSONMessage(t *testing.T) {
	c := New("tok123", "https://gitlab.example")
	msg := c.APIErrorString(404, []byte(`{"message":"404 Project Not Found"}`))
	assert.Contains(t, msg, "404 Project Not Found")
}

func TestAPIErrorStringFallsBackToRawBody(t *testing.T) {
	c := New("tok123", "https://gitlab.example")
	msg := c.APIErrorString(500, []byte("internal error"))
	assert.Contains(t, msg, "internal error")
}

func TestJoinCommaBuildsGitLabLabelList(t *testing.T) {
	assert.Equal(t, "bug,wontfix", joinComma([]string{"bug", "wontfix"}))
	assert.Equal(t, "", joinComma(nil))
}

func TestToIssueMapsMilestoneAndAssignees(t *testing.T) {
	ai := apiIssue{
		IID: 7, Title: "crash on boot", State: "opened",
		Author:    apiUser{Username: "alice"},
		Milestone: &apiMilestone{Title: "v2.0"},
		Labels:    []string{"bug", "p1"},
		Assignees: []apiUser{{Username: "bob"}},
	}
	iss := toIssue(ai)
	assert.Equal(t, uint64(7), iss.Number)
	assert.Equal(t, "v2.0", iss.Milestone)
	assert.Equal(t, []string{"bob"}, iss.Assignees)
	require.Len(t, iss.Labels, 2)
	assert.Equal(t, "bug", iss.Labels[0].Name)
}

func TestToPullRequestDerivesMergedAndMergeable(t *testing.T) {
	mr := apiMergeRequest{IID: 3, State: "merged", MergeStatus: "can_be_merged", SourceBranch: "feature", TargetBranch: "main"}
	pr := toPullRequest(mr)
	assert.True(t, pr.Merged)
	assert.True(t, pr.Mergeable)
	assert.Equal(t, "feature", pr.HeadLabel)
}

func TestToCommentsMapsAuthorUsername(t *testing.T) {
	notes := []apiComment{{ID: 1, Body: "lgtm", Author: apiUser{Username: "carol"}}}
	out := toComments(notes)
	require.Len(t, out, 1)
	assert.Equal(t, "carol", out[0].Author)
}
