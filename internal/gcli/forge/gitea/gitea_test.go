package gitea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuthHeaderUsesTokenScheme(t *testing.T) {
	c := New("abc123", "https://gitea.example")
	name, value := c.GetAuthHeader(nil)
	assert.Equal(t, "Authorization", name)
	assert.Equal(t, "token abc123", value)
}

func TestAPIErrorStringPrefersJSONMessage(t *testing.T) {
	c := New("abc123", "https://gitea.example")
	msg := c.APIErrorString(422, []byte(`{"message":"label already exists"}`))
	assert.Contains(t, msg, "label already exists")
}

func TestToIssueDetectsPullRequestFlag(t *testing.T) {
	ai := apiIssue{Number: 4, Title: "regular issue"}
	assert.False(t, toIssue(ai).IsPR)

	pr := apiIssue{Number: 5, Title: "a PR", PullRequest: &struct{}{}}
	assert.True(t, toIssue(pr).IsPR)
}

func TestToIssueMapsLabelsAndAssignees(t *testing.T) {
	ai := apiIssue{
		Number: 9, Title: "crash", State: "open",
		Poster:    apiUser{Login: "dave"},
		Labels:    []apiLabel{{ID: 1, Name: "bug"}},
		Assignees: []apiUser{{Login: "erin"}},
		Milestone: &apiMilestone{Title: "1.0"},
	}
	iss := toIssue(ai)
	assert.Equal(t, "dave", iss.Author)
	assert.Equal(t, "1.0", iss.Milestone)
	require.Len(t, iss.Labels, 1)
	assert.Equal(t, []string{"erin"}, iss.Assignees)
}

func TestMatchLabelIDsReportsUnknownLabel(t *testing.T) {
	_, err := matchLabelIDs(map[string]uint64{"bug": 1}, []string{"triage"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triage")
}

func TestMatchLabelIDsResolvesKnownNames(t *testing.T) {
	ids, err := matchLabelIDs(map[string]uint64{"bug": 1, "wontfix": 2}, []string{"wontfix", "bug"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, ids)
}
