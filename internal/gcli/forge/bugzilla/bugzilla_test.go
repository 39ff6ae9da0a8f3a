package bugzilla

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAuthHeaderIsEmptySinceBugzillaUsesQueryAuth(t *testing.T) {
	c := New("key123", "https://bugs.example")
	name, value := c.GetAuthHeader(nil)
	assert.Equal(t, "", name)
	assert.Equal(t, "", value)
}

func TestToIssueCarriesProductAndComponent(t *testing.T) {
	b := apiBug{ID: 55, Summary: "panic on startup", Creator: "alice", Status: "NEW", Product: "core", Component: "boot"}
	iss := toIssue(b)
	assert.Equal(t, uint64(55), iss.Number)
	assert.Equal(t, "core", iss.Product)
	assert.Equal(t, "boot", iss.Component)
	assert.Equal(t, "NEW", iss.State)
}

func TestUnsupportedReportsCapabilityName(t *testing.T) {
	c := New("key123", "https://bugs.example")
	err := c.Unsupported("pull_merge")
	assert.Contains(t, err.Error(), "bugzilla")
	assert.Contains(t, err.Error(), "pull_merge")
}
