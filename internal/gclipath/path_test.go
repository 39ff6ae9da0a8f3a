package gclipath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticInferrer struct {
	owner, repo string
	err         error
}

func (s staticInferrer) InferOwnerRepo() (string, string, error) {
	return s.owner, s.repo, s.err
}

func TestSanitiseIdentityWhenBothSet(t *testing.T) {
	for _, isBugzilla := range []bool{false, true} {
		p := Default("octo", "cat", 42)
		got, err := Sanitise(p, isBugzilla, nil)
		require.NoError(t, err)
		if isBugzilla {
			assert.Equal(t, Bugzilla("octo", "cat"), got)
		} else {
			assert.Equal(t, p, got)
		}
	}
}

func TestSanitiseBugzillaZeroIDBecomesProductComponent(t *testing.T) {
	got, err := Sanitise(Default("firefox", "core", 0), true, nil)
	require.NoError(t, err)
	assert.Equal(t, Bugzilla("firefox", "core"), got)
}

func TestSanitiseBugzillaBareIDBecomesID(t *testing.T) {
	got, err := Sanitise(Default("", "", 99), true, nil)
	require.NoError(t, err)
	assert.Equal(t, ID(99), got)
}

func TestSanitiseInfersWhenBothMissing(t *testing.T) {
	got, err := Sanitise(Default("", "", 7), false, staticInferrer{owner: "octo", repo: "cat"})
	require.NoError(t, err)
	assert.Equal(t, Default("octo", "cat", 7), got)
}

func TestSanitiseOneMissingIsUsageError(t *testing.T) {
	_, err := Sanitise(Default("octo", "", 7), false, nil)
	require.Error(t, err)
}

func TestSanitisePassesThroughURLAndID(t *testing.T) {
	u := URL("https://example.com/x")
	got, err := Sanitise(u, false, nil)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	i := ID(5)
	got, err = Sanitise(i, true, nil)
	require.NoError(t, err)
	assert.Equal(t, i, got)
}
