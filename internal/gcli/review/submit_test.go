package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/diff"
)

func TestGithubEventMapsEachOutcome(t *testing.T) {
	assert.Equal(t, "APPROVE", githubEvent(OutcomeAccept))
	assert.Equal(t, "REQUEST_CHANGES", githubEvent(OutcomeRequestChanges))
	assert.Equal(t, "COMMENT", githubEvent(OutcomeComment))
}

func TestBuildGitHubReviewPayloadBatchesComments(t *testing.T) {
	comments := []diff.Comment{
		{
			Path: "main.go", Body: "nit\n",
			Before: diff.Anchor{StartRow: 10, EndRow: 10, IsInNew: true},
			After:  diff.Anchor{StartRow: 12, EndRow: 12, IsInNew: true},
		},
	}
	out, err := buildGitHubReviewPayload(OutcomeRequestChanges, "overall body", comments)
	require.NoError(t, err)
	assert.Contains(t, out, `"event":"REQUEST_CHANGES"`)
	assert.Contains(t, out, `"path":"main.go"`)
	assert.Contains(t, out, `"line":12`)
	assert.Contains(t, out, `"side":"RIGHT"`)
}

func TestBuildGitHubReviewPayloadMultiLineCommentUsesStartLine(t *testing.T) {
	comments := []diff.Comment{
		{
			Path: "main.go", Body: "span\n",
			Before: diff.Anchor{StartRow: 10, EndRow: 10, IsInNew: true},
			After:  diff.Anchor{StartRow: 12, EndRow: 15, IsInNew: true},
		},
	}
	out, err := buildGitHubReviewPayload(OutcomeComment, "", comments)
	require.NoError(t, err)
	assert.Contains(t, out, `"start_line":12`)
	assert.Contains(t, out, `"line":15`)
}

func TestBuildGitHubReviewPayloadOmitsCommentsArrayWhenEmpty(t *testing.T) {
	out, err := buildGitHubReviewPayload(OutcomeAccept, "lgtm", nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "comments")
}

func TestLineCodeIsSha1OfFilenameAndLines(t *testing.T) {
	code := lineCode("main.go", 3, 4)
	assert.Regexp(t, `^[0-9a-f]{40}_3_4$`, code)
}

func TestLineTypeReflectsIsInNew(t *testing.T) {
	assert.Equal(t, "new", lineType(true))
	assert.Equal(t, "old", lineType(false))
}

func TestBuildGitLabDiscussionPayloadIncludesPositionShas(t *testing.T) {
	c := diff.Comment{
		Path: "main.go", Body: "please fix\n",
		Before: diff.Anchor{StartRow: 3, EndRow: 3, IsInNew: false},
		After:  diff.Anchor{StartRow: 4, EndRow: 4, IsInNew: true},
	}
	out, err := buildGitLabDiscussionPayload(c, map[string]string{
		"base_sha": "aaa", "start_sha": "bbb", "head_sha": "ccc",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"base_sha":"aaa"`)
	assert.Contains(t, out, `"start_sha":"bbb"`)
	assert.Contains(t, out, `"head_sha":"ccc"`)
	assert.Contains(t, out, `"old_path":"main.go"`)
	assert.Contains(t, out, lineCode("main.go", 3, 4))
}

func TestSideAndLineHelpersPreferAfterAnchor(t *testing.T) {
	c := diff.Comment{
		Before: diff.Anchor{StartRow: 1, EndRow: 2, IsInNew: false},
		After:  diff.Anchor{StartRow: 5, EndRow: 6, IsInNew: true},
	}
	assert.Equal(t, 5, startLine(c))
	assert.Equal(t, 6, endLine(c))
	assert.Equal(t, "RIGHT", side(c.After.IsInNew))
}
