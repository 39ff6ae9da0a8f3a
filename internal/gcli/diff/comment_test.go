package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleLineAnchorCoversPrecedingLine(t *testing.T) {
	text := "diff --git a/pr.c b/pr.c\n" +
		"--- a/pr.c\n" +
		"+++ b/pr.c\n" +
		"@@ -1,3 +1,4 @@\n" +
		" line 1\n" +
		" line 2\n" +
		"+new line here\n" +
		"This is the first comment\n" +
		" line 3\n"

	d, err := ParseDiff(text)
	require.NoError(t, err)
	comments := d.Comments()
	require.Len(t, comments, 1)

	c := comments[0]
	assert.Equal(t, "This is the first comment\n", c.Body)
	assert.Equal(t, "+new line here\n", c.DiffText)
	assert.Equal(t, 4, c.DiffLineOffset)
	assert.Equal(t, Anchor{StartRow: 3, EndRow: 3, IsInNew: true}, c.Before)
	assert.Equal(t, Anchor{StartRow: 4, EndRow: 4, IsInNew: true}, c.After)
	assert.Equal(t, "pr.c", c.Path)
}

func TestMultiLineBraceAnchorSpansEnclosedLines(t *testing.T) {
	text := "diff --git a/pulls.h b/pulls.h\n" +
		"--- a/pulls.h\n" +
		"+++ b/pulls.h\n" +
		"@@ -57,5 +57,6 @@\n" +
		" void ghcli_print_pr_table\n" +
		" void ghcli_print_pr_diff\n" +
		" void ghcli_pr_summary\n" +
		" \n" +
		"This is a comment from line 61 to 62\n" +
		"{\n" +
		"+void ghcli_pr_submit\n" +
		" \n" +
		"}\n" +
		" #endif\n"

	d, err := ParseDiff(text)
	require.NoError(t, err)
	comments := d.Comments()
	require.Len(t, comments, 1)

	c := comments[0]
	assert.Equal(t, "This is a comment from line 61 to 62\n", c.Body)
	assert.Equal(t, "+void ghcli_pr_submit\n \n", c.DiffText)
	assert.Equal(t, 5, c.DiffLineOffset)
	assert.Equal(t, Anchor{StartRow: 61, EndRow: 62, IsInNew: true}, c.Before)
	assert.Equal(t, Anchor{StartRow: 61, EndRow: 63, IsInNew: true}, c.After)
}

func TestLeadingAngleBracketStrippedFromCommentText(t *testing.T) {
	text := "diff --git a/a.c b/a.c\n" +
		"--- a/a.c\n" +
		"+++ b/a.c\n" +
		"@@ -1,1 +1,2 @@\n" +
		"+added line\n" +
		"> quoted remark\n" +
		"> second line\n" +
		" trailing context\n"

	d, err := ParseDiff(text)
	require.NoError(t, err)
	comments := d.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "quoted remark\nsecond line\n", comments[0].Body)
}

func TestCommentWithNoPrecedingDiffLineHasEmptyDiffText(t *testing.T) {
	text := "diff --git a/a.c b/a.c\n" +
		"--- a/a.c\n" +
		"+++ b/a.c\n" +
		"@@ -1,1 +1,1 @@\n" +
		"A comment before anything changed\n" +
		" context\n"

	d, err := ParseDiff(text)
	require.NoError(t, err)
	comments := d.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "", comments[0].DiffText)
}

func TestDeletionOnlyAnchorIsNotInNew(t *testing.T) {
	text := "diff --git a/a.c b/a.c\n" +
		"--- a/a.c\n" +
		"+++ b/a.c\n" +
		"@@ -1,2 +1,1 @@\n" +
		"-removed line\n" +
		"Should not have removed this.\n" +
		" context\n"

	d, err := ParseDiff(text)
	require.NoError(t, err)
	comments := d.Comments()
	require.Len(t, comments, 1)
	assert.False(t, comments[0].Before.IsInNew)
	assert.Equal(t, "-removed line\n", comments[0].DiffText)
}
