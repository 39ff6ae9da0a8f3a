package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patchOne = "From abc123 Mon Sep 17 00:00:00 2001\n" +
	"From: A <a@example.com>\n" +
	"Date: Mon, 1 Jan 2024 00:00:00 +0000\n" +
	"Subject: fix bug\n" +
	"\n" +
	"Some body text.\n" +
	"\n" +
	"GCLI: pull-request 42\n" +
	"---\n" +
	" x.go | 2 +-\n" +
	"\n" +
	"diff --git a/x.go b/x.go\n" +
	"--- a/x.go\n" +
	"+++ b/x.go\n" +
	"@@ -1,1 +1,1 @@\n" +
	"-old\n" +
	"+new\n"

func TestParsePatchExtractsHeaderAndMetadata(t *testing.T) {
	p, err := ParsePatch(patchOne)
	require.NoError(t, err)
	assert.Equal(t, "abc123", p.CommitHash)
	assert.Equal(t, "fix bug", p.Subject)
	assert.Equal(t, "42", p.Metadata["pull-request"])
	require.Len(t, p.Diffs, 1)
	require.Len(t, p.Diffs[0].Hunks, 1)
	assert.Equal(t, 1, p.Diffs[0].Hunks[0].RangeRStart)
}

const patchTwo = "From def456 Mon Sep 17 00:00:00 2001\n" +
	"Subject: second commit\n" +
	"\n" +
	"---\n" +
	"\n" +
	"diff --git a/y.go b/y.go\n" +
	"--- a/y.go\n" +
	"+++ b/y.go\n" +
	"@@ -2,1 +2,2 @@\n" +
	" kept\n" +
	"+added\n" +
	"looks good\n"

func TestParsePatchSeriesSplitsOnFromBoundaries(t *testing.T) {
	series, err := ParsePatchSeries(patchOne + patchTwo)
	require.NoError(t, err)
	require.Len(t, series.Patches, 2)
	assert.Equal(t, "abc123", series.Patches[0].CommitHash)
	assert.Equal(t, "def456", series.Patches[1].CommitHash)
	assert.Equal(t, "second commit", series.Patches[1].Subject)

	comments := series.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "looks good\n", comments[0].Body)
}

func TestParsePatchSeriesExtractsSeriesPreludeMetadata(t *testing.T) {
	prelude := "GCLI: base_sha AAA\nGCLI: start_sha BBB\nGCLI: head_sha CCC\n"
	series, err := ParsePatchSeries(prelude + patchOne)
	require.NoError(t, err)
	assert.Equal(t, "AAA", series.Metadata["base_sha"])
	assert.Equal(t, "BBB", series.Metadata["start_sha"])
	assert.Equal(t, "CCC", series.Metadata["head_sha"])
	require.Len(t, series.Patches, 1)
}

func TestParsePatchSeriesRejectsBufferWithoutFromLine(t *testing.T) {
	_, err := ParsePatchSeries("diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1,1 +1,1 @@\n-x\n+y\n")
	assert.Error(t, err)
}
