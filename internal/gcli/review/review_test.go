package review

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/diff"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/facade"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

func TestDjb2MatchesKnownValue(t *testing.T) {
	// 5381 * 33^0 chain for "ab": hash=5381; 'a'=97 -> 5381*33+97=177670;
	// 'b'=98 -> 177670*33+98=5863208.
	assert.Equal(t, uint64(5863208), djb2("ab"))
}

func TestCachePathIsStableAndBackendNamespaced(t *testing.T) {
	a := CachePath("/cache", "github", "foo", "bar", 7)
	b := CachePath("/cache", "github", "foo", "bar", 7)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "github_")
	assert.Contains(t, a, "_7.diff")

	gl := CachePath("/cache", "gitlab", "foo", "bar", 7)
	assert.NotEqual(t, a, gl, "same owner/repo/id must not collide across backends")
}

func TestStdPrompterConfirmDefaultsToNoOnEmptyAnswer(t *testing.T) {
	p := StdPrompter{In: strings.NewReader("\n"), Out: &bytes.Buffer{}}
	ok, err := p.Confirm("restart?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStdPrompterConfirmAcceptsY(t *testing.T) {
	p := StdPrompter{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	ok, err := p.Confirm("restart?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStdPrompterAskOutcomeParsesEachLetter(t *testing.T) {
	for input, want := range map[string]Outcome{
		"a\n": OutcomeAccept,
		"r\n": OutcomeRequestChanges,
		"c\n": OutcomeComment,
		"p\n": OutcomePostpone,
	} {
		p := StdPrompter{In: strings.NewReader(input), Out: &bytes.Buffer{}}
		got, err := p.AskOutcome()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStdPrompterAskOutcomeRejectsUnknownAnswer(t *testing.T) {
	p := StdPrompter{In: strings.NewReader("x\n"), Out: &bytes.Buffer{}}
	_, err := p.AskOutcome()
	assert.Error(t, err)
}

// fakeEditor is a no-op stand-in for the reviewer's real editor: the cache
// file already carries the annotations the test wants parsed.
type fakeEditor struct{}

func (fakeEditor) EditFile(ctx context.Context, path string) error { return nil }

type fixedPrompter struct {
	confirm bool
	outcome Outcome
}

func (p fixedPrompter) Confirm(string) (bool, error) { return p.confirm, nil }
func (p fixedPrompter) AskOutcome() (Outcome, error) { return p.outcome, nil }

type fakeAccounts struct {
	acct gclictx.Account
}

func (f fakeAccounts) DefaultAccount(forge gclictx.Forge) (gclictx.Account, bool) {
	return f.acct, true
}

const testPatch = "From abc123 Mon Sep 17 00:00:00 2001\n" +
	"From: A <a@example.com>\n" +
	"Subject: fix bug\n" +
	"\n" +
	"Looks fine overall.\n" +
	"\n" +
	"---\n" +
	"\n" +
	"diff --git a/x.go b/x.go\n" +
	"--- a/x.go\n" +
	"+++ b/x.go\n" +
	"@@ -1,1 +1,1 @@\n" +
	"-old\n" +
	"nit: rename this\n" +
	"+new\n"

func TestRunPostponeLeavesCacheFileAndNeverSubmits(t *testing.T) {
	dir := t.TempDir()
	cap := &forge.Capability{
		PullGetPatch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (string, error) {
			return testPatch, nil
		},
	}
	f := &facade.Facade{Cap: cap, Ctx: gclictx.New(gclictx.ForgeGitHub, fakeAccounts{gclictx.Account{BaseURL: "https://api.github.com", Token: "tok"}}, nil)}

	s := &Session{
		Facade:   f,
		Path:     gclipath.Default("o", "r", 1),
		CacheDir: dir,
		Editor:   fakeEditor{},
		Prompt:   fixedPrompter{outcome: OutcomePostpone},
	}
	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePostpone, result.Outcome)
	require.Len(t, result.Comments, 1)
	assert.Contains(t, result.Comments[0].Body, "nit: rename this")

	_, statErr := os.Stat(result.CachePath)
	assert.NoError(t, statErr, "cache file must survive a postponed review")
}

func TestRunAcceptSubmitsBatchedGitHubReview(t *testing.T) {
	dir := t.TempDir()
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cap := &forge.Capability{
		PullGetPatch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (string, error) {
			return testPatch, nil
		},
	}
	f := &facade.Facade{
		Cap: cap,
		Ctx: gclictx.New(gclictx.ForgeGitHub, fakeAccounts{gclictx.Account{BaseURL: server.URL, Token: "tok"}}, server.Client()),
	}

	s := &Session{
		Facade:   f,
		Path:     gclipath.Default("o", "r", 9),
		CacheDir: dir,
		Editor:   fakeEditor{},
		Prompt:   fixedPrompter{outcome: OutcomeAccept},
	}
	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccept, result.Outcome)
	assert.Contains(t, gotBody, `"event":"APPROVE"`)
	assert.Contains(t, gotBody, "nit: rename this")
}

func TestResolveMetadataPrefersSeriesPreludeOverPullRequest(t *testing.T) {
	f := &facade.Facade{
		Cap: &forge.Capability{
			GetPull: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
				t.Fatal("must not call GetPull when the prelude already carries every sha")
				return gclidomain.PullRequest{}, nil
			},
		},
		Ctx: gclictx.New(gclictx.ForgeGitLab, nil, nil),
	}
	s := &Session{Facade: f}
	got, err := s.resolveMetadata(context.Background(), gclipath.Default("o", "r", 1), map[string]string{
		"base_sha": "a", "start_sha": "b", "head_sha": "c",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", got["base_sha"])
}

func TestResolveMetadataFillsMissingShasFromPullRequest(t *testing.T) {
	f := &facade.Facade{
		Cap: &forge.Capability{
			GetPull: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
				return gclidomain.PullRequest{BaseSha: "base", StartSha: "start", HeadSha: "head"}, nil
			},
		},
		Ctx: gclictx.New(gclictx.ForgeGitLab, nil, nil),
	}
	s := &Session{Facade: f}
	got, err := s.resolveMetadata(context.Background(), gclipath.Default("o", "r", 1), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "base", got["base_sha"])
	assert.Equal(t, "start", got["start_sha"])
	assert.Equal(t, "head", got["head_sha"])
}

func TestNormalizeCommentFoldsCombiningSequenceToPrecomposed(t *testing.T) {
	decomposed := "cafe\u0301" // "e" followed by a combining acute accent
	precomposed := "caf\u00e9"
	assert.Equal(t, precomposed, normalizeComment(decomposed))
}

func TestBodyLinesJoinsNonEmptyPatchBodies(t *testing.T) {
	series := diff.PatchSeries{Patches: []diff.Patch{{Body: "one"}, {Body: ""}, {Body: "two"}}}
	assert.Equal(t, []string{"one", "two"}, bodyLines(series))
}
