package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

type fakeIssue struct {
	Number uint64
	Title  string
	Closed bool
}

func TestChainFetchesItemExactlyOnce(t *testing.T) {
	fetchCount := 0
	chain := Chain[fakeIssue]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (fakeIssue, error) {
			fetchCount++
			return fakeIssue{Number: 42}, nil
		},
		Actions: []Action[fakeIssue]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) {
				require.NotNil(t, item)
				return 0, nil
			}},
			{Name: "close", NeedsItem: true, Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) {
				item.Closed = true
				return 0, nil
			}},
		},
	}

	gctx := gclictx.New(gclictx.ForgeGitHub, nil, nil)
	code, err := chain.Run(context.Background(), gctx, gclipath.Default("o", "r", 42), []string{"status", "close"})
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, 1, fetchCount)
}

func TestChainUnknownActionIsUsageError(t *testing.T) {
	chain := Chain[fakeIssue]{
		Actions: []Action[fakeIssue]{
			{Name: "status", Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) { return 0, nil }},
		},
	}
	gctx := gclictx.New(gclictx.ForgeGitHub, nil, nil)
	code, err := chain.Run(context.Background(), gctx, gclipath.Default("o", "r", 1), []string{"bogus"})
	require.Error(t, err)
	assert.Equal(t, ExitUsage, code)
}

func TestChainMultiTokenActionConsumesExtraArgs(t *testing.T) {
	var added []string
	chain := Chain[fakeIssue]{
		Actions: []Action[fakeIssue]{
			{Name: "labels", Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) {
				// "labels add bug wontfix title Fix" — consume "add bug wontfix" (3 tokens).
				added = append(added, args[1], args[2])
				return 3, nil
			}},
			{Name: "title", Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) {
				return 1, nil // consumes the title text itself
			}},
		},
	}
	gctx := gclictx.New(gclictx.ForgeGitHub, nil, nil)
	code, err := chain.Run(context.Background(), gctx, gclipath.Default("o", "r", 1),
		[]string{"labels", "add", "bug", "wontfix", "title", "Fix"})
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"bug", "wontfix"}, added)
}

func TestChainFetchFailureIsDataError(t *testing.T) {
	chain := Chain[fakeIssue]{
		Fetch: func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (fakeIssue, error) {
			return fakeIssue{}, errors.New("fetch failed")
		},
		Actions: []Action[fakeIssue]{
			{Name: "status", NeedsItem: true, Handler: func(path gclipath.Path, item *fakeIssue, args []string) (int, error) { return 0, nil }},
		},
	}
	gctx := gclictx.New(gclictx.ForgeGitHub, nil, nil)
	code, err := chain.Run(context.Background(), gctx, gclipath.Default("o", "r", 1), []string{"status"})
	require.Error(t, err)
	assert.Equal(t, ExitDataErr, code)
}
