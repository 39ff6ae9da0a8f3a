// Package action implements the generic action-chain engine described in
// spec.md §4.7 and §9: an ordered sequence of verbs applied against one
// lazily-fetched shared item. Grounded on
// original_source/src/cmd/actions.c's gcli_cmd_actions_handle and
// include/gcli/cmd/actions.h's gcli_cmd_actions table, redesigned per
// spec.md §9's note to replace the void* item and byte size with a generic
// type parameter.
package action

import (
	"context"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

// Exit codes per spec.md §4.7.
const (
	ExitOK       = 0
	ExitUsage    = 1
	ExitDataErr  = 2
)

// Handler runs one action against the (possibly nil) shared item and the
// remaining CLI arguments. It returns how many additional arguments beyond
// its own name it consumed, so multi-token actions ("labels add bug") can
// do their own incremental parsing, mirroring the C API's `int *argc,
// char **argv[]` double-indirection.
type Handler[T any] func(path gclipath.Path, item *T, args []string) (consumed int, err error)

// Action is one named verb in a chain (spec.md §4.7's gcli_cmd_action).
type Action[T any] struct {
	Name      string
	NeedsItem bool
	Handler   Handler[T]
}

// Fetcher retrieves the chain's shared item exactly once, the first time an
// action that NeedsItem runs.
type Fetcher[T any] func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (T, error)

// Chain is the set of actions available against one path, plus how to fetch
// the shared item they may need (spec.md §4.7's gcli_cmd_actions).
type Chain[T any] struct {
	Fetch   Fetcher[T]
	Actions []Action[T]
}

func (c Chain[T]) find(name string) *Action[T] {
	for i := range c.Actions {
		if c.Actions[i].Name == name {
			return &c.Actions[i]
		}
	}
	return nil
}

// Run walks args as a sequence of actions, fetching the shared item at most
// once regardless of how many actions request it, and stops at the first
// error or when args is exhausted.
func (c Chain[T]) Run(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, args []string) (int, error) {
	if len(args) == 0 {
		return ExitUsage, gclierr.Usagef("missing action")
	}

	var item T
	var itemFetched bool

	for len(args) > 0 {
		name := args[0]
		act := c.find(name)
		if act == nil {
			return ExitUsage, gclierr.Usagef("unknown action %q", name)
		}

		if act.NeedsItem && !itemFetched {
			fetched, err := c.Fetch(ctx, gctx, path)
			if err != nil {
				return ExitDataErr, err
			}
			item = fetched
			itemFetched = true
		}

		var itemPtr *T
		if itemFetched {
			itemPtr = &item
		}

		consumed, err := act.Handler(path, itemPtr, args[1:])
		if err != nil {
			return ExitDataErr, err
		}

		args = args[1+consumed:]
	}

	return ExitOK, nil
}
