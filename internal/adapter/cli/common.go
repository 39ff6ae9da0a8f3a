package cli

import (
	"context"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

// noCtx is used by action handlers, which (per action.Handler's signature)
// receive no context of their own. Every facade call they make is a single
// round trip kicked off interactively from a terminal, so a background
// context is as good as threading one through the whole chain package.
func noCtx() context.Context {
	return context.Background()
}

// labelAdder and labelRemover match facade.Facade's IssueAddLabels/
// PullAddLabels and their *RemoveLabels counterparts, letting issues.go and
// pulls.go share one "labels (add|remove) N..." parser.
type labelAdder func(ctx context.Context, path gclipath.Path, labels []string) error
type labelRemover func(ctx context.Context, path gclipath.Path, labels []string) error

// labelsSubAction implements the "labels (add|remove) N…" verb spec.md §6
// gives issues and pulls: the first remaining argument selects add/remove,
// every following token up to the end of args is a label name, so
// `gcli issues labels add bug needs-triage` both adds two labels and
// consumes every token it read.
func labelsSubAction(path gclipath.Path, args []string, add labelAdder, remove labelRemover) (int, error) {
	if len(args) == 0 {
		return 0, gclierr.Usagef("labels action needs add|remove")
	}

	mode := args[0]
	names := args[1:]
	if len(names) == 0 {
		return 0, gclierr.Usagef("labels %s needs at least one label name", mode)
	}

	var err error
	switch mode {
	case "add":
		err = add(noCtx(), path, names)
	case "remove":
		err = remove(noCtx(), path, names)
	default:
		return 0, gclierr.Usagef("unknown labels mode %q (want add|remove)", mode)
	}
	return len(args), err
}
