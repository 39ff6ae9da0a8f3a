// Package gclipath implements the backend-independent name of a remote
// object (spec.md §3, §4.2), grounded on original_source/include/gcli/path.h's
// tagged union (GCLI_PATH_DEFAULT/URL/BUGZILLA/ID).
package gclipath

import "github.com/herrhotzenplotz/gcli-go/internal/gclierr"

// Kind discriminates the Path variants.
type Kind int

const (
	// KindDefault names an object by owner/repo/id; id == 0 denotes the
	// repository itself.
	KindDefault Kind = iota
	// KindBugzilla names a product/component pair on the Bugzilla-like
	// tracker.
	KindBugzilla
	// KindID is a raw numeric id in a forge that supports it.
	KindID
	// KindURL is a pre-resolved absolute URL, bypassing construction.
	KindURL
)

// Path is the tagged union described in spec.md §3.
type Path struct {
	Kind Kind

	Owner string
	Repo  string
	ID    uint64

	Product   string
	Component string

	URL string
}

// Default constructs a Path{owner, repo, id}.
func Default(owner, repo string, id uint64) Path {
	return Path{Kind: KindDefault, Owner: owner, Repo: repo, ID: id}
}

// Bugzilla constructs a Path{product, component}.
func Bugzilla(product, component string) Path {
	return Path{Kind: KindBugzilla, Product: product, Component: component}
}

// ID constructs a raw-id Path.
func ID(id uint64) Path {
	return Path{Kind: KindID, ID: id}
}

// URL constructs a pre-resolved-URL Path.
func URL(url string) Path {
	return Path{Kind: KindURL, URL: url}
}

// Inferrer resolves owner/repo from ambient state (config default account,
// or the checked-out repository's origin remote) when both names are
// omitted. It is the "config/git inference" spec.md §3 and §4.2 mention;
// the core never parses configuration files itself, it only calls this.
type Inferrer interface {
	InferOwnerRepo() (owner, repo string, err error)
}

// Sanitise applies spec.md §4.2's reinterpretation and inference rules.
// isBugzilla selects the Bugzilla-specific reinterpretation branch.
func Sanitise(p Path, isBugzilla bool, infer Inferrer) (Path, error) {
	if p.Kind == KindURL || p.Kind == KindID {
		return p, nil
	}

	if isBugzilla && p.Kind == KindDefault {
		switch {
		case p.ID == 0:
			return Bugzilla(p.Owner, p.Repo), nil
		case p.Owner == "" && p.Repo == "":
			return ID(p.ID), nil
		default:
			return Bugzilla(p.Owner, p.Repo), nil
		}
	}

	if p.Kind != KindDefault {
		return p, nil
	}

	switch {
	case p.Owner != "" && p.Repo != "":
		return p, nil
	case p.Owner == "" && p.Repo == "":
		if infer == nil {
			return Path{}, gclierr.Usagef("owner and repository not specified and no inference source available")
		}
		owner, repo, err := infer.InferOwnerRepo()
		if err != nil {
			return Path{}, gclierr.Usagef("infer owner/repository: %v", err)
		}
		if owner == "" || repo == "" {
			return Path{}, gclierr.Usagef("owner and repository not specified and could not be inferred")
		}
		result := p
		result.Owner, result.Repo = owner, repo
		return result, nil
	default:
		return Path{}, gclierr.Usagef("only one of owner/repository was specified; both or neither are required")
	}
}

// String renders the path for diagnostics and log fields.
func (p Path) String() string {
	switch p.Kind {
	case KindDefault:
		if p.ID == 0 {
			return p.Owner + "/" + p.Repo
		}
		return p.Owner + "/" + p.Repo + "#" + itoa(p.ID)
	case KindBugzilla:
		return p.Product + "/" + p.Component
	case KindID:
		return "#" + itoa(p.ID)
	case KindURL:
		return p.URL
	default:
		return ""
	}
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
