// Package gclictx implements the per-process Context described in
// spec.md §4.1: the forge kind, an opaque configuration lookup, the
// single-writer last-error channel, and the HTTP transport handle.
package gclictx

import (
	"net/http"
	"sync"
)

// Forge enumerates the backend kinds the core dispatches to.
type Forge int

const (
	ForgeGitHub Forge = iota
	ForgeGitLab
	ForgeGitea
	ForgeBugzilla
)

func (f Forge) String() string {
	switch f {
	case ForgeGitHub:
		return "github"
	case ForgeGitLab:
		return "gitlab"
	case ForgeGitea:
		return "gitea"
	case ForgeBugzilla:
		return "bugzilla"
	default:
		return "unknown"
	}
}

// Account is the opaque configuration the context exposes per backend:
// a base URL and bearer token, per spec.md §6's transport boundary.
type Account struct {
	Forge   Forge
	BaseURL string
	Token   string
}

// AccountLookup is the narrow interface the core sees into the ambient
// configuration system (internal/config); the core never parses files.
type AccountLookup interface {
	DefaultAccount(forge Forge) (Account, bool)
}

// Context is spec.md §4.1's Context value. It is not re-entrant: "parallel
// use of one context is not supported; one operation at a time per
// context" — callers that want concurrency create one Context per worker.
type Context struct {
	Forge      Forge
	Transport  *http.Client
	Accounts   AccountLookup

	mu       sync.Mutex
	lastErr  string
}

// New constructs a Context for the given forge and account lookup.
func New(forge Forge, accounts AccountLookup, transport *http.Client) *Context {
	if transport == nil {
		transport = http.DefaultClient
	}
	return &Context{Forge: forge, Accounts: accounts, Transport: transport}
}

// SetError overwrites the context's single most-recent error string.
func (c *Context) SetError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = message
}

// GetError returns the most recently set error string.
func (c *Context) GetError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Account returns the default account configured for the context's active
// forge, per spec.md §6 ("one account per backend, selected by a 'default
// account' pointer").
func (c *Context) Account() (Account, bool) {
	if c.Accounts == nil {
		return Account{}, false
	}
	return c.Accounts.DefaultAccount(c.Forge)
}
