package gclictx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticLookup struct {
	account Account
	ok      bool
}

func (s staticLookup) DefaultAccount(Forge) (Account, bool) { return s.account, s.ok }

func TestSetErrorGetErrorOverwrites(t *testing.T) {
	ctx := New(ForgeGitHub, nil, nil)
	assert.Equal(t, "", ctx.GetError())

	ctx.SetError("first failure")
	assert.Equal(t, "first failure", ctx.GetError())

	ctx.SetError("second failure")
	assert.Equal(t, "second failure", ctx.GetError())
}

func TestAccountDelegatesToLookup(t *testing.T) {
	want := Account{Forge: ForgeGitLab, BaseURL: "https://gitlab.example.com", Token: "tok"}
	ctx := New(ForgeGitLab, staticLookup{account: want, ok: true}, nil)

	got, ok := ctx.Account()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestAccountFalseWithoutLookup(t *testing.T) {
	ctx := New(ForgeGitea, nil, nil)
	_, ok := ctx.Account()
	assert.False(t, ok)
}

func TestForgeString(t *testing.T) {
	assert.Equal(t, "github", ForgeGitHub.String())
	assert.Equal(t, "gitlab", ForgeGitLab.String())
	assert.Equal(t, "gitea", ForgeGitea.String())
	assert.Equal(t, "bugzilla", ForgeBugzilla.String())
}
