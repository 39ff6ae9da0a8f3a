package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herrhotzenplotz/gcli-go/internal/config"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
)

func TestMergePrioritizesLaterConfigs(t *testing.T) {
	base := config.Config{Cache: config.CacheConfig{Directory: "default"}}
	file := config.Config{Cache: config.CacheConfig{Directory: "file"}}
	final := config.Config{Cache: config.CacheConfig{Directory: "env"}}

	merged := config.Merge(base, file, final)

	assert.Equal(t, "env", merged.Cache.Directory)
}

func TestMergeReplacesAccountsWhenOverlayHasAny(t *testing.T) {
	base := config.Config{
		Accounts: []config.Account{{Forge: "github", Token: "base-token"}},
	}
	overlay := config.Config{
		Accounts: []config.Account{{Forge: "gitlab", Token: "overlay-token"}},
	}

	merged := config.Merge(base, overlay)

	require.Len(t, merged.Accounts, 1)
	assert.Equal(t, "gitlab", merged.Accounts[0].Forge)
}

func TestMergePreservesAccountsWhenOverlayHasNone(t *testing.T) {
	base := config.Config{
		Accounts: []config.Account{{Forge: "github", Token: "base-token"}},
	}
	overlay := config.Config{}

	merged := config.Merge(base, overlay)

	require.Len(t, merged.Accounts, 1)
	assert.Equal(t, "github", merged.Accounts[0].Forge)
}

func TestMergeHTTPPrefersOverlayWhenAnyFieldSet(t *testing.T) {
	base := config.Config{HTTP: config.HTTPConfig{Timeout: "10s", MaxRetries: 5}}
	overlay := config.Config{HTTP: config.HTTPConfig{MaxRetries: 2}}

	merged := config.Merge(base, overlay)

	assert.Equal(t, 2, merged.HTTP.MaxRetries)
	assert.Equal(t, "", merged.HTTP.Timeout)
}

func TestLoadAppliesHTTPAndCacheDefaults(t *testing.T) {
	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{},
		FileName:    "nonexistent",
		EnvPrefix:   "GCLI_TEST_DEFAULTS",
	})
	require.NoError(t, err)

	assert.Equal(t, "30s", cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, "500ms", cfg.HTTP.InitialBackoff)
	assert.Equal(t, "10s", cfg.HTTP.MaxBackoff)
	assert.Equal(t, 2.0, cfg.HTTP.BackoffMultiplier)
	assert.NotEmpty(t, cfg.Cache.Directory)
}

func TestLoadReadsAccountsFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.yaml")
	content := `
accounts:
  - forge: github
    baseUrl: https://api.github.com
    token: from-file-token
    default: true
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    "accounts",
		EnvPrefix:   "GCLI_TEST_ACCOUNTS_FILE",
	})
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "github", cfg.Accounts[0].Forge)
	assert.Equal(t, "from-file-token", cfg.Accounts[0].Token)
	assert.True(t, cfg.Accounts[0].Default)
}

func TestLoadEnvOverridesCacheDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(file, []byte("cache:\n  directory: from-file\n"), 0o600))

	t.Setenv("GCLI_TEST_CACHE_ENV_CACHE_DIRECTORY", "from-env")

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    "accounts",
		EnvPrefix:   "GCLI_TEST_CACHE_ENV",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Cache.Directory)
}

func newLookup(accounts ...config.Account) gclictx.AccountLookup {
	return config.NewAccountLookup(config.Config{Accounts: accounts})
}

func TestDefaultAccountReturnsTheAccountMarkedDefault(t *testing.T) {
	lookup := newLookup(
		config.Account{Forge: "github", Token: "one"},
		config.Account{Forge: "github", Token: "two", Default: true},
	)

	acct, ok := lookup.DefaultAccount(gclictx.ForgeGitHub)
	require.True(t, ok)
	assert.Equal(t, "two", acct.Token)
}

func TestDefaultAccountReturnsSoleAccountWhenNoneMarkedDefault(t *testing.T) {
	lookup := newLookup(config.Account{Forge: "gitlab", Token: "solo"})

	acct, ok := lookup.DefaultAccount(gclictx.ForgeGitLab)
	require.True(t, ok)
	assert.Equal(t, "solo", acct.Token)
}

func TestDefaultAccountIsAmbiguousWhenMultipleAndNoneDefault(t *testing.T) {
	lookup := newLookup(
		config.Account{Forge: "gitea", Token: "one"},
		config.Account{Forge: "gitea", Token: "two"},
	)

	_, ok := lookup.DefaultAccount(gclictx.ForgeGitea)
	assert.False(t, ok)
}

func TestDefaultAccountReturnsFalseWhenForgeUnconfigured(t *testing.T) {
	lookup := newLookup(config.Account{Forge: "github", Token: "one"})

	_, ok := lookup.DefaultAccount(gclictx.ForgeBugzilla)
	assert.False(t, ok)
}
