// Package config is the ambient configuration system spec.md §4.1 refers
// to as the Context's "opaque configuration lookup": one or more forge
// accounts (type, base URL, token, default flag), HTTP tuning, and the
// review cache directory. The core never parses this package's file
// format itself — it only sees gclictx.AccountLookup. Grounded on the
// teacher's internal/config/{config.go,loader.go} (spf13/viper), narrowed
// from the teacher's LLM-provider/budget/redaction schema to the account
// set this tool actually needs.
package config

import "github.com/herrhotzenplotz/gcli-go/internal/gclictx"

// Config represents the full application configuration.
type Config struct {
	Accounts []Account   `yaml:"accounts"`
	HTTP     HTTPConfig  `yaml:"http"`
	Cache    CacheConfig `yaml:"cache"`
}

// Account describes one configured forge account, per spec.md §4.1's
// "one account per backend, selected by a default account pointer" and
// §6's transport boundary (bearer token sourced from configuration).
type Account struct {
	Forge   string `yaml:"forge"` // "github" | "gitlab" | "gitea" | "bugzilla"
	BaseURL string `yaml:"baseUrl"`
	Token   string `yaml:"token"`
	Default bool   `yaml:"default"`
}

// HTTPConfig holds global HTTP client tuning as loaded and merged from
// configuration. The fetch pipeline and the GitHub adapter's retrying
// transport do not read it; they use fetch.DefaultRetryConfig.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// CacheConfig configures the review diff cache directory (spec.md §4.9's
// "Persisted state").
type CacheConfig struct {
	Directory string `yaml:"directory"`
}

// Merge combines multiple configuration instances, prioritising the
// latter ones, matching the teacher's variadic Merge helper.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Cache = chooseCache(base.Cache, overlay.Cache)
	if len(overlay.Accounts) > 0 {
		result.Accounts = overlay.Accounts
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseCache(base, overlay CacheConfig) CacheConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

// accountLookup adapts a loaded Config to gclictx.AccountLookup, the
// narrow interface the core actually sees.
type accountLookup struct {
	cfg Config
}

// NewAccountLookup wraps cfg so it satisfies gclictx.AccountLookup.
func NewAccountLookup(cfg Config) gclictx.AccountLookup {
	return &accountLookup{cfg: cfg}
}

// DefaultAccount implements gclictx.AccountLookup: the account configured
// with Default: true for the given forge, or the sole configured account
// for that forge if there is exactly one and none is marked default.
func (a *accountLookup) DefaultAccount(forge gclictx.Forge) (gclictx.Account, bool) {
	name := forge.String()
	var sole *Account
	count := 0
	for i := range a.cfg.Accounts {
		acct := &a.cfg.Accounts[i]
		if acct.Forge != name {
			continue
		}
		count++
		if acct.Default {
			return toContextAccount(forge, *acct), true
		}
		sole = acct
	}
	if count == 1 {
		return toContextAccount(forge, *sole), true
	}
	return gclictx.Account{}, false
}

func toContextAccount(forge gclictx.Forge, acct Account) gclictx.Account {
	return gclictx.Account{Forge: forge, BaseURL: acct.BaseURL, Token: acct.Token}
}
