package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvString(t *testing.T) {
	// Set test environment variables
	os.Setenv("TEST_API_KEY", "secret-key-123")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_API_KEY")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_API_KEY}",
			expected: "secret-key-123",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_API_KEY",
			expected: "secret-key-123",
		},
		{
			name:     "expand in middle of string",
			input:    "key:${TEST_API_KEY}:end",
			expected: "key:secret-key-123:end",
		},
		{
			name:     "expand multiple variables",
			input:    "${TEST_API_KEY}:${TEST_PATH}",
			expected: "secret-key-123:/path/to/data",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_GITHUB_TOKEN", "ghp-test-123")
	os.Setenv("TEST_CACHE_DIR", "/custom/cache")
	defer os.Unsetenv("TEST_GITHUB_TOKEN")
	defer os.Unsetenv("TEST_CACHE_DIR")

	cfg := Config{
		Accounts: []Account{
			{Forge: "github", BaseURL: "https://api.github.com", Token: "${TEST_GITHUB_TOKEN}"},
		},
		Cache: CacheConfig{Directory: "${TEST_CACHE_DIR}"},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "ghp-test-123", expanded.Accounts[0].Token)
	assert.Equal(t, "/custom/cache", expanded.Cache.Directory)
}

func TestLocateConfigFileFindsFileInSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/accounts.yaml"
	assert.NoError(t, os.WriteFile(path, []byte("accounts: []\n"), 0o600))

	found := locateConfigFile("accounts", []string{dir})
	assert.Equal(t, path, found)
}

func TestLocateConfigFileReturnsEmptyWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	found := locateConfigFile("nonexistent", []string{dir})
	assert.Equal(t, "", found)
}
