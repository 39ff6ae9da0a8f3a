package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBhO+U6vKNyoxep4C1zbdP/hXKB/8XPAoXS3R4VXYvJO user@host"

func TestFingerprintIsDeterministic(t *testing.T) {
	a, err := Fingerprint(testPublicKey)
	require.NoError(t, err)
	b, err := Fingerprint(testPublicKey)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, len(a) > len("SHA256:"))
}

func TestFingerprintRejectsGarbage(t *testing.T) {
	_, err := Fingerprint("not a key at all")
	assert.Error(t, err)
}
