package forge

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// Fingerprint parses an OpenSSH authorized_keys-format public key and
// returns its OpenSSH-style SHA256 fingerprint ("SHA256:<base64>", no
// padding), per SPEC_FULL.md §4.11. It is the one place in the core that
// needs a real SSH-format decoder rather than a plain string copy, so every
// backend's sshkeys_add funnels through this helper before uploading a key.
func Fingerprint(authorizedKeyLine string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(strings.TrimSpace(authorizedKeyLine)))
	if err != nil {
		return "", gclierr.Usagef("not a valid SSH public key: %v", err)
	}
	sum := sha256.Sum256(pub.Marshal())
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:]), nil
}
