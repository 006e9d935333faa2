// Package evidence provides chain-of-custody helpers around evidence files.
package evidence

import (
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// VerifyDetachedSignature checks an armored detached PGP signature over the
// evidence stream against an armored keyring and returns the signer identity.
func VerifyDetachedSignature(image io.Reader, armoredSig io.Reader, keyring io.Reader) (string, error) {
	keys, err := openpgp.ReadArmoredKeyRing(keyring)
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}

	signer, err := openpgp.CheckArmoredDetachedSignature(keys, image, armoredSig, nil)
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	for name := range signer.Identities {
		return name, nil
	}
	return fmt.Sprintf("key %016X", signer.PrimaryKey.KeyId), nil
}
