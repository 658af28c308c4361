// Package seal derives a per-key sealing key via HKDF-SHA256 and seals
// symbolic secret material with ChaCha20-Poly1305, grounded on the
// teacher's internal/crypto.DeriveKey (HKDF) pattern but swapping the
// teacher's hand-rolled AES-GCM for x/crypto's chacha20poly1305 AEAD so
// the implementation exercises both AEAD constructions already present
// in the teacher's dependency tree (see SPEC_FULL.md §4).
//
// Nothing here ever touches a real secret: KeyInventory's "key material"
// is always synthetic (a hash of an id and a fresh UUID), matching spec
// §9's "symbolic side effects" note — this package exists to give that
// symbolic material a realistic at-rest representation, not to protect
// anything load-bearing.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a 32-byte key from a master secret, a salt (typically
// the owning record's id) and an info string describing the purpose.
func DeriveKey(master, salt []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, salt, []byte(info))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with a key derived by DeriveKey, returning
// nonce||ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("seal: ciphertext too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
