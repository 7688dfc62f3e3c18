// Package seal adds an optional detached whole-buffer signature for
// distributed packed assets: a random salt plus an HKDF-derived
// Poly1305 MAC over the entire buffer, in the same key-derivation
// pairing the teacher uses per-chunk, collapsed here to one shot.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/poly1305"
)

const saltSize = 16

// ErrMalformedSignature is returned when a signature blob is the wrong
// size to be a seal signature at all.
var ErrMalformedSignature = errors.New("seal: malformed signature")

// ErrVerificationFailed is returned when a signature does not
// authenticate the given buffer under the given passphrase.
var ErrVerificationFailed = errors.New("seal: verification failed")

// Sign authenticates the entire buf under passphrase, returning a
// signature blob of salt (16 bytes) followed by the Poly1305 tag (16
// bytes) — the `<output>.sig` sidecar contents.
func Sign(buf []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("seal: generating salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	var mac [16]byte
	poly1305.Sum(&mac, buf, &key)

	out := make([]byte, 0, saltSize+16)
	out = append(out, salt...)
	out = append(out, mac[:]...)
	return out, nil
}

// Verify reports whether sig authenticates buf under passphrase.
func Verify(buf, sig []byte, passphrase string) error {
	if len(sig) != saltSize+16 {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedSignature, saltSize+16, len(sig))
	}
	salt := sig[:saltSize]
	providedMAC := sig[saltSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	var mac [16]byte
	poly1305.Sum(&mac, buf, &key)

	if subtle.ConstantTimeCompare(mac[:], providedMAC) != 1 {
		return ErrVerificationFailed
	}
	return nil
}

func deriveKey(passphrase string, salt []byte) ([32]byte, error) {
	var key [32]byte
	h := hkdf.New(sha256.New, []byte(passphrase), salt, []byte("rsfrontier-seal"))
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return key, fmt.Errorf("seal: deriving key: %w", err)
	}
	return key, nil
}
