package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnseal is returned when a sealed value was tampered with or sealed under another key.
var ErrUnseal = errors.New("session: cannot unseal token")

// Sealer encrypts bearer tokens before they reach the database.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the secretbox key from secret with HKDF-SHA256.
// PRE: len(secret) >= 16
// POST: Returns a Sealer bound to the derived key
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session: sealing secret must be at least 16 bytes, got %d", len(secret))
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, secret, nil, []byte("gymportal session token"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns base64 text.
// POST: Unseal(Seal(p)) == p
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("session: nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Unseal reverses Seal.
// POST: Returns ErrUnseal for malformed or forged input
func (s *Sealer) Unseal(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}
