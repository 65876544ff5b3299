// Package seal encrypts provider tokens before they are written to the database.
package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks values produced by Sealer.Seal so unsealed legacy rows can still be read.
const sealedPrefix = "sealed:v1:"

var ErrInvalidKey = errors.New("seal: key must be 32 bytes")

// Sealer seals and opens short secrets such as OAuth access and refresh tokens.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

// New returns an XChaCha20-Poly1305 sealer for a base64 encoded 32 byte key.
// An empty key returns a pass-through sealer.
func New(encodedKey string) (Sealer, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return Noop{}, nil
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("seal: decode key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("seal: new aead: %w", err)
	}
	return &xchacha{aead: aead}, nil
}

type xchacha struct {
	aead cipher.AEAD
}

func (x *xchacha) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, x.aead.NonceSize(), x.aead.NonceSize()+len(plaintext)+x.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal: nonce: %w", err)
	}
	out := x.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

func (x *xchacha) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("seal: decode: %w", err)
	}
	if len(raw) < x.aead.NonceSize() {
		return "", errors.New("seal: ciphertext too short")
	}
	nonce, ciphertext := raw[:x.aead.NonceSize()], raw[x.aead.NonceSize():]
	plain, err := x.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("seal: open: %w", err)
	}
	return string(plain), nil
}

// Noop stores values as-is.
type Noop struct{}

func (Noop) Seal(plaintext string) (string, error) { return plaintext, nil }
func (Noop) Open(value string) (string, error)     { return value, nil }
