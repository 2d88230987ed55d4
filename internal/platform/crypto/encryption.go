// Package crypto seals sensitive employee fields with AES-256-GCM before they
// reach the database.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks a column value written by SealString. Values without it
// are returned unchanged by OpenString.
const sealedPrefix = "enc:v1:"

var ErrMalformed = errors.New("sealed value is malformed")

type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a 32-byte key given as hex or base64. An empty key
// yields a Cipher that stores values in the clear.
func New(key string) (*Cipher, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return &Cipher{}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(decoded))
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Configured() bool {
	return c != nil && c.aead != nil
}

func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	if !c.Configured() {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if !c.Configured() {
		return sealed, nil
	}
	if len(sealed) < c.aead.NonceSize() {
		return nil, ErrMalformed
	}
	nonce, data := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, data, nil)
}

// SealString returns a text-safe sealed form of value. Empty values and an
// unconfigured Cipher pass through.
func (c *Cipher) SealString(value string) (string, error) {
	if value == "" || !c.Configured() {
		return value, nil
	}
	sealed, err := c.Seal([]byte(value))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString. Values stored before encryption was enabled
// come back as they are.
func (c *Cipher) OpenString(value string) (string, error) {
	rest, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}
	if !c.Configured() {
		return "", errors.New("sealed value found but DATA_ENCRYPTION_KEY is not set")
	}
	raw, err := base64.RawStdEncoding.DecodeString(rest)
	if err != nil {
		return "", ErrMalformed
	}
	plain, err := c.Open(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return nil, errors.New("DATA_ENCRYPTION_KEY must be hex or base64")
}
