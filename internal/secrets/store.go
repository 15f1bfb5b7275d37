package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Tokens at rest are sealed with AES-GCM under a per-user key.
// Not a replacement for OS keychains but avoids plain-text credentials on disk.

const sealedPrefix = "v1:"

// ErrUnsealable reports a value that is not a sealed blob for this key.
var ErrUnsealable = errors.New("secrets: value cannot be unsealed")

// Sealer encrypts and decrypts short strings.
type Sealer struct {
	key []byte
}

// NewSealer derives a key from the given passphrase.
func NewSealer(passphrase string) *Sealer {
	sum := sha256.Sum256([]byte(passphrase))
	return &Sealer{key: sum[:]}
}

// UserSealer derives the key from the OS user, matching the local machine.
func UserSealer() *Sealer {
	return NewSealer(fmt.Sprintf("siteassess-%s-%s", runtime.GOOS, os.Getenv("USER")))
}

// Seal returns a printable sealed form of plain. Empty input stays empty.
func (s *Sealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ct), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", ErrUnsealable
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", ErrUnsealable
	}
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrUnsealable
	}
	nonce := raw[:gcm.NonceSize()]
	body := raw[gcm.NonceSize():]
	pt, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", ErrUnsealable
	}
	return string(pt), nil
}

func (s *Sealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
