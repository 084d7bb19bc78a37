// Package vault seals exports with a passphrase. The sealed form is a small
// JSON object so it can be stored or pasted anywhere a plain export can.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	Version    = 1
	Iterations = 200000
	saltLen    = 16
	ivLen      = 12
	keyLen     = 32
)

var (
	// ErrDecrypt covers a wrong passphrase and tampered data alike.
	ErrDecrypt        = errors.New("vault: wrong passphrase or corrupted data")
	ErrEmptyPass      = errors.New("vault: passphrase cannot be empty")
	ErrFormat         = errors.New("vault: not a sealed document")
	ErrUnsupportedVer = errors.New("vault: unsupported version")
)

// sealed is the wire form. Older browser builds wrote the ciphertext as "ct".
type sealed struct {
	V    int    `json:"v"`
	Salt string `json:"salt"`
	IV   string `json:"iv"`
	Data string `json:"data"`
	CT   string `json:"ct,omitempty"`
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, keyLen, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plain with a key derived from passphrase and a fresh salt.
func Seal(plain []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPass
	}
	salt := make([]byte, saltLen)
	iv := make([]byte, ivLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("vault salt: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("vault iv: %w", err)
	}
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("vault cipher: %w", err)
	}
	enc := base64.StdEncoding
	return json.Marshal(sealed{
		V:    Version,
		Salt: enc.EncodeToString(salt),
		IV:   enc.EncodeToString(iv),
		Data: enc.EncodeToString(gcm.Seal(nil, iv, plain, nil)),
	})
}

// IsSealed reports whether b looks like a sealed document.
func IsSealed(b []byte) bool {
	var s sealed
	if json.Unmarshal(b, &s) != nil {
		return false
	}
	return s.V != 0 && s.Salt != "" && s.IV != "" && (s.Data != "" || s.CT != "")
}

// Open reverses Seal.
func Open(b []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPass
	}
	var s sealed
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, ErrFormat
	}
	if s.V != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, s.V)
	}
	data := s.Data
	if data == "" {
		data = s.CT
	}
	enc := base64.StdEncoding
	salt, err1 := enc.DecodeString(s.Salt)
	iv, err2 := enc.DecodeString(s.IV)
	ct, err3 := enc.DecodeString(data)
	if err := errors.Join(err1, err2, err3); err != nil || len(iv) != ivLen || len(ct) == 0 {
		return nil, ErrFormat
	}
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("vault cipher: %w", err)
	}
	plain, err := gcm.Open(nil, iv, ct, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
