// Package cryptox seals session material before it is persisted locally.
// The session record and the server-issued cookies are stored on disk (or in
// redis) between CLI invocations; sealing them with AES-256-GCM keeps a
// stolen database file from yielding a live session.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

const keySize = 32 // AES-256

// Sealer performs authenticated encryption of small payloads under a key
// derived from local key material.
type Sealer struct {
	key []byte
}

// NewSealer derives a sealing key from, in order of preference:
//  1. the file at keyPath, when non-empty
//  2. the GATHERHALL_MASTER_KEY environment variable
//  3. an ephemeral random key (development only; sealed data will not
//     survive a restart)
func NewSealer(keyPath string) (*Sealer, error) {
	var material []byte

	switch {
	case keyPath != "":
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		material = data
	case os.Getenv("GATHERHALL_MASTER_KEY") != "":
		material = []byte(os.Getenv("GATHERHALL_MASTER_KEY"))
	default:
		material = make([]byte, keySize)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
	}

	// Derive a fixed-size key regardless of the material's length.
	sum := sha256.Sum256(material)
	return &Sealer{key: sum[:]}, nil
}

// NewSealerFromKey builds a Sealer directly from raw key material.
// Intended for tests.
func NewSealerFromKey(material []byte) *Sealer {
	sum := sha256.Sum256(material)
	return &Sealer{key: sum[:]}
}

// Seal encrypts plain with AES-256-GCM.
// Output format: [12-byte nonce][ciphertext][16-byte auth tag].
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plain, nil), nil
}

// Open decrypts data produced by Seal. It fails if the payload was
// tampered with or sealed under a different key.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed payload too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed payload: %w", err)
	}

	return plain, nil
}

func (s *Sealer) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}
