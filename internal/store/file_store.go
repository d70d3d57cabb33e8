package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32
)

// FileStore persists the access token in a single file, sealed at rest with a
// key derived from the configured secret. The file layout is
// salt || nonce || sealed-token.
type FileStore struct {
	path   string
	secret []byte
}

// NewFileStore builds a file-backed credential store rooted at path.
func NewFileStore(path, secret string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("credential file path required")
	}
	if secret == "" {
		return nil, fmt.Errorf("credential secret required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credential directory: %w", err)
	}
	return &FileStore{path: path, secret: []byte(secret)}, nil
}

// Get reads and unseals the stored token. Returns ErrNotFound when no token
// has been persisted.
func (s *FileStore) Get(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}

	if len(raw) < saltLength+nonceLength+secretbox.Overhead {
		return "", fmt.Errorf("credential file is truncated")
	}

	salt := raw[:saltLength]
	var nonce [nonceLength]byte
	copy(nonce[:], raw[saltLength:saltLength+nonceLength])
	sealed := raw[saltLength+nonceLength:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", err
	}

	token, ok := secretbox.Open(nil, sealed, &nonce, key)
	if !ok {
		return "", fmt.Errorf("credential file failed to unseal")
	}
	return string(token), nil
}

// Set seals and writes the token, replacing any previous value.
func (s *FileStore) Set(ctx context.Context, token string) error {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return err
	}

	sealed := secretbox.Seal(nil, []byte(token), &nonce, key)

	payload := make([]byte, 0, saltLength+nonceLength+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce[:]...)
	payload = append(payload, sealed...)

	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// Remove deletes the stored token. Removing an absent token is a no-op.
func (s *FileStore) Remove(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (s *FileStore) deriveKey(salt []byte) (*[keyLength]byte, error) {
	derived, err := scrypt.Key(s.secret, salt, 1<<15, 8, 1, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive credential key: %w", err)
	}
	var key [keyLength]byte
	copy(key[:], derived)
	return &key, nil
}
