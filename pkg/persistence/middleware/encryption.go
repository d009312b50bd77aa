package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

const envelopePrefix = "enc:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new URLs.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	ports.Host
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts URLs with AES-GCM
// before they reach the host, for hosts that keep history at rest (Redis).
// History states pass through unchanged; they carry no user data.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Host) ports.Host {
		return &encryptionMiddleware{Host: next, config: config}
	}, nil
}

// ParseKey decodes a base64 encoded AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (m *encryptionMiddleware) PushState(ctx context.Context, state domain.HistoryState, url string) error {
	sealed, err := m.seal(url)
	if err != nil {
		return err
	}
	return m.Host.PushState(ctx, state, sealed)
}

func (m *encryptionMiddleware) ReplaceState(ctx context.Context, state domain.HistoryState, url string) error {
	sealed, err := m.seal(url)
	if err != nil {
		return err
	}
	return m.Host.ReplaceState(ctx, state, sealed)
}

func (m *encryptionMiddleware) Current(ctx context.Context) (domain.HistoryState, string, error) {
	state, sealed, err := m.Host.Current(ctx)
	if err != nil {
		return state, "", err
	}

	// Fail closed: a plain URL means the host was written without this middleware.
	encoded, ok := strings.CutPrefix(sealed, envelopePrefix)
	if !ok {
		return domain.HistoryState{}, "", errors.New("url is missing encrypted envelope")
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return domain.HistoryState{}, "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.HistoryState{}, "", fmt.Errorf("failed to decrypt url: %w", err)
	}
	return state, string(plain), nil
}

func (m *encryptionMiddleware) seal(url string) (string, error) {
	ciphertext, err := encrypt([]byte(url), m.config.ActiveKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt url: %w", err)
	}
	return envelopePrefix + base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
