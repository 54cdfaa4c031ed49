package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

// sealedPrefix marks values produced by Seal.
const sealedPrefix = "gcm1:"

// SecretBox seals short secrets such as API keys before they are stored.
type SecretBox interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// AESSecretBox seals with AES-256-GCM and a random nonce per value.
type AESSecretBox struct {
	gcm cipher.AEAD
}

func NewAESSecretBox(hexKey string) (*AESSecretBox, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("invalid encryption key format")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESSecretBox{gcm: gcm}, nil
}

// Seal returns "gcm1:<nonce>:<ciphertext>" in base64. Empty stays empty.
func (b *AESSecretBox) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, b.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := b.gcm.Seal(nil, nonce, []byte(plaintext), nil)

	return sealedPrefix +
		base64.StdEncoding.EncodeToString(nonce) + ":" +
		base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal. Values stored before encryption was enabled are
// returned as they are.
func (b *AESSecretBox) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}

	parts := strings.SplitN(strings.TrimPrefix(sealed, sealedPrefix), ":", 2)
	if len(parts) != 2 {
		return "", errors.New("malformed sealed value")
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	if len(nonce) != b.gcm.NonceSize() {
		return "", errors.New("malformed sealed value")
	}

	plaintext, err := b.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// PlainBox stores secrets as they are.
type PlainBox struct{}

func (PlainBox) Seal(plaintext string) (string, error) {
	return plaintext, nil
}

func (PlainBox) Open(sealed string) (string, error) {
	if strings.HasPrefix(sealed, sealedPrefix) {
		return "", errors.New("value is encrypted but no encryption key is configured")
	}
	return sealed, nil
}
