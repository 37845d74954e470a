package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
)

var encryptionKey []byte

// InitializeEncryption sets up the key used for data encrypted at rest.
func InitializeEncryption(key string) error {
	if len(key) != 32 {
		return fmt.Errorf("encryption key must be exactly 32 characters, got %d", len(key))
	}
	encryptionKey = []byte(key)
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// ComparePassword reports whether password matches the stored bcrypt hash.
func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func EncryptSensitiveData(data string) (string, error) {
	if encryptionKey == nil {
		return "", errors.New("encryption key not initialized")
	}
	if data == "" {
		return "", nil
	}

	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(data), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

func DecryptSensitiveData(encryptedData string) (string, error) {
	if encryptionKey == nil {
		return "", errors.New("encryption key not initialized")
	}
	if encryptedData == "" {
		return "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	gcm, err := newGCM()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}

// MaskAccount keeps the last four characters of an account number.
func MaskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	masked := make([]byte, len(account))
	for i := range masked {
		if i < len(account)-4 {
			masked[i] = 'X'
		} else {
			masked[i] = account[i]
		}
	}
	return string(masked)
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
