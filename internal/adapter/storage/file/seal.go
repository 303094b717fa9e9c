package file

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	saltSize = 16
	keySize  = 32
	hkdfInfo = "stay-client/credentials"
)

var (
	sealedMagic = []byte("SCv1")

	ErrSealedNoPassphrase = errors.New("credentials file is sealed but no passphrase is configured")
	ErrCiphertextTooShort = errors.New("sealed credentials are truncated")
)

func isSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, sealedMagic)
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(passphrase), salt, []byte(hkdfInfo))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, err
	}
	return key, nil
}

// seal lays out magic | salt | nonce | AES-GCM ciphertext.
func seal(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sealedMagic)+saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealedMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, sealedMagic), nil
}

func open(passphrase string, blob []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrSealedNoPassphrase
	}
	rest := blob[len(sealedMagic):]
	if len(rest) < saltSize {
		return nil, ErrCiphertextTooShort
	}
	salt, rest := rest[:saltSize], rest[saltSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(rest) < ns {
		return nil, ErrCiphertextTooShort
	}
	return gcm.Open(nil, rest[:ns], rest[ns:], sealedMagic)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
