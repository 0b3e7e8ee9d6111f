// Package secret implements the codec for custodial wallet key material.
//
// The codec is constructed once at process start from an externally supplied
// 32-byte key and injected into the executor. It is never rebuilt with a
// generated key mid-process: wallet secrets encrypted under the original key
// must stay decryptable for the lifetime of the stored wallets.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

var (
	ErrBadKeySize  = errors.New("secret: encryption key must be 32 bytes")
	ErrCorruptData = errors.New("secret: ciphertext corrupt or wrong key")
)

// Codec seals and opens wallet secrets with AES-256-GCM.
// Ciphertext layout: nonce || sealed payload.
type Codec struct {
	aead cipher.AEAD
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, ErrBadKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	return &Codec{aead: aead}, nil
}

func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Codec) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns+c.aead.Overhead() {
		return nil, ErrCorruptData
	}
	plain, err := c.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, ErrCorruptData
	}
	return plain, nil
}

// Zero wipes decrypted key material once the signer is done with it.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
