package config

import (
	"encoding/base64"
	"errors"
	"os"
)

// SecretConfig supplies the symmetric key for the custodial secret codec.
// The key is externally provided and fixed for the process lifetime; it is
// never generated here, otherwise previously encrypted wallet secrets would
// become undecryptable.
type SecretConfig struct {
	EncryptionKey []byte
}

func (c *SecretConfig) Key() string {
	return SECRET_CONFIG_KEY
}

func (c *SecretConfig) Load() error {
	raw := os.Getenv("WALLET_ENCRYPTION_KEY")
	if raw == "" {
		return errors.New("secret config: WALLET_ENCRYPTION_KEY not set")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return errors.New("secret config: WALLET_ENCRYPTION_KEY is not valid base64")
	}
	c.EncryptionKey = key
	return c.Validate()
}

func (c *SecretConfig) Validate() error {
	if len(c.EncryptionKey) != 32 {
		return errors.New("secret config: encryption key must be 32 bytes")
	}
	return nil
}
