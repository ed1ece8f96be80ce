// Package secret encrypts values held at rest in the global_setting table,
// notably the upstream market-data API token.
package secret

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Codec encrypts and decrypts strings with a fernet key.
type Codec struct {
	key *fernet.Key
}

// NewCodec parses a base64url-encoded 32-byte fernet key.
func NewCodec(encodedKey string) (*Codec, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet key: %w", err)
	}
	return &Codec{key: key}, nil
}

// Encrypt returns the fernet token for a plaintext value.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token. Tokens do not expire: a zero
// TTL disables fernet's age check, since stored settings live indefinitely.
func (c *Codec) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt value: invalid or tampered token")
	}
	return string(plaintext), nil
}
