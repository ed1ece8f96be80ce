package secret_test

import (
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/lifedash/portfolio-engine/internal/secret"
)

func generateKey(t *testing.T) string {
	t.Helper()
	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key.Encode()
}

func TestCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		codec, err := secret.NewCodec(generateKey(t))
		if err != nil {
			t.Fatalf("NewCodec returned error: %v", err)
		}

		token, err := codec.Encrypt("finnhub-api-token")
		if err != nil {
			t.Fatalf("Encrypt returned error: %v", err)
		}
		if token == "finnhub-api-token" {
			t.Error("Expected ciphertext to differ from plaintext")
		}

		plaintext, err := codec.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt returned error: %v", err)
		}
		if plaintext != "finnhub-api-token" {
			t.Errorf("Expected round-tripped value, got '%s'", plaintext)
		}
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		if _, err := secret.NewCodec("not-a-key"); err == nil {
			t.Error("Expected error for malformed key")
		}
	})

	t.Run("rejects token from another key", func(t *testing.T) {
		codecA, err := secret.NewCodec(generateKey(t))
		if err != nil {
			t.Fatal(err)
		}
		codecB, err := secret.NewCodec(generateKey(t))
		if err != nil {
			t.Fatal(err)
		}

		token, err := codecA.Encrypt("value")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := codecB.Decrypt(token); err == nil {
			t.Error("Expected decryption with the wrong key to fail")
		}
	})
}
