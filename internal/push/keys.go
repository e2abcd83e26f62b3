package push

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const authSecretLength = 16

// Keys is the receiver-side key material of a subscription, in the
// base64url (unpadded) encoding the registration endpoint expects.
type Keys struct {
	P256dh string `json:"p256dh"` // uncompressed P-256 public point
	Auth   string `json:"auth"`   // 16-byte auth secret
}

// Subscription is a device's push subscription. PrivateKey never leaves the
// device; the backend only ever sees the endpoint and the public keys.
type Subscription struct {
	Endpoint   string `json:"endpoint"`
	Keys       Keys   `json:"keys"`
	PrivateKey string `json:"private_key"`
}

// GenerateKeys creates a fresh receiver keypair and auth secret.
func GenerateKeys() (keys Keys, privateKey string, err error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return Keys{}, "", fmt.Errorf("failed to generate receiver keypair: %w", err)
	}

	auth := make([]byte, authSecretLength)
	if _, err := rand.Read(auth); err != nil {
		return Keys{}, "", fmt.Errorf("failed to generate auth secret: %w", err)
	}

	keys = Keys{
		P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
	return keys, base64.RawURLEncoding.EncodeToString(priv.Bytes()), nil
}

func (s *Subscription) privateKey() (*ecdh.PrivateKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	priv, err := ecdh.P256().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return priv, nil
}

func (s *Subscription) authSecret() ([]byte, error) {
	auth, err := base64.RawURLEncoding.DecodeString(s.Keys.Auth)
	if err != nil {
		return nil, fmt.Errorf("invalid auth secret encoding: %w", err)
	}
	if len(auth) != authSecretLength {
		return nil, fmt.Errorf("auth secret must be %d bytes, got %d", authSecretLength, len(auth))
	}
	return auth, nil
}
