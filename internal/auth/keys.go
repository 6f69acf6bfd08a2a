package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningKeyMissing reports an attempt to sign without a private key.
// Key material problems are a bootstrap concern, never a per-request one.
var ErrSigningKeyMissing = errors.New("auth: signing key missing")

// KeyPair holds the asymmetric key material for one token class. The
// private key signs, the public key verifies; a verify-only pair (nil
// private key) is valid and lets a process check tokens without being able
// to mint them.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair parses PEM-encoded RSA key material. The public key is
// mandatory; the private key may be empty for verify-only deployments.
func LoadKeyPair(privatePEM, publicPEM string) (KeyPair, error) {
	publicPEM = strings.TrimSpace(publicPEM)
	if publicPEM == "" {
		return KeyPair{}, errors.New("auth: public key is required")
	}

	public, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return KeyPair{}, fmt.Errorf("auth: parse public key: %w", err)
	}

	pair := KeyPair{Public: public}

	if privatePEM = strings.TrimSpace(privatePEM); privatePEM != "" {
		private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
		if err != nil {
			return KeyPair{}, fmt.Errorf("auth: parse private key: %w", err)
		}
		pair.Private = private
	}

	return pair, nil
}

// CanSign reports whether the pair carries signing material.
func (p KeyPair) CanSign() bool {
	return p.Private != nil
}
