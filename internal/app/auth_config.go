package app

import (
	"fmt"

	"github.com/davidnrm/critiq/internal/auth"
)

// TokenServiceConfig converts AuthConfig into the parameters expected by
// the token service, parsing the PEM key material. Malformed or missing
// keys fail here, at bootstrap, rather than per request.
func (c AuthConfig) TokenServiceConfig() (auth.TokenConfig, error) {
	accessKeys, err := auth.LoadKeyPair(c.AccessTokenPrivateKey, c.AccessTokenPublicKey)
	if err != nil {
		return auth.TokenConfig{}, fmt.Errorf("access token keys: %w", err)
	}

	refreshKeys, err := auth.LoadKeyPair(c.RefreshTokenPrivateKey, c.RefreshTokenPublicKey)
	if err != nil {
		return auth.TokenConfig{}, fmt.Errorf("refresh token keys: %w", err)
	}

	return auth.TokenConfig{
		AccessKeys:      accessKeys,
		RefreshKeys:     refreshKeys,
		Issuer:          c.Issuer,
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
	}, nil
}

// CredentialsConfig converts AuthConfig into CredentialVerifier parameters.
func (c AuthConfig) CredentialsConfig() auth.CredentialsConfig {
	return auth.CredentialsConfig{
		WorkFactor: c.SaltWorkFactor,
	}
}
