package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/davidnrm/critiq/internal/models"
)

// DefaultAccessTokenTTL defines the fallback validity period for access tokens.
const DefaultAccessTokenTTL = 15 * time.Minute

// DefaultRefreshTokenTTL defines the fallback validity period for refresh tokens.
const DefaultRefreshTokenTTL = 365 * 24 * time.Hour

var (
	// ErrTokenExpired tags a structurally sound token whose expiry has
	// passed. For access tokens this opens the refresh path; for refresh
	// tokens it is terminal and the user must log in again.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenMalformed covers signature mismatch, structural corruption
	// and wrong-key verification. Callers treat it as absence of
	// authentication rather than an error to propagate.
	ErrTokenMalformed = errors.New("token: malformed")
)

// TokenConfig bundles the configuration required to build a TokenService.
// Access and refresh tokens use independent key pairs so a refresh-signing
// compromise cannot mint access tokens directly.
type TokenConfig struct {
	AccessKeys      KeyPair
	RefreshKeys     KeyPair
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Clock           func() time.Time
}

// AccessClaims carry the user's public profile fields, never the password
// hash. SessionID ties the token back to the login event for logout.
type AccessClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the session reference. Revocation happens by
// invalidating that session, not by anything embedded in the token.
type RefreshClaims struct {
	SessionID string `json:"session"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token classes with RS256.
type TokenService struct {
	access     KeyPair
	refresh    KeyPair
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService constructs a TokenService from immutable configuration.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessKeys.Public == nil {
		return nil, errors.New("token service: access public key is required")
	}
	if cfg.RefreshKeys.Public == nil {
		return nil, errors.New("token service: refresh public key is required")
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}

	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		access:     cfg.AccessKeys,
		refresh:    cfg.RefreshKeys,
		issuer:     cfg.Issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}, nil
}

// SignAccessToken issues an access token for the user and session.
func (s *TokenService) SignAccessToken(user *models.User, sessionID string) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("token service: user is required")
	}
	if !s.access.CanSign() {
		return "", ErrSigningKeyMissing
	}

	now := s.now()
	claims := &AccessClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.access.Private)
}

// SignRefreshToken issues a refresh token referencing the session.
func (s *TokenService) SignRefreshToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("token service: session id is required")
	}
	if !s.refresh.CanSign() {
		return "", ErrSigningKeyMissing
	}

	now := s.now()
	claims := &RefreshClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.refresh.Private)
}

// VerifyAccessToken validates a token against the access public key. The
// error is always one of the tagged sentinels; callers branch, never parse.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.verify(tokenString, &claims, s.access.Public); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

// VerifyRefreshToken validates a token against the refresh public key.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.verify(tokenString, &claims, s.refresh.Public); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, key any) error {
	if tokenString == "" {
		return ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
