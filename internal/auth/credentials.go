package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/davidnrm/critiq/internal/models"
	"github.com/davidnrm/critiq/pkg/crypto"
)

// ErrInvalidCredentials is returned for both unknown email and wrong
// password. The two causes must stay indistinguishable to callers so the
// login endpoint cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// CredentialsConfig defines tunable behaviour for the verifier.
type CredentialsConfig struct {
	// WorkFactor is the bcrypt cost used when hashing new passwords.
	WorkFactor int
}

// CredentialVerifier checks submitted email/password pairs against stored
// bcrypt hashes. It is the only component that ever sees a plaintext
// password.
type CredentialVerifier struct {
	db   *gorm.DB
	cost int
}

// NewCredentialVerifier builds a verifier with the configured work factor.
func NewCredentialVerifier(db *gorm.DB, cfg CredentialsConfig) (*CredentialVerifier, error) {
	if db == nil {
		return nil, errors.New("credential verifier: db is required")
	}

	cost := cfg.WorkFactor
	if cost <= 0 {
		cost = crypto.DefaultWorkFactor
	}

	return &CredentialVerifier{db: db, cost: cost}, nil
}

// Verify looks up the identity by email (exact match as stored) and
// compares the password against the stored hash in constant time.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := v.db.WithContext(ctx).Take(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("credential verifier: query user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Register creates a new user with a hashed password.
func (v *CredentialVerifier) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, errors.New("credential verifier: name, email and password are required")
	}

	hashed, err := crypto.HashPassword(password, v.cost)
	if err != nil {
		return nil, fmt.Errorf("credential verifier: hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
	}

	if err := v.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("credential verifier: create user: %w", err)
	}

	return user, nil
}
