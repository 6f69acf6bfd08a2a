package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/davidnrm/critiq/internal/models"
	"github.com/davidnrm/critiq/pkg/metrics"
)

var (
	// ErrSessionNotFound indicates that no session matches the identifier.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionInvalid is the single refresh failure surfaced to callers:
	// malformed or expired refresh token, missing session, or a session
	// already invalidated by logout. Refresh fails closed.
	ErrSessionInvalid = errors.New("session: invalid")
)

// TokenPair represents an access token and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Clock func() time.Time
	Cache SessionCache
}

// SessionService orchestrates login, refresh and logout over the session
// store. A session moves from Active (valid=true) to Invalidated
// (valid=false) exactly once; there is no resurrection. Refresh never
// mutates the session row, so concurrent refreshes against one session are
// safe and each mints an independent access token.
type SessionService struct {
	db          *gorm.DB
	tokens      *TokenService
	credentials *CredentialVerifier
	now         func() time.Time
	cache       SessionCache
}

// NewSessionService constructs a session manager backed by the provided
// database, token codec and credential verifier.
func NewSessionService(db *gorm.DB, tokens *TokenService, credentials *CredentialVerifier, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("session service: token service is required")
	}
	if credentials == nil {
		return nil, errors.New("session service: credential verifier is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:          db,
		tokens:      tokens,
		credentials: credentials,
		now:         clock,
		cache:       cfg.Cache,
	}, nil
}

// Login verifies the credentials, creates a session record and mints the
// token pair. Credential failures surface as ErrInvalidCredentials with no
// further detail.
func (s *SessionService) Login(ctx context.Context, email, password, userAgent string) (TokenPair, *models.Session, error) {
	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return TokenPair{}, nil, err
	}

	session, err := s.CreateSession(ctx, user.ID, userAgent)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return TokenPair{}, nil, err
	}

	accessToken, err := s.tokens.SignAccessToken(user, session.ID)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: sign access token: %w", err)
	}

	refreshToken, err := s.tokens.SignRefreshToken(session.ID)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: sign refresh token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, session, nil
}

// CreateSession persists a new session record with valid=true.
func (s *SessionService) CreateSession(ctx context.Context, userID, userAgent string) (*models.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("session service: user id is required")
	}

	session := &models.Session{
		UserID:    userID,
		UserAgent: strings.TrimSpace(userAgent),
		Valid:     true,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()

	if s.cache != nil {
		_ = s.cache.Set(ctx, session)
	}

	return session, nil
}

// FindSession looks a session up by id, consulting the cache first.
func (s *SessionService) FindSession(ctx context.Context, id string) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSessionNotFound
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	var session models.Session
	err := s.db.WithContext(ctx).Take(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, &session)
	}

	return &session, nil
}

// Refresh validates the refresh token and its session, then mints a new
// access token. The session and refresh token are reused unchanged across
// refresh cycles; only logout or refresh token expiry ends them.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, *models.User, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		// Expired and malformed collapse into the same outcome: the
		// caller must log in again.
		metrics.TokenReissues.WithLabelValues("failure").Inc()
		return "", nil, ErrSessionInvalid
	}

	session, err := s.FindSession(ctx, claims.SessionID)
	if err != nil {
		metrics.TokenReissues.WithLabelValues("failure").Inc()
		if errors.Is(err, ErrSessionNotFound) {
			return "", nil, ErrSessionInvalid
		}
		return "", nil, err
	}

	if !session.Valid {
		metrics.TokenReissues.WithLabelValues("failure").Inc()
		return "", nil, ErrSessionInvalid
	}

	var user models.User
	err = s.db.WithContext(ctx).Take(&user, "id = ?", session.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.TokenReissues.WithLabelValues("failure").Inc()
		return "", nil, ErrSessionInvalid
	}
	if err != nil {
		return "", nil, fmt.Errorf("session service: find user: %w", err)
	}

	accessToken, err := s.tokens.SignAccessToken(&user, session.ID)
	if err != nil {
		return "", nil, fmt.Errorf("session service: sign access token: %w", err)
	}

	metrics.TokenReissues.WithLabelValues("success").Inc()

	return accessToken, &user, nil
}

// Logout invalidates the session. It is idempotent and succeeds for
// unknown ids; the valid flag never returns to true.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}

	result := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND valid = ?", sessionID, true).
		Update("valid", false)
	if result.Error != nil {
		return fmt.Errorf("session service: invalidate session: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, sessionID)
	}

	return nil
}

// ListSessions returns the user's still-valid sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]models.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("session service: user id is required")
	}

	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND valid = ?", userID, true).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("session service: list sessions: %w", err)
	}

	return sessions, nil
}

// CleanupExpired deletes invalidated sessions and sessions old enough that
// any refresh token referencing them has expired.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := s.now().Add(-s.tokens.refreshTTL)

	result := s.db.WithContext(ctx).
		Where("valid = ?", false).
		Or("created_at < ?", cutoff).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup sessions: %w", result.Error)
	}

	return result.RowsAffected, nil
}
