package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidnrm/critiq/internal/cache"
	"github.com/davidnrm/critiq/internal/models"
)

const sessionCacheKeyPrefix = "auth:sessions:id:"

// sessionCacheTTL bounds staleness between an invalidation on one node and
// cached reads elsewhere. Logout deletes the entry directly, so this only
// matters when that delete is lost.
const sessionCacheTTL = time.Hour

var errSessionCacheMiss = errors.New("session cache miss")

// SessionCache is a read-through cache of session records keyed by id.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// NewSessionCache wraps a shared cache store inside a SessionCache
// implementation. Works with both the Redis and database backends.
func NewSessionCache(store cache.Store) SessionCache {
	if store == nil {
		return nil
	}
	return &sessionStoreCache{store: store}
}

type sessionStoreCache struct {
	store cache.Store
}

func (c *sessionStoreCache) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	key := sessionCacheKey(sessionID)
	if key == "" {
		return nil, errSessionCacheMiss
	}

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionCacheMiss
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session cache: decode: %w", err)
	}
	return &session, nil
}

func (c *sessionStoreCache) Set(ctx context.Context, session *models.Session) error {
	if session == nil {
		return errors.New("session cache: session is nil")
	}
	key := sessionCacheKey(session.ID)
	if key == "" {
		return errors.New("session cache: session id missing")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session cache: marshal: %w", err)
	}

	return c.store.Set(ctx, key, payload, sessionCacheTTL)
}

func (c *sessionStoreCache) Delete(ctx context.Context, sessionID string) error {
	key := sessionCacheKey(sessionID)
	if key == "" {
		return nil
	}
	return c.store.Delete(ctx, key)
}

func sessionCacheKey(sessionID string) string {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ""
	}
	return sessionCacheKeyPrefix + id
}
