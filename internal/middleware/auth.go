package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/davidnrm/critiq/internal/auth"
	appErrors "github.com/davidnrm/critiq/pkg/errors"
	"github.com/davidnrm/critiq/pkg/response"
)

const (
	// CtxUserIDKey holds the authenticated user's id.
	CtxUserIDKey = "userID"
	// CtxUserEmailKey holds the authenticated user's email.
	CtxUserEmailKey = "userEmail"
	// CtxUserNameKey holds the authenticated user's display name.
	CtxUserNameKey = "userName"
	// CtxSessionIDKey holds the session id the access token was minted for.
	CtxSessionIDKey = "sessionID"

	// RefreshHeader carries the refresh token on requests.
	RefreshHeader = "x-refresh"
	// NewAccessTokenHeader surfaces a reissued access token on responses.
	NewAccessTokenHeader = "x-access-token"
)

// Identity extracts and verifies the bearer access token, attaching the
// authenticated identity to the request context. Expired access tokens are
// transparently reissued when the refresh header carries a token for a
// still-valid session; the fresh token is returned on the x-access-token
// response header so the client can adopt it. Every failure mode folds
// into "no identity attached" — the request proceeds and a downstream gate
// decides whether anonymous access is permitted.
func Identity(tokens *iauth.TokenService, sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := bearerToken(c.GetHeader("Authorization"))
		if accessToken == "" {
			c.Next()
			return
		}

		claims, err := tokens.VerifyAccessToken(accessToken)
		if err == nil {
			attachClaims(c, claims)
			c.Next()
			return
		}

		if errors.Is(err, iauth.ErrTokenExpired) {
			refreshToken := strings.TrimSpace(c.GetHeader(RefreshHeader))
			if refreshToken == "" {
				c.Next()
				return
			}

			newAccess, _, refreshErr := sessions.Refresh(c.Request.Context(), refreshToken)
			if refreshErr != nil {
				c.Next()
				return
			}

			reissued, verifyErr := tokens.VerifyAccessToken(newAccess)
			if verifyErr != nil {
				c.Next()
				return
			}

			c.Header(NewAccessTokenHeader, newAccess)
			attachClaims(c, reissued)
		}

		// Malformed tokens are treated as absence of authentication, not
		// as an error, so signature-validation detail never leaks.
		c.Next()
	}
}

// RequireUser rejects requests that carry no authenticated identity.
// Forbidden rather than unauthorized, applied uniformly.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func attachClaims(c *gin.Context, claims *iauth.AccessClaims) {
	c.Set(CtxUserIDKey, claims.UserID)
	c.Set(CtxUserEmailKey, claims.Email)
	c.Set(CtxUserNameKey, claims.Name)
	if claims.SessionID != "" {
		c.Set(CtxSessionIDKey, claims.SessionID)
	}
}

func bearerToken(authz string) string {
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}
