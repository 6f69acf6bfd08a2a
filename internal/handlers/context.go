package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/davidnrm/critiq/internal/middleware"
)

// currentUserID returns the authenticated user's id, or "" when the
// request carries no identity.
func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// currentSessionID returns the session id the access token was minted for.
func currentSessionID(c *gin.Context) string {
	return c.GetString(middleware.CtxSessionIDKey)
}
