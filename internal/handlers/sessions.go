package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/davidnrm/critiq/internal/auth"
	appErrors "github.com/davidnrm/critiq/pkg/errors"
	"github.com/davidnrm/critiq/pkg/response"
)

// SessionHandler manages the login/list/logout session endpoints.
type SessionHandler struct {
	sessions *iauth.SessionService
}

func NewSessionHandler(sessions *iauth.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, iauth.ErrInvalidCredentials) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessions.ListSessions(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, sessions)
}

// DELETE /api/sessions
//
// Logout always reports success: invalidation is idempotent and the null
// token pair tells the client to drop its credentials either way.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), currentSessionID(c)); err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  nil,
		"refreshToken": nil,
	})
}
