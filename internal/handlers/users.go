package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/davidnrm/critiq/internal/auth"
	appErrors "github.com/davidnrm/critiq/pkg/errors"
	"github.com/davidnrm/critiq/pkg/response"
)

// UserHandler manages account registration.
type UserHandler struct {
	credentials *iauth.CredentialVerifier
}

func NewUserHandler(credentials *iauth.CredentialVerifier) *UserHandler {
	return &UserHandler{credentials: credentials}
}

type createUserRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.credentials.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if isUniqueViolation(err) {
			response.Error(c, appErrors.ErrConflict)
			return
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	// The User model omits the password hash from JSON.
	response.Success(c, http.StatusOK, user)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite and mysql surface constraint failures as driver errors that
	// gorm does not translate uniformly.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
