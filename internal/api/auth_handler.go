package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/service"
)

// AuthHandler handles token endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in models.LoginInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := h.services.Auth.Login(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so clients just discard theirs.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller := callerFrom(c)
	if caller == nil {
		respondError(c, h.log, apperr.Unauthorized("authentication credentials were not provided"))
		return
	}
	c.JSON(http.StatusOK, caller)
}
