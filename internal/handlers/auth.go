package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/dto"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/middleware"
	"github.com/yukikurage/agency-hub/internal/services"
	"github.com/yukikurage/agency-hub/internal/token"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register opens a new workspace: an owner and the agency they own.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		AgencyName string `json:"agencyName"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Register(services.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		AgencyName: req.AgencyName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.startSession(c, http.StatusCreated, result)
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Please provide email and password")
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.startSession(c, http.StatusOK, result)
}

// ClerkSync exchanges an identity provider session token for a local token. The
// provider token comes as a bearer header or in the body's token field.
func (h *AuthHandler) ClerkSync(c *gin.Context) {
	type ClerkSyncRequest struct {
		Token   string `json:"token"`
		ClerkID string `json:"clerkId"`
		Name    string `json:"name"`
	}

	var req ClerkSyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	raw := token.FromHeader(c.GetHeader("Authorization"))
	if raw == "" {
		raw = req.Token
	}
	if raw == "" {
		apierrors.Unauthorized(c, "Identity provider token required")
		return
	}

	result, err := h.authService.SyncExternal(services.ExternalSyncInput{
		IdentityToken: raw,
		ExternalID:    req.ClerkID,
		Name:          req.Name,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.startSession(c, http.StatusOK, result)
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// startSession stores the token for cookie-based clients and returns it in the body.
func (h *AuthHandler) startSession(c *gin.Context, status int, result *services.AuthResult) {
	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, result.Token)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Uint64("user_id", result.User.ID).Msg("Failed to save session")
	}

	c.JSON(status, dto.AuthResponse{
		Token: result.Token,
		User:  dto.ToUserDTO(*result.User),
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrAgencyNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAccountInactive):
		apierrors.AccountInactive(c, err.Error())
	case errors.Is(err, services.ErrExternalAuthInvalid),
		errors.Is(err, services.ErrExternalAuthMismatch):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrExternalAuthDisabled):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser),
		errors.Is(err, services.ErrFailedToCreateAgency),
		errors.Is(err, services.ErrFailedToIssueToken):
		apierrors.InternalError(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
