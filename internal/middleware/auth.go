package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/constants"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/token"
	"gorm.io/gorm"
)

// UserLoader resolves the user named by a token subject.
type UserLoader interface {
	FindByID(id uint64) (*models.User, error)
}

// RequireAuth accepts a bearer token, or the token stored in the session by login.
// The principal is rebuilt from the stored user so role and tenant changes apply at once.
func RequireAuth(tokens *token.Manager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.FromHeader(c.GetHeader("Authorization"))
		if raw == "" {
			raw = sessionToken(c)
		}
		if raw == "" {
			apierrors.Unauthorized(c, "Not authorized, no token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			apierrors.Unauthorized(c, "Not authorized, token failed")
			return
		}
		fromToken, err := claims.Principal()
		if err != nil {
			apierrors.Unauthorized(c, "Not authorized, token failed")
			return
		}

		user, err := users.FindByID(fromToken.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error().Err(err).Uint64("user_id", fromToken.UserID).Msg("Error loading authenticated user")
			}
			apierrors.Unauthorized(c, "Not authorized, user not found")
			return
		}
		if !user.IsActive {
			apierrors.AccountInactive(c, "Your account is inactive, please contact your agency owner")
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyPrincipal, policy.Principal{
			UserID:   user.ID,
			Role:     user.Role,
			AgencyID: user.AgencyID,
			ClientID: user.ClientID,
		})
		c.Next()
	}
}

// sessionToken returns the token saved in the session, if a session middleware is installed.
func sessionToken(c *gin.Context) string {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	raw, _ := sessions.Default(c).Get(constants.SessionKeyToken).(string)
	return raw
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetPrincipal retrieves the principal stored by RequireAuth
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	p, ok := value.(policy.Principal)
	return p, ok
}
