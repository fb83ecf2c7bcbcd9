package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/models"
)

// RequireRole lets the request through only for the listed roles.
// It must run after RequireAuth.
func RequireRole(message string, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, message)
	}
}

// RequireOwner gates agency administration.
func RequireOwner() gin.HandlerFunc {
	return RequireRole("Forbidden: Owner access required", models.RoleOwner)
}

// RequireTeam admits owners and members but not client users.
func RequireTeam() gin.HandlerFunc {
	return RequireRole("Forbidden: Team access required", models.RoleOwner, models.RoleMember)
}
