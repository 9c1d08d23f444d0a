package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/service"
	jwtauth "github.com/headless-pm/progress-tracker/pkg/auth"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Verifier checks a bearer token and returns its claims.
type Verifier interface {
	Verify(token string) (*jwtauth.Claims, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller in the
// request context.
func AuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := v.Verify(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwtauth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		role := models.UserRole(claims.Role)
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRole lets through only callers holding one of roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if ok {
			for _, r := range roles {
				if actor.Role == r {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// ManagersOnly admits admins and managers.
func ManagersOnly() gin.HandlerFunc {
	return RequireRole(models.UserRoleAdmin, models.UserRoleManager)
}

// StaffOnly keeps clients out.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(models.UserRoleAdmin, models.UserRoleManager, models.UserRoleEmployee)
}

// ActorFrom returns the authenticated caller set by AuthMiddleware.
func ActorFrom(c *gin.Context) (service.Actor, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return service.Actor{}, false
	}
	role, _ := c.Get(ctxRole)
	uid, _ := id.(uint)
	r, _ := role.(models.UserRole)
	return service.Actor{ID: uid, Role: r}, uid != 0
}
