package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careflow/clinic-api/internal/handler"
	"github.com/careflow/clinic-api/internal/model"
	pkgauth "github.com/careflow/clinic-api/pkg/auth"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

// ClaimsKey is the gin context key under which Authenticate stores the
// verified session claims.
const ClaimsKey = "claims"

type AuthMiddleware struct {
	tokens pkgauth.TokenService
}

func NewAuthMiddleware(tokens pkgauth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores its claims in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(
				apperrors.CodeInvalidCredentials, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(
				apperrors.CodeInvalidCredentials, "invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(
				apperrors.CodeInvalidCredentials, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r.String()] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(
				apperrors.CodeInvalidCredentials, "missing session"))
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse(
				apperrors.CodeForbidden, "insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the claims Authenticate stored, or nil on an
// unauthenticated request.
func ClaimsFromContext(c *gin.Context) *model.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*model.Claims)
	if !ok {
		return nil
	}
	return claims
}
