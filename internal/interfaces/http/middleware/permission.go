package middleware

import (
	"net/http"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, requiredPerms []string)
}

// RequirePermission creates middleware that requires a specific permission.
// App-token callers pass through unconditionally: their access is scoped to
// the resources they own, and that ownership check happens at the handler
// level rather than here. User callers must hold the permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission creates middleware that requires any of the specified
// permissions. The user must hold at least one of them to proceed.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig creates permission middleware with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestor, ok := GetRequestor(c)
		if !ok {
			handlePermissionDenied(c, cfg, permissions, "No authenticated requestor found")
			return
		}

		if requestor.Kind == payment.RequestorKindApp {
			c.Next()
			return
		}

		claims := GetUserClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, permissions, "No user claims found")
			return
		}

		if !claims.HasAnyPermission(permissions...) {
			handlePermissionDenied(c, cfg, permissions, "User lacks required permission")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Permission check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", permissions),
			)
		}

		c.Next()
	}
}

// handlePermissionDenied handles permission denied scenarios
func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, requiredPerms []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredPerms)
		return
	}

	if cfg.Logger != nil {
		userID := ""
		if claims := GetUserClaims(c); claims != nil {
			userID = claims.UserID
		}

		cfg.Logger.Warn("Permission denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.Strings("required_permissions", requiredPerms),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeForbidden,
		"Access denied: insufficient permissions",
		requestID,
	))
}

// HasPermission reports whether the caller holds the given permission.
// App-token callers report true; their scope is enforced by ownership.
func HasPermission(c *gin.Context, permission string) bool {
	if requestor, ok := GetRequestor(c); ok && requestor.Kind == payment.RequestorKindApp {
		return true
	}
	claims := GetUserClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasPermission(permission)
}
