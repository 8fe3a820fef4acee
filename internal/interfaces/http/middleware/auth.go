package middleware

import (
	"net/http"
	"strings"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/infrastructure/auth"
	"github.com/as-ga/saleor/internal/infrastructure/logger"
	"github.com/as-ga/saleor/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys
const (
	RequestorKey      = "auth_requestor"
	UserClaimsKey     = "auth_user_claims"
	AppClaimsKey      = "auth_app_claims"
	PermissionsKey    = "auth_permissions"
	AuthHeaderKey     = "Authorization"
	AppTokenHeaderKey = "Saleor-App-Token"
	BearerPrefix      = "Bearer "
)

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// Tokens is required for token validation
	Tokens *auth.TokenService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns the default authentication middleware configuration
func DefaultAuthConfig(tokens *auth.TokenService) AuthConfig {
	return AuthConfig{
		Tokens: tokens,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/api/v1/system",
		},
	}
}

// Auth creates authentication middleware with the default configuration
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return AuthWithConfig(DefaultAuthConfig(tokens))
}

// AuthWithConfig creates authentication middleware that resolves the caller
// into a payment.Requestor. Apps authenticate via the Saleor-App-Token
// header, users via a Bearer token in the Authorization header. When both
// are present the app token wins, matching how payment apps call back into
// the system on behalf of themselves rather than a staff member.
func AuthWithConfig(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		if appToken := c.GetHeader(AppTokenHeaderKey); appToken != "" {
			authenticateApp(c, cfg, appToken)
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing credentials")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		authenticateUser(c, cfg, tokenString)
	}
}

func authenticateApp(c *gin.Context, cfg AuthConfig, token string) {
	claims, err := cfg.Tokens.ValidateAppToken(token)
	if err != nil {
		handleAuthError(c, cfg, err, "App token validation failed")
		return
	}

	appID, err := claims.GetAppUUID()
	if err != nil {
		handleAuthError(c, cfg, auth.ErrInvalidClaims, "App ID is not a valid UUID")
		return
	}

	c.Set(RequestorKey, payment.AppRequestor(appID))
	c.Set(AppClaimsKey, claims)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithAppID(ctx, log, claims.AppID)
	c.Request = c.Request.WithContext(ctx)

	if cfg.Logger != nil {
		cfg.Logger.Debug("App authentication successful",
			zap.String("app_id", claims.AppID),
			zap.String("app_name", claims.AppName),
		)
	}

	c.Next()
}

func authenticateUser(c *gin.Context, cfg AuthConfig, token string) {
	claims, err := cfg.Tokens.ValidateUserToken(token)
	if err != nil {
		handleAuthError(c, cfg, err, "User token validation failed")
		return
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		handleAuthError(c, cfg, auth.ErrInvalidClaims, "User ID is not a valid UUID")
		return
	}

	c.Set(RequestorKey, payment.UserRequestor(userID))
	c.Set(UserClaimsKey, claims)
	c.Set(PermissionsKey, claims.Permissions)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
	c.Request = c.Request.WithContext(ctx)

	if cfg.Logger != nil {
		cfg.Logger.Debug("User authentication successful",
			zap.String("user_id", claims.UserID),
			zap.String("email", claims.Email),
		)
	}

	c.Next()
}

// handleAuthError aborts the request with a 401 response
func handleAuthError(c *gin.Context, cfg AuthConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken, auth.ErrInvalidTokenType, auth.ErrInvalidClaims, auth.ErrTokenNotYetValid:
		errorCode = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	}

	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(errorCode, errorMessage, requestID))
}

// GetRequestor retrieves the authenticated requestor from gin.Context
func GetRequestor(c *gin.Context) (payment.Requestor, bool) {
	if v, exists := c.Get(RequestorKey); exists {
		if r, ok := v.(payment.Requestor); ok {
			return r, true
		}
	}
	return payment.Requestor{}, false
}

// GetUserClaims retrieves user token claims from gin.Context.
// Returns nil for app-token callers.
func GetUserClaims(c *gin.Context) *auth.UserClaims {
	if v, exists := c.Get(UserClaimsKey); exists {
		if claims, ok := v.(*auth.UserClaims); ok {
			return claims
		}
	}
	return nil
}

// GetAppClaims retrieves app token claims from gin.Context.
// Returns nil for user callers.
func GetAppClaims(c *gin.Context) *auth.AppClaims {
	if v, exists := c.Get(AppClaimsKey); exists {
		if claims, ok := v.(*auth.AppClaims); ok {
			return claims
		}
	}
	return nil
}

// GetPermissions retrieves the caller's permissions from gin.Context
func GetPermissions(c *gin.Context) []string {
	if v, exists := c.Get(PermissionsKey); exists {
		if perms, ok := v.([]string); ok {
			return perms
		}
	}
	return nil
}
