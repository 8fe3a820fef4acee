package auth

import (
	"errors"
	"time"

	"github.com/as-ga/saleor/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeUser TokenType = "user"
	TokenTypeApp  TokenType = "app"
)

// Permission names granted to staff users
const (
	PermissionManagePayments = "MANAGE_PAYMENTS"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMissingAppID     = errors.New("missing app_id in claims")
)

// UserClaims represents JWT claims for staff user tokens
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	TokenType   TokenType `json:"token_type"`
}

// AppClaims represents JWT claims for app identity tokens presented
// via the Saleor-App-Token header
type AppClaims struct {
	jwt.RegisteredClaims
	AppID     string    `json:"app_id"`
	AppName   string    `json:"app_name,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// TokenService issues and validates staff user and app tokens.
// The two token kinds are signed with separate secrets so a leaked
// app token can never be replayed as a user token.
type TokenService struct {
	userSecret []byte
	appSecret  []byte
	expiration time.Duration
	issuer     string
}

// NewTokenService creates a new token service
func NewTokenService(cfg config.JWTConfig) *TokenService {
	appSecret := []byte(cfg.AppTokenSecret)
	if cfg.AppTokenSecret == "" {
		appSecret = []byte(cfg.Secret)
	}

	return &TokenService{
		userSecret: []byte(cfg.Secret),
		appSecret:  appSecret,
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// UserTokenInput contains input for staff user token generation
type UserTokenInput struct {
	UserID      uuid.UUID
	Email       string
	Permissions []string
}

// AppTokenInput contains input for app token generation
type AppTokenInput struct {
	AppID   uuid.UUID
	AppName string
}

// GenerateUserToken generates a signed staff user token
func (s *TokenService) GenerateUserToken(input UserTokenInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:      input.UserID.String(),
		Email:       input.Email,
		Permissions: input.Permissions,
		TokenType:   TokenTypeUser,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.userSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GenerateAppToken generates a signed app identity token. App tokens
// do not expire; an app is cut off by deleting it, not by token age.
func (s *TokenService) GenerateAppToken(input AppTokenInput) (string, error) {
	now := time.Now()

	claims := &AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.AppID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AppID:     input.AppID.String(),
		AppName:   input.AppName,
		TokenType: TokenTypeApp,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.appSecret)
}

// ValidateUserToken validates a staff user token and returns its claims
func (s *TokenService) ValidateUserToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.userSecret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeUser {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// ValidateAppToken validates an app token and returns its claims
func (s *TokenService) ValidateAppToken(tokenString string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.appSecret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeApp {
		return nil, ErrInvalidTokenType
	}
	if claims.AppID == "" {
		return nil, ErrMissingAppID
	}

	return claims, nil
}

// mapParseError translates jwt library errors to package sentinels
func mapParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	if errors.Is(err, jwt.ErrTokenNotValidYet) {
		return ErrTokenNotYetValid
	}
	return ErrInvalidToken
}

// GetUserUUID extracts and parses the user ID from claims
func (c *UserClaims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetAppUUID extracts and parses the app ID from claims
func (c *AppClaims) GetAppUUID() (uuid.UUID, error) {
	return uuid.Parse(c.AppID)
}

// HasPermission checks if the claims contain a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the claims contain any of the specified permissions
func (c *UserClaims) HasAnyPermission(permissions ...string) bool {
	for _, required := range permissions {
		if c.HasPermission(required) {
			return true
		}
	}
	return false
}
