package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"vidtube/backend/internal/constants"
	apperrors "vidtube/backend/pkg/errors"
)

// accessTokenCookie carries the token for browser clients
const accessTokenCookie = "accessToken"

// errNoSecret is returned for every token when no signing secret is configured
var errNoSecret = errors.New("token signing secret is not configured")

// Claims are the access token claims. The viewer id is _id, or sub when _id is absent.
type Claims struct {
	UserID   string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// ViewerID returns the identity the token authenticates
func (c *Claims) ViewerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// IssueToken signs an HS256 access token for userID
func IssueToken(secret, userID, username string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errNoSecret
	}
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates an HS256 token signed with secret.
// An empty secret would verify tokens signed with an empty key, so it rejects everything.
func parseToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, errNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ViewerID() == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ViewerAuth resolves the optional viewer identity. A request without a
// token is anonymous; a request with an invalid token is rejected.
// Without a secret every request carrying a token is rejected.
func ViewerAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	if secret == "" {
		log.Warn("JWT_SECRET is not set, all access tokens will be rejected")
	}
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseToken(secret, tokenString)
		if err != nil {
			log.Debug("Rejected access token", zap.Error(err))
			respondError(c, log, apperrors.NewUnauthenticated())
			return
		}

		c.Set(constants.ViewerKey, claims.ViewerID())
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// viewer returns the authenticated viewer id, or empty for anonymous requests
func viewer(c *gin.Context) string {
	return c.GetString(constants.ViewerKey)
}
