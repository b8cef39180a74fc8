package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the gin context key holding the verified *Claims.
const ClaimsKey = "claims"

// Claims is the token payload issued to api clients.
type Claims struct {
	UserID    string `json:"user_id"`
	StartupID uint   `json:"startup_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs claims with HS256, valid for ttl (24h when zero).
func GenerateToken(secret, userID string, startupID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		StartupID: startupID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of tokenStr.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// StartupScope returns the startup a verified token is restricted to. The
// bool is false for unscoped tokens and when authentication is disabled.
func StartupScope(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return 0, false
	}
	claims, ok := v.(*Claims)
	if !ok || claims.StartupID == 0 {
		return 0, false
	}
	return claims.StartupID, true
}

// AuthMiddleware requires a bearer token signed with secret. The token may
// also come from ?token= for websocket clients that cannot set headers. An
// empty secret disables authentication.
func AuthMiddleware(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		var tokenStr string
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
