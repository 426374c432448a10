package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"restaurant-orders-api/models"
	"restaurant-orders-api/store"
)

type Claims struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Auth issues and validates short-lived admin session tokens. Logout puts
// the token ID on a denylist (Redis when available, in-process otherwise)
// until its natural expiry.
type Auth struct {
	Secret   []byte
	TokenTTL time.Duration
	Cache    *store.Cache

	mu      sync.Mutex
	revoked map[string]time.Time // fallback denylist: jti -> expiry
}

func NewAuth(secret []byte, ttl time.Duration, cache *store.Cache) *Auth {
	return &Auth{Secret: secret, TokenTTL: ttl, Cache: cache, revoked: make(map[string]time.Time)}
}

// GenerateToken creates a signed session token for an admin.
func (a *Auth) GenerateToken(u *models.AdminUser) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID: u.ID,
		Email:   u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// Required validates the bearer token and injects admin identity into the
// request context.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		claims, err := a.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		if a.isRevoked(c.Request.Context(), claims.ID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session has been logged out"})
			c.Abort()
			return
		}
		c.Set("adminID", claims.AdminID)
		c.Set("adminEmail", claims.Email)
		c.Next()
	}
}

// Revoke denylists the given token until it would have expired anyway.
func (a *Auth) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := a.parse(tokenStr)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	a.Cache.RevokeToken(ctx, claims.ID, ttl)
	a.mu.Lock()
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	for id, exp := range a.revoked {
		if time.Now().After(exp) {
			delete(a.revoked, id)
		}
	}
	a.mu.Unlock()
	return nil
}

func (a *Auth) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func (a *Auth) isRevoked(ctx context.Context, jti string) bool {
	if a.Cache.TokenRevoked(ctx, jti) {
		return true
	}
	a.mu.Lock()
	exp, ok := a.revoked[jti]
	a.mu.Unlock()
	return ok && time.Now().Before(exp)
}

// GetAdminEmail extracts the caller identity for audit fields.
func GetAdminEmail(c *gin.Context) string {
	if v, ok := c.Get("adminEmail"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
