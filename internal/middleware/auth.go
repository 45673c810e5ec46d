package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/config"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/models"
)

const identityKey = "identity"

// Identity is the ambient per-request `{id, role, storeId}` triple of §9,
// consumed from a trusted, already-verified token — this middleware is the
// one place that parses the token; everything downstream reads Identity
// from the gin context.
type Identity struct {
	UserID  uuid.UUID
	Role    models.Role
	StoreID *uuid.UUID
}

// AuthMiddleware verifies the bearer credential and populates Identity.
// Token validation itself (signature, expiry) is the only cryptographic
// concern here; RBAC and store-scoping live in middleware/rbac.go.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "MISSING_AUTHORIZATION_HEADER", "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "INVALID_AUTHORIZATION_HEADER", "authorization header must be 'Bearer <token>'")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "INVALID_TOKEN", "token is invalid or expired")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "INVALID_TOKEN_CLAIMS", "token claims malformed")
			return
		}

		idStr, _ := claims["id"].(string)
		userID, err := uuid.Parse(idStr)
		if err != nil {
			httperr.Unauthorized(c, "INVALID_TOKEN_CLAIMS", "token subject malformed")
			return
		}

		role, _ := claims["role"].(string)

		var storeID *uuid.UUID
		if raw, ok := claims["storeId"].(string); ok && raw != "" {
			sid, err := uuid.Parse(raw)
			if err != nil {
				httperr.Unauthorized(c, "INVALID_TOKEN_CLAIMS", "token storeId malformed")
				return
			}
			storeID = &sid
		}

		c.Set(identityKey, Identity{UserID: userID, Role: models.Role(role), StoreID: storeID})
		c.Next()
	}
}

// IdentityFrom retrieves the Identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
