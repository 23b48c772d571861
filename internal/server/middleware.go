package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chimbuka/mabuku/pkg/audit"
)

// Claims is the payload of API tokens. The subject is the acting user;
// Role gates nothing here but is made available to handlers.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// authMiddleware validates the bearer token and resolves the tenant
// from the organization header. Actor and organization ids are stored
// on the request context so services, audit logs and the logger can
// pick them up.
func authMiddleware(auth Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		orgID := c.GetHeader(auth.OrganizationHeaderKey)
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("missing %s header", auth.OrganizationHeaderKey),
			})
			return
		}

		ctx := c.Request.Context()
		// string keys on purpose: CtxLogger and pkg/audit read the
		// same keys back without importing this package.
		ctx = context.WithValue(ctx, audit.ContextKeyActorID, claims.Subject) //nolint:staticcheck
		ctx = context.WithValue(ctx, audit.ContextKeyOrganizationID, orgID)   //nolint:staticcheck
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
