package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ActorKey is the context key carrying the acting auditor's identity.
	ActorKey = "actor"
	// ActorHeader is the fallback header when no bearer token is presented.
	ActorHeader = "X-Auditor"
)

// Identity extracts the acting user's identity, supplied by the surrounding
// application. A signed HS256 bearer token wins (sub claim); otherwise the
// X-Auditor header is accepted. Requests without either are rejected since
// every audit action must be attributable.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := actorFromToken(c, secret); actor != "" {
			c.Set(ActorKey, actor)
			c.Next()
			return
		}

		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			c.Set(ActorKey, actor)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "acting user identity required"})
	}
}

func actorFromToken(c *gin.Context, secret string) string {
	if secret == "" {
		return ""
	}

	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}

	token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// GetActor returns the identity set by the Identity middleware.
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
