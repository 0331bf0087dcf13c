package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogfolio/internal/pkg/jwtutil"
	"blogfolio/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "user_email"
	ContextNameKey   = "user_name"
)

// AuthJWT rejects requests without a valid bearer token. The failing check
// (signature, issuer, audience, expiry) is logged but never exposed to the
// caller; the client always sees the same 401.
func AuthJWT(cfg jwtutil.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := jwtutil.Parse(cfg, token)
		if err != nil {
			logger.Debug("token verification failed", zap.Error(err))
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthJWT resolves an identity when a valid token is presented but
// lets anonymous or invalid-token requests through as anonymous. Used where
// visibility rules differ for the author (unpublished post reads).
func OptionalAuthJWT(cfg jwtutil.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtutil.Parse(cfg, token)
		if err != nil {
			logger.Debug("optional token ignored", zap.Error(err))
			c.Next()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// CurrentUserID returns the verified subject claim, or "" when the request
// is anonymous.
func CurrentUserID(c *gin.Context) string {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return ""
	}
	userID, ok := userIDAny.(string)
	if !ok {
		return ""
	}
	return userID
}

func setIdentity(c *gin.Context, claims *jwtutil.Claims) {
	c.Set(ContextUserIDKey, claims.Subject)
	c.Set(ContextEmailKey, claims.Email)
	c.Set(ContextNameKey, claims.Name)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if authHeader == "" || !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	return token, token != ""
}
