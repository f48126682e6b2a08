package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/server/auth"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/gin-gonic/gin"
)

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

const userIDKey = "userID"

func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Auth resolves the bearer token of the request. Without a token the request
// is anonymous unless requireAuth is set; a token that fails to validate is
// always 401.
func Auth(authn Authenticator, requireAuth bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if requireAuth {
				c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "missing token"})
				return
			}
			c.Next()
			return
		}

		token, ok := auth.BearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "malformed authorization header"})
			return
		}
		userID, err := authn.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: err.Error()})
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func RequestLogger(l logging.Logger) gin.HandlerFunc {
	l = l.With("module", "http_server")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
