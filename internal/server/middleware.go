package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gem-auction/internal/models"
	"gem-auction/services/bidding/helpers"
	"gem-auction/utils"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errRoleDenied   = errors.New("role not permitted")
)

// Authenticator resolves a bearer token to the caller's identity
type Authenticator interface {
	Authenticate(raw string) (string, models.Role, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthMiddleware requires a valid bearer token and stores the caller's id and role
func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			utils.JSONAbort(c, http.StatusUnauthorized, errMissingToken, "unauthorized")
			return
		}

		userID, role, err := authn.Authenticate(strings.TrimSpace(raw))
		if err != nil {
			utils.JSONAbort(c, http.StatusUnauthorized, err, "unauthorized")
			utils.Warn("AuthMiddleware: token rejected", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			return
		}

		c.Set(helpers.CtxUserID, userID)
		c.Set(helpers.CtxRole, role)
		c.Next()
	}
}

// RequireRole lets the request through only when the caller has one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := helpers.Caller(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		utils.JSONAbort(c, http.StatusForbidden, errRoleDenied, "forbidden")
		utils.Warn("RequireRole: access denied", map[string]any{
			"path":    c.Request.URL.Path,
			"user_id": userID,
			"role":    role,
		})
	}
}
