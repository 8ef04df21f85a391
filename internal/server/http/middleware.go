package httpserver

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/token"
)

const (
	msgNoToken      = "No token provided"
	msgBadFormat    = "Invalid token format"
	msgInvalidToken = "Invalid token"
	msgRoleMismatch = "Role mismatch"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tok string) (token.Claims, error)
}

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		// no payloads, only metadata
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// RecoverMiddleware turns handler panics into 500 responses.
func RecoverMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
			}
		}()
		c.Next()
	}
}

// RequireRole authenticates the bearer token and admits only principals of role.
func RequireRole(v TokenVerifier, role model.Role, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgNoToken})
			return
		}
		scheme, credential, _ := strings.Cut(header, " ")
		if scheme != "Bearer" || credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgBadFormat})
			return
		}
		claims, err := v.Verify(credential)
		if err != nil {
			log.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidToken})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgRoleMismatch})
			return
		}
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), claims.Username, claims.Role))
		c.Next()
	}
}
