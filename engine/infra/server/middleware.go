package server

import (
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/pkg/logger"
)

// LoggerMiddleware attaches the logger to the request context and logs
// request completion.
func LoggerMiddleware(log *charmlog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		c.Request = c.Request.WithContext(
			logger.ContextWithLogger(c.Request.Context(), log))
		c.Next()
		log.Info("Request completed",
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"body_size", c.Writer.Size(),
			"path", path,
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}
