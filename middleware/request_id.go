package middleware

import (
	"time"

	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestContext tags the request with an id and stores a request-scoped logger for handlers.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Set("requestID", id)

		logger := utils.GetLogger().With(zap.String("requestID", id))
		c.Set(utils.ContextLoggerKey, logger)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", clientIP(c)))
	}
}

// RequestLogger returns the request-scoped logger, or the global one.
func RequestLogger(c *gin.Context) *zap.Logger {
	return utils.ContextLogger(c)
}
