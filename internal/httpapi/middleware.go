package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"papermill/internal/logging"
	"papermill/internal/services"
)

const requestIDHeader = "X-Request-ID"

// requestID stamps each request with a correlation identifier, honoring one
// supplied by the client.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := services.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := logging.WithContext(c.Request.Context(), s.logger)
		logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
		)
	}
}

// limitBody caps the request body so oversized uploads fail fast.
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxUpload > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		}
		c.Next()
	}
}
