package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger logs every request with its status and latency, and feeds
// the HTTP latency histogram.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		elapsed := time.Since(started)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		s.metrics.observeRequest(path, strconv.Itoa(status), elapsed)
		if status >= 500 {
			s.logger.Error("%s %s -> %d (%s)", c.Request.Method, path, status, elapsed)
		} else {
			s.logger.Info("%s %s -> %d (%s)", c.Request.Method, path, status, elapsed)
		}
	}
}
