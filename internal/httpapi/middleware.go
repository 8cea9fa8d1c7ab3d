package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestID generates or forwards a correlation id for each HTTP
// request on the ambient surface, so a /debug/state or /metrics
// scrape can be tied back to a single log line. Grounded directly on
// streamspace-dev-streamspace/api/internal/middleware/request_id.go.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
