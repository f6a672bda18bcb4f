package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const deviceHeader = "X-Device-ID"

const maxDeviceIDLen = 128

type ctxKey string

const deviceCtxKey ctxKey = "device"

// deviceMiddleware resolves the calling device from X-Device-ID, issuing a new
// id when the header is missing. The id is echoed back on every response.
func deviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(deviceHeader))
		if len(id) > maxDeviceIDLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "device id too long"})
			return
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(deviceHeader, id)
		ctx := context.WithValue(c.Request.Context(), deviceCtxKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func deviceFrom(c *gin.Context) string {
	id, _ := c.Request.Context().Value(deviceCtxKey).(string)
	return id
}
