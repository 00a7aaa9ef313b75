package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ezoic/tsreg/pkg/log"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDCtxKey = "request_id"

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDCtxKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.GetLogger().Info()
		if status >= http.StatusInternalServerError {
			event = log.GetLogger().Error()
		}
		event.
			Str(log.RequestIDKey, c.GetString(requestIDCtxKey)).
			Str(log.MethodKey, c.Request.Method).
			Str(log.PathKey, c.Request.URL.Path).
			Int(log.StatusKey, status).
			Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
			Msg("request")
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
