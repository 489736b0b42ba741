package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response headers the dashboard reads from a spreadsheet export.
const (
	headerContentDisposition = "Content-Disposition"
	headerRecordCount        = "X-Record-Count"
)

var exposedHeaders = strings.Join([]string{headerContentDisposition, headerRecordCount}, ", ")

// corsMiddleware admits the configured dashboard origins. No origins means any
// origin. A request from an origin outside the list gets no CORS headers, so
// the browser refuses to read the response.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	wildcard := len(allowed) == 0
	for _, o := range allowed {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "*" {
			wildcard = true
		}
		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		headers.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		allowOrigin := ""
		switch {
		case wildcard:
			allowOrigin = "*"
		case origin != "":
			if _, ok := origins[strings.ToLower(origin)]; ok {
				allowOrigin = origin
			}
		}
		if allowOrigin != "" {
			headers.Set("Access-Control-Allow-Origin", allowOrigin)
			headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type")
			headers.Set("Access-Control-Expose-Headers", exposedHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
