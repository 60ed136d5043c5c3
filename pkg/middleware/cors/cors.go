package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	preflightsTTL = "600"
)

// New returns a CORS middleware restricted to the given origins. An empty
// list, or a "*" entry, allows every origin.
func New(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[normalizeOrigin(origin)] = true
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		headers.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
			// Same-origin or non-browser request, nothing to grant.
		case allowAll || allowed[normalizeOrigin(origin)]:
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			headers.Set("Access-Control-Allow-Methods", allowMethods)
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				headers.Set("Access-Control-Allow-Headers", requested)
			} else {
				headers.Set("Access-Control-Allow-Headers", allowHeaders)
			}
			headers.Set("Access-Control-Max-Age", preflightsTTL)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
