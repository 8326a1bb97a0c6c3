package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the baseline headers on every response.
// Only responses under framePrefix may be embedded, and only by frameAncestors;
// that is how the dashboard previews a resume inline.
func SecurityHeadersMiddleware(framePrefix, frameAncestors string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

		framable := framePrefix != "" && strings.HasPrefix(c.Request.URL.Path, framePrefix)
		ancestors := "'none'"
		if framable {
			ancestors = "'self'"
			if frameAncestors != "" {
				ancestors += " " + strings.ReplaceAll(frameAncestors, ",", " ")
			}
		} else {
			c.Header("X-Frame-Options", "DENY")
		}

		c.Header("Content-Security-Policy",
			"default-src 'self'; "+
				"img-src 'self' data:; "+
				"style-src 'self' 'unsafe-inline'; "+
				"frame-ancestors "+ancestors+"; "+
				"base-uri 'self'; "+
				"form-action 'self'")

		if c.GetHeader("Authorization") != "" {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}
