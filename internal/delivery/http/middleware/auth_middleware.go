package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-applicant-tracker/internal/delivery/http/response"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/pkg/auth"
	"go-applicant-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token when the verifier has a secret.
// Without one every request passes, which is how the tracker runs on an internal network.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.Next()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		subject, err := verifier.Verify(tokenString)
		if err != nil {
			logger.Log.Warn("token rejected",
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"ip", c.ClientIP(),
				"error", err.Error(),
			)
			response.Error(c, http.StatusUnauthorized, "Invalid or missing token", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeySubject), subject)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), domain.KeySubject, subject))
		c.Next()
	}
}
