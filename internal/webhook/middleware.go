package webhook

import (
	"crypto/subtle"

	"scanrate_backend/platform/apperr"
	"scanrate_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecretTokenAuthMiddleware validates the secret token Telegram echoes
// back on every webhook delivery. With no secret configured the check is
// skipped, which is only acceptable for local development.
func SecretTokenAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		token := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.Abort()
			httpkit.HandleError(c, apperr.Unauthorized("invalid secret token"))
			return
		}
		c.Next()
	}
}
