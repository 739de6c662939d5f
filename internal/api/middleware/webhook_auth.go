package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

const webhookTokenHeader = "X-Webhook-Token"

// WebhookAuth guards the task-submission endpoints with the shared webhook
// secret. The secret is read per request so runtime updates apply.
func WebhookAuth(store *settings.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := store.Snapshot().WebhookSecret
		token := c.GetHeader(webhookTokenHeader)

		if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid webhook token",
			})
			return
		}
		c.Next()
	}
}
