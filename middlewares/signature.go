package middlewares

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

// RawBodyKey is where the verified raw callback body is stored in the
// request context.
const RawBodyKey = "rawCallbackBody"

// CallbackSignatureMiddleware authenticates inbound bank callbacks. The
// base64 RSA-SHA256 signature in the Callback-Signature header is checked
// over the raw request body before any business logic runs; a missing or
// invalid signature is rejected with 403 and logged as a security event,
// never surfaced to a user.
func CallbackSignatureMiddleware(bank *services.BankService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(rawBody))

		signature := c.GetHeader("Callback-Signature")
		if !bank.VerifyCallbackSignature(signature, rawBody) {
			utils.SecurityEvent("Rejected bank callback from %s: %v", c.ClientIP(), utils.ErrSignatureInvalid)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(RawBodyKey, rawBody)
		c.Next()
	}
}
