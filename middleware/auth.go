package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/bedrock-gateway/common/audit"
	"github.com/fuchsia74/bedrock-gateway/common/ctxkey"
	"github.com/fuchsia74/bedrock-gateway/common/helper"
	"github.com/fuchsia74/bedrock-gateway/model"
)

// Rejection kinds recorded in audit logs. The caller-visible message is the
// same for all of them; collapsing missing/invalid/expired into one response
// is deliberate, to avoid token enumeration.
const (
	AuthKindMissingToken = "MissingToken"
	AuthKindInvalidToken = "InvalidToken"
	AuthKindExpiredToken = "ExpiredToken"
)

const authRejectionMessage = "Invalid or expired token"

// TokenAuth validates the Authorization bearer token against the token store
// and stores the resolved identity on the context. The clock is injected so
// expiry handling is testable.
func TokenAuth(store model.TokenStore, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := gmw.GetLogger(c)

		header := c.Request.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortWithAuthError(c, AuthKindMissingToken)
			return
		}

		record, err := store.GetToken(gmw.Ctx(c), token)
		if err != nil {
			if !errors.Is(err, model.ErrTokenNotFound) {
				// Store outage, not a bad token. Still collapsed for the caller.
				lg.Error("token store lookup failed", zap.Error(err))
			}
			abortWithAuthError(c, AuthKindInvalidToken)
			return
		}
		if record.Expired(now()) {
			// The token value itself is never logged.
			lg.Warn("expired token presented", zap.String("identity", record.Identity))
			abortWithAuthError(c, AuthKindExpiredToken)
			return
		}

		c.Set(ctxkey.Identity, record.Identity)
		c.Set(ctxkey.TokenExpiresAt, record.ExpiresAt)
		c.Next()
	}
}

func abortWithAuthError(c *gin.Context, kind string) {
	lg := gmw.GetLogger(c)
	requestID := c.GetString(helper.RequestIdKey)

	// Auth failures are audited at low volume; identity is unknown here.
	audit.LogError(lg, requestID, "", kind, authRejectionMessage)

	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"message": authRejectionMessage,
			"type":    "auth_error",
		},
	})
	c.Abort()
}
