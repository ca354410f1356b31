package mw

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/response"
)

// AdminSecretHeader carries the shared manager secret.
const AdminSecretHeader = "X-Admin-Secret"

// AdminSecret rejects requests whose X-Admin-Secret header does not match
// secret. An empty secret rejects everything.
func AdminSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(AdminSecretHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
