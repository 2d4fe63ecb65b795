package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/auth"
)

const apiKeyHeader = "X-API-Key"

// APIKeyRequired authenticates admin requests. The presented key is hashed
// with HMAC-SHA256 and the pepper, looked up by hash, and compared in
// constant time to guard against timing side-channels.
func APIKeyRequired(apikeys auth.Repository, pepper []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		mac := hmac.New(sha256.New, pepper)
		mac.Write([]byte(key))
		hash := mac.Sum(nil)

		info, err := apikeys.FindByHash(c.Request.Context(), hex.EncodeToString(hash))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		stored, err := hex.DecodeString(info.KeyHash)
		if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		c.Next()
	}
}
