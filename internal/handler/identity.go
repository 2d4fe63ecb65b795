package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ownerHeader carries the authenticated customer identity, resolved by the
// upstream auth proxy. The service itself performs no authentication.
const ownerHeader = "X-User-ID"

const ownerContextKey = "ownerID"

// OwnerRequired rejects requests without an owner identity header and stores
// the owner ID in the gin context for handlers.
func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader(ownerHeader)
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error: "missing " + ownerHeader + " header",
			})
			return
		}
		c.Set(ownerContextKey, owner)
		c.Next()
	}
}

// ownerID returns the owner identity set by OwnerRequired.
func ownerID(c *gin.Context) string {
	return c.GetString(ownerContextKey)
}
