package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextUserID is the gin context key under which requireAuth stores
// the authenticated caller's user id.
const contextUserID = "userID"

// requireAuth guards the versioned API: it validates the Bearer token
// and stashes the caller's user id for downstream handlers.
func (h *Handler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authorization header required",
		})
		return
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "malformed authorization header",
		})
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(contextUserID, userID)
	c.Next()
}
