package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealClientIP resolves the originating client address for the login
// audit trail. Behind the reverse proxy X-Real-IP is authoritative; the
// first X-Forwarded-For hop is the next best source.
func GetRealClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	return c.ClientIP()
}
