package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminCookieName = "admin_session"

// AdminGate is the yes/no check in front of mutating routes: the cpanel sets
// the session cookie, everything else is rejected. Session validation lives
// upstream; this service only checks presence.
func AdminGate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cookie, err := ctx.Cookie(AdminCookieName); err != nil || cookie == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Admin session required",
			})
			return
		}
		ctx.Next()
	}
}
