// Package auth holds the session guard for the admin back office.
package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionUserKey is the session field carrying the authenticated user id.
const SessionUserKey = "user_id"

// RequireAuth redirects to the login form unless the session carries an
// authenticated user id. There is no role distinction: a present user id is
// the whole admin check.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)
		if userID == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(SessionUserKey, userID)
		c.Next()
	}
}
