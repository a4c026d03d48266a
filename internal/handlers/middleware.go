package handlers

import (
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie  = "devdesk_session"
	ctxUsernameKey = "username"
)

// sessionMiddleware resolves the session cookie into the username context key.
// Anonymous requests pass through unchanged.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" || h.services.Sessions == nil {
		c.Next()
		return
	}

	sess, err := h.services.Sessions.Resolve(token)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("session_resolve_failed", "err", err)
		}
		c.Next()
		return
	}

	// store in Gin context
	c.Set(ctxUsernameKey, sess.Username)
	c.Next()
}

func currentUsername(c *gin.Context) string {
	return c.GetString(ctxUsernameKey)
}
