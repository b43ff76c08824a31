package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const (
	SessionCookie = "webchess_session"
	sessionLocal  = "sessionID"
)

// EnsureSession resolves the caller's session ID from the X-Session-ID header,
// the sessionId query parameter or the session cookie, in that order. Browsers
// without one get a fresh ID in a cookie.
func EnsureSession(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if sessionID is already set
		if c.Locals(sessionLocal) != nil {
			return c.Next()
		}

		sessionID := c.Get("X-Session-ID")
		if sessionID == "" {
			sessionID = c.Query("sessionId")
		}
		if sessionID == "" {
			sessionID = c.Cookies(SessionCookie)
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			log.Debugf("issued new session %s", sessionID)
		}

		cookie := &fiber.Cookie{
			Name:     SessionCookie,
			Value:    sessionID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if ttl > 0 {
			cookie.Expires = time.Now().Add(ttl)
		}
		c.Cookie(cookie)

		// Store in context for this request
		c.Locals(sessionLocal, sessionID)
		return c.Next()
	}
}

// SessionID returns the ID stored by EnsureSession.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
