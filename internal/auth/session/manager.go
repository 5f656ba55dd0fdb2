// Package session manages the browser session cookie.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/huddle/internal/config"
)

const CookieName = "_sid"

type Manager struct {
	secure bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{secure: cfg.AuthCookieSecure}
}

func (m *Manager) Set(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw session token from the request, or "" when the
// cookie is absent.
func (m *Manager) Read(c *gin.Context) string {
	cookie, err := c.Request.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
