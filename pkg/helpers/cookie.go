package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

// refresh cookie lives for a year regardless of the token's own expiry;
// the token is re-validated on every refresh anyway
const refreshCookieMaxAge = int(365 * 24 * time.Hour / time.Second)

// CookieManager writes the refresh-token cookie. Access and action tokens
// travel in response bodies, never in cookies.
type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetRefresh stores the refresh token in a persistent, script-inaccessible,
// cross-site-permissive cookie.
func (m *CookieManager) SetRefresh(c *gin.Context, refresh string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, refresh, refreshCookieMaxAge, "/", m.Domain, m.Secure, true)
}

// GetRefresh reads the refresh token cookie; empty string when absent.
func (m *CookieManager) GetRefresh(c *gin.Context) string {
	v, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return v
}

func (m *CookieManager) ClearRefresh(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, "", -1, "/", m.Domain, m.Secure, true)
}
