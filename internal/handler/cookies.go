package handler

import (
	"net/http"
	"time"

	"github.com/spaps/rental-backend/internal/config"
)

// tokenCookie builds a token cookie with the shared transport attributes
// and a lifetime expressed in days, matching the token's own expiry
// granularity.
func tokenCookie(cfg config.Cookie, name, value string, days int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Expires:  time.Now().Add(time.Duration(days) * 24 * time.Hour),
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg.SameSite),
	}
}

// expiredCookie overwrites a token cookie with an already-expired one,
// which is how the browser is told to drop it.
func expiredCookie(cfg config.Cookie, name string) *http.Cookie {
	c := tokenCookie(cfg, name, "", 0)
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	return c
}

func sameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
