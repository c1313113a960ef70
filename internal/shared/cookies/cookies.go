package cookies

import (
	"net/http"
	"net/url"
	"strings"

	"planets-tableau/internal/shared/config"
)

const AuthCookieName = "auth_token"

// Session writes and clears the player session cookie.
type Session struct {
	domain   string
	secure   bool
	sameSite http.SameSite
	maxAge   int
}

func NewSession(auth config.AuthConfig, frontend config.FrontendConfig) *Session {
	return &Session{
		domain:   extractDomain(frontend.URL),
		secure:   auth.CookieSecure,
		sameSite: parseSameSite(auth.CookieSameSite),
		maxAge:   int(auth.TokenExpiration.Seconds()),
	}
}

func (s *Session) SetAuthCookie(w http.ResponseWriter, token string) {
	cookie := s.authCookie()
	cookie.Value = token
	cookie.MaxAge = s.maxAge

	http.SetCookie(w, cookie)
}

func (s *Session) ClearAuthCookie(w http.ResponseWriter) {
	cookie := s.authCookie()
	cookie.Value = ""
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)
}

func (s *Session) authCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
	}
}

func extractDomain(frontendURL string) string {
	parsedURL, err := url.Parse(frontendURL)
	if err != nil || parsedURL.Host == "" {
		return ""
	}

	host := parsedURL.Hostname()
	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	return strings.TrimPrefix(host, "www.")
}

func parseSameSite(sameSiteStr string) http.SameSite {
	switch strings.ToLower(sameSiteStr) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
