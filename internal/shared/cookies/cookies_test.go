package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planets-tableau/internal/shared/config"
)

func TestSession_SetAndClear(t *testing.T) {
	session := NewSession(
		config.AuthConfig{TokenExpiration: time.Hour, CookieSecure: true, CookieSameSite: "strict"},
		config.FrontendConfig{URL: "https://planets.example.com:8443"},
	)

	rec := httptest.NewRecorder()
	session.SetAuthCookie(rec, "tok")
	cookie := rec.Result().Cookies()[0]

	if cookie.Name != AuthCookieName || cookie.Value != "tok" || cookie.MaxAge != 3600 {
		t.Fatalf("cookie = %+v", cookie)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie flags = %+v", cookie)
	}
	if cookie.Domain != "planets.example.com" {
		t.Fatalf("domain = %q", cookie.Domain)
	}

	rec = httptest.NewRecorder()
	session.ClearAuthCookie(rec)
	cleared := rec.Result().Cookies()[0]
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("cleared cookie = %+v", cleared)
	}
}

func TestExtractDomain_Localhost(t *testing.T) {
	for _, u := range []string{"http://localhost:3000", "http://127.0.0.1", "not a url"} {
		if got := extractDomain(u); got != "" {
			t.Fatalf("extractDomain(%q) = %q", u, got)
		}
	}
}
