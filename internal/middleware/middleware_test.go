package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/config"
	"planets-tableau/internal/shared/cookies"
	"planets-tableau/internal/shared/database"
	"planets-tableau/internal/shared/database/databasetest"
	"planets-tableau/internal/shared/requestid"

	"github.com/google/uuid"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func issue(t *testing.T, issuer *auth.TokenIssuer, gameID uuid.UUID, name string) (string, *player.Player) {
	t.Helper()
	p, err := player.New(name)
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	token, err := issuer.Generate(gameID, p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return token, p
}

func TestRequirePlayer(t *testing.T) {
	issuer := newIssuer(t)
	gameID := uuid.New()
	token, p := issue(t, issuer, gameID, "Aaron")

	var seen *auth.Claims
	handler := RequirePlayer(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ClaimsFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookies.AuthCookieName, Value: token}) }, http.StatusOK},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK && (seen == nil || seen.PlayerID != p.ID || seen.GameID != gameID) {
				t.Fatalf("claims = %+v", seen)
			}
		})
	}
}

func seatPlayer(t *testing.T, db *database.DB, gameID uuid.UUID, p *player.Player) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO games (id, name, status, width, height, min_distance, seed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`),
		gameID, "test", "active", 150, 150, 10, 1, 0, 0)
	if err != nil {
		t.Fatalf("insert game: %v", err)
	}
	_, err = db.ExecContext(ctx, db.Rebind(
		`INSERT INTO game_players (id, game_id, name, turn_order, home_planet_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`),
		p.ID, gameID, p.Name, 0, nil, 0)
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
}

func TestGameAccess(t *testing.T) {
	db := databasetest.Open(t)
	issuer := newIssuer(t)

	gameID := uuid.New()
	seatedToken, seated := issue(t, issuer, gameID, "Aaron")
	seatPlayer(t, db, gameID, seated)
	ghostToken, _ := issue(t, issuer, gameID, "Ghost")
	foreignToken, _ := issue(t, issuer, uuid.New(), "Peter")

	mux := http.NewServeMux()
	mux.Handle("POST /api/games/{id}/claim", NewGameAccessMiddleware(db, issuer).Require(okHandler()))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"seated player", seatedToken, http.StatusOK},
		{"not seated", ghostToken, http.StatusForbidden},
		{"other game", foreignToken, http.StatusForbidden},
		{"no token", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/games/"+gameID.String()+"/claim", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin("s3cret")(okHandler())

	cases := map[string]int{
		"":       http.StatusUnauthorized,
		"wrong":  http.StatusForbidden,
		"s3cret": http.StatusOK,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodDelete, "/api/games/x", nil)
		if token != "" {
			req.Header.Set(AdminTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("token %q: status = %d, want %d", token, rec.Code, want)
		}
	}

	rec := httptest.NewRecorder()
	RequireAdmin("")(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unconfigured admin token should pass, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = requestid.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if len(generated) != 27 || generated != fromCtx {
		t.Fatalf("generated id %q, context %q", generated, fromCtx)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc" || fromCtx != "abc" {
		t.Fatalf("incoming id not reused: header %q, context %q", got, fromCtx)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2})
	handler := rl.Middleware(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d = %d", i, code)
		}
	}
	if code := send("10.0.0.1:1001"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded = %d", code)
	}
	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("other client = %d", code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(context.Background(), config.RateLimitConfig{Enabled: false, BurstSize: 0})
	rec := httptest.NewRecorder()
	rl.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestForgetIdle(t *testing.T) {
	rl := NewRateLimiter(context.Background(), config.RateLimitConfig{RequestsPerSecond: 1, BurstSize: 5})

	rl.getLimiter("10.0.0.1").Allow()
	now := time.Now()

	rl.forgetIdle(now)
	if _, ok := rl.clients["10.0.0.1"]; !ok {
		t.Fatalf("active client forgotten")
	}

	rl.forgetIdle(now.Add(time.Minute))
	if _, ok := rl.clients["10.0.0.1"]; ok {
		t.Fatalf("idle client kept")
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := getClientIP(req, false); ip != "192.168.1.1" {
		t.Fatalf("untrusted ip = %q", ip)
	}
	if ip := getClientIP(req, true); ip != "203.0.113.7" {
		t.Fatalf("trusted ip = %q", ip)
	}
}

func TestCORS_AllowsFrontend(t *testing.T) {
	handler := NewCORS(config.FrontendConfig{URL: "http://localhost:3000"}).Middleware(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
