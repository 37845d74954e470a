package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"agriportal-go/logger"
	"agriportal-go/models"
	"agriportal-go/utils"
)

func setupJWT(t *testing.T) {
	t.Helper()
	if err := utils.InitializeJWT("middleware-test-secret-0123456789abcdef", time.Hour); err != nil {
		t.Fatalf("InitializeJWT: %v", err)
	}
}

func mustToken(t *testing.T, id string, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateToken(id, role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestDecide(t *testing.T) {
	setupJWT(t)
	admin := mustToken(t, "a1", models.RoleAdmin)
	farmer := mustToken(t, "f1", models.RoleFarmer)

	tests := []struct {
		name  string
		path  string
		token string
		want  Decision
	}{
		{"public home", "/", "", Decision{Allow: true}},
		{"public farmer login", "/farmer/login", "", Decision{Allow: true}},
		{"admin login stays reachable", "/admin/login", "", Decision{Allow: true}},
		{"admin page without token", "/admin/dashboard", "", Decision{Redirect: "/admin/login"}},
		{"admin page with bad token", "/admin/schemes", "garbage", Decision{Redirect: "/admin/login"}},
		{"admin page as farmer", "/admin/dashboard", farmer, Decision{Redirect: "/farmer/dashboard"}},
		{"admin page as admin", "/admin/dashboard", admin, Decision{Allow: true}},
		{"admin root as admin", "/admin", admin, Decision{Allow: true}},
		{"farmer dashboard without token", "/farmer/dashboard", "", Decision{Redirect: "/farmer/login"}},
		{"farmer applications as admin", "/farmer/applications/new", admin, Decision{Redirect: "/admin/dashboard"}},
		{"farmer dashboard as farmer", "/farmer/dashboard", farmer, Decision{Allow: true}},
		{"lookalike prefix is public", "/administrator", "", Decision{Allow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.path, tt.token); got != tt.want {
				t.Errorf("Decide(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGuardRedirects(t *testing.T) {
	setupJWT(t)
	h := Guard(logger.Discard())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: mustToken(t, "a1", models.RoleAdmin)})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected admin cookie to pass, got %d", rr.Code)
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromRequest(req); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "cookie-token"})
	if got := TokenFromRequest(req); got != "cookie-token" {
		t.Errorf("expected cookie token, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer header-token")
	if got := TokenFromRequest(req); got != "header-token" {
		t.Errorf("expected header to win, got %q", got)
	}
}

func TestSetTokenCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetTokenCookie(rr, "abc", 7*24*time.Hour, true)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != TokenCookieName || c.Value != "abc" {
		t.Errorf("unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure {
		t.Error("expected httpOnly secure cookie")
	}
	if c.MaxAge != 604800 {
		t.Errorf("expected max-age 604800, got %d", c.MaxAge)
	}
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	setupJWT(t)
	log := logger.Discard()

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r).ID
		w.WriteHeader(http.StatusOK)
	})
	h := JWTAuth(log)(RequireRole(models.RoleAdmin, log)(inner))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"invalid token", "nope", http.StatusUnauthorized},
		{"wrong role", mustToken(t, "f1", models.RoleFarmer), http.StatusUnauthorized},
		{"admin", mustToken(t, "a1", models.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rr.Code)
			}
		})
	}
	if seen != "a1" {
		t.Errorf("expected claims in context, got %q", seen)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/schemes", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/schemes", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected other client to be unaffected, got %d", rr.Code)
	}

	rl.evictIdle(time.Now().Add(visitorIdleTimeout + time.Second))
	if len(rl.visitors) != 0 {
		t.Errorf("expected idle visitors evicted, %d left", len(rl.visitors))
	}
}

func TestCORS(t *testing.T) {
	corsRequest := func(allowed []string, method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/schemes", nil)
		req.Header.Set("Origin", origin)
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
		rr := httptest.NewRecorder()
		CORS(allowed)(okHandler).ServeHTTP(rr, req)
		return rr
	}

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		status      int
		allowOrigin string
		credentials string
	}{
		{"default config foreign origin", nil, http.MethodGet, "https://evil.example", http.StatusOK, "", ""},
		{"listed origin", []string{"https://portal.example"}, http.MethodGet, "https://portal.example", http.StatusOK, "https://portal.example", "true"},
		{"listed origin preflight", []string{"https://portal.example"}, http.MethodOptions, "https://portal.example", http.StatusNoContent, "https://portal.example", "true"},
		{"unlisted origin", []string{"https://portal.example"}, http.MethodGet, "https://evil.example", http.StatusOK, "", ""},
		{"wildcard never sends credentials", []string{"*"}, http.MethodGet, "https://evil.example", http.StatusOK, "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := corsRequest(tt.allowed, tt.method, tt.origin)
			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.allowOrigin {
				t.Errorf("expected allow origin %q, got %q", tt.allowOrigin, got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != tt.credentials {
				t.Errorf("expected allow credentials %q, got %q", tt.credentials, got)
			}
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/applications", nil))

	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Errorf("expected one request series, got %d", n)
	}
}
