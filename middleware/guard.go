package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agriportal-go/models"
	"agriportal-go/utils"
)

// Decision is the outcome of the page access guard.
type Decision struct {
	Allow    bool
	Redirect string
}

var allow = Decision{Allow: true}

type protectedPrefix struct {
	prefix string
	role   models.Role
}

var protectedPages = []protectedPrefix{
	{"/admin", models.RoleAdmin},
	{"/farmer/dashboard", models.RoleFarmer},
	{"/farmer/applications", models.RoleFarmer},
}

// Login pages live under protected prefixes but must stay reachable.
var publicPages = map[string]bool{
	"/admin/login": true,
}

// Decide maps a page path and the token presented with it to allow or a
// redirect. It has no side effects.
func Decide(path, token string) Decision {
	required, ok := requiredRole(path)
	if !ok {
		return allow
	}

	claims, err := utils.VerifyToken(token)
	if err != nil {
		return Decision{Redirect: required.LoginPath()}
	}

	if claims.Role != required {
		// Signed in, wrong area: send them home rather than to an error.
		return Decision{Redirect: claims.Role.DashboardPath()}
	}
	return allow
}

func requiredRole(path string) (models.Role, bool) {
	if publicPages[strings.TrimSuffix(path, "/")] {
		return "", false
	}
	for _, p := range protectedPages {
		if path == p.prefix || strings.HasPrefix(path, p.prefix+"/") {
			return p.role, true
		}
	}
	return "", false
}

// Guard applies Decide to every request before it reaches next.
func Guard(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(r.URL.Path, TokenFromRequest(r))
			if !d.Allow {
				log.Debug("page guard redirect", "path", r.URL.Path, "to", d.Redirect)
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
