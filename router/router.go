package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agriportal-go/config"
	"agriportal-go/handlers"
	"agriportal-go/middleware"
	"agriportal-go/models"
)

type Deps struct {
	Handlers *handlers.Handlers
	Config   *config.Config
	Log      *slog.Logger
	Limiter  *middleware.RateLimiter
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	// Pages serves the portal's page routes behind the access guard.
	// Defaults to a file server over Config.StaticDir.
	Pages http.Handler
}

func New(d Deps) *mux.Router {
	h := d.Handlers
	r := mux.NewRouter()

	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(d.Config.AllowedOrigins))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"Method not allowed"}`))
	})

	jwt := middleware.JWTAuth(d.Log)
	authed := func(f http.HandlerFunc) http.Handler {
		return jwt(f)
	}
	only := func(role models.Role, f http.HandlerFunc) http.Handler {
		return jwt(middleware.RequireRole(role, d.Log)(f))
	}

	// Preflight requests only need the CORS middleware to answer them.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/admin/login", h.AdminLogin).Methods(http.MethodPost)
	auth.HandleFunc("/farmer/login", h.FarmerLogin).Methods(http.MethodPost)
	auth.HandleFunc("/farmer/register", h.FarmerRegister).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	auth.Handle("/me", authed(h.Me)).Methods(http.MethodGet)

	r.HandleFunc("/schemes", h.ListSchemes).Methods(http.MethodGet)
	r.Handle("/schemes", only(models.RoleAdmin, h.CreateScheme)).Methods(http.MethodPost)
	r.HandleFunc("/schemes/{id}", h.GetScheme).Methods(http.MethodGet)
	r.Handle("/schemes/{id}", only(models.RoleAdmin, h.UpdateScheme)).Methods(http.MethodPut)
	r.Handle("/schemes/{id}", only(models.RoleAdmin, h.DeleteScheme)).Methods(http.MethodDelete)

	r.Handle("/applications", authed(h.ListApplications)).Methods(http.MethodGet)
	r.Handle("/applications", only(models.RoleFarmer, h.SubmitApplication)).Methods(http.MethodPost)
	r.Handle("/applications/export", only(models.RoleAdmin, h.ExportApplications)).Methods(http.MethodGet)
	r.Handle("/applications/{id}", only(models.RoleAdmin, h.ReviewApplication)).Methods(http.MethodPut)

	r.Handle("/dashboard/stats", only(models.RoleAdmin, h.DashboardStats)).Methods(http.MethodGet)
	r.Handle("/dashboard/audit-logs", only(models.RoleAdmin, h.GetAuditLogs)).Methods(http.MethodGet)

	pages := d.Pages
	if pages == nil {
		pages = http.FileServer(http.Dir(d.Config.StaticDir))
	}
	r.PathPrefix("/").Handler(middleware.Guard(d.Log)(pages))

	return r
}
