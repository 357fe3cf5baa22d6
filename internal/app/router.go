package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lims-dash/lims-dash/internal/assistant"
	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/dashboard"
	"github.com/lims-dash/lims-dash/internal/inventory"
	"github.com/lims-dash/lims-dash/internal/orders"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/users"
	"github.com/lims-dash/lims-dash/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthMiddleware   auth.Middleware
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	InventoryHandler *inventory.Handler
	OrdersHandler    *orders.Handler
	UsersHandler     *users.Handler
	AssistantHandler *assistant.Handler
}

// NewRouter constructs the chi.Router for the dashboard.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.Token() == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireUser)

		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/assistant", params.AssistantHandler.MountRoutes)
		r.Route("/settings", params.AuthHandler.MountSettingsRoutes)

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAdmin)
			params.UsersHandler.MountRoutes(r)
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("static assets unavailable", slog.Any("error", err))
	} else {
		fileServer := http.FileServer(http.FS(staticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", cacheControl(fileServer)))
	}

	return r
}

func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
