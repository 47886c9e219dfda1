package routes

import (
	"net/http"
	"time"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/controllers"
	"helpdesk/helpdesk/middlewares"
	httputils "helpdesk/helpdesk/utils/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const DefaultRequestTimeout = 60 * time.Second

type Controllers struct {
	Chat   *controllers.ChatController
	Health *controllers.HealthController
	Admin  *controllers.AdminController
}

// NewRouter mounts every route group behind the shared middleware stack.
func NewRouter(cfg config.Config, ctrls Controllers, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middlewares.Recoverer)
	r.Use(middlewares.CORS(cfg.FrontendURL, cfg.IsProduction()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputils.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Mount("/health", HealthRoutes(ctrls.Health))
	r.Mount("/api/chat", ChatRoutes(ctrls.Chat, timeout))
	r.Mount("/admin", AdminRoutes(ctrls.Admin, ctrls.Health, cfg.JWTSecret, timeout))
	return r
}
