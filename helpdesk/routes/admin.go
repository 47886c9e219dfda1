package routes

import (
	"net/http"
	"time"

	"helpdesk/helpdesk/controllers"
	"helpdesk/helpdesk/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func AdminRoutes(admin *controllers.AdminController, health *controllers.HealthController, jwtSecret string, timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AdminMiddleware(jwtSecret))
	r.Use(middleware.Timeout(timeout))

	r.Get("/diagnostics", handleJSON(func(r *http.Request) (interface{}, error) {
		return health.Diagnostics(r.Context()), nil
	}))
	r.Get("/unanswered", handleJSON(func(r *http.Request) (interface{}, error) {
		return admin.Unanswered(r.Context(), r.URL.Query().Get("sessionId"))
	}))
	r.Post("/migrate", handleJSON(func(r *http.Request) (interface{}, error) {
		return admin.Migrate(r.Context())
	}))
	return r
}
