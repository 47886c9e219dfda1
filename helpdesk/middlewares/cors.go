package middlewares

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// OriginAllowed reports whether a browser origin may call the API. Local
// development hosts, Vercel deployments and the configured frontend always
// pass; anything else passes unless strict is set.
func OriginAllowed(origin, frontendURL string, strict bool) bool {
	switch {
	case origin == "":
		return true
	case strings.Contains(origin, "localhost"), strings.Contains(origin, "127.0.0.1"):
		return true
	case strings.HasSuffix(origin, ".vercel.app"):
		return true
	case frontendURL != "" && origin == frontendURL:
		return true
	}
	return !strict
}

// CORS echoes allowed origins with credentials and answers preflights.
func CORS(frontendURL string, strict bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && OriginAllowed(origin, frontendURL, strict)
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
