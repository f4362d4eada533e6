package handlers

import (
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/shopkartapp/shopkart/internal/observability"
)

// SecurityHeaders sets baseline security headers for all responses.
func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Cross-Origin-Opener-Policy", "same-origin")

		next.ServeHTTP(w, r)
	})
}

// CORS allows browser requests from the configured storefront origins.
// Requests without an Origin header (server-to-server calls, gateway
// webhooks) pass through untouched.
func (h *Handlers) CORS(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(h.config.AllowedOrigins))
	for _, origin := range h.config.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[strings.ToLower(origin)] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		meter := observability.MeterFromContext(r.Context())
		meter.SetAttributes(attribute.String("component", "security.cors"))

		if _, ok := allowed[strings.ToLower(strings.TrimRight(origin, "/"))]; !ok {
			meter.Count("security.cors.blocked", 1, sentry.WithAttributes(attribute.String("origin", origin)))
			h.loggerFromContext(r.Context()).Warn("blocked request from disallowed origin",
				"origin", origin,
				"method", r.Method,
				"path", r.URL.Path,
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", origin)
		headers.Set("Access-Control-Allow-Credentials", "true")
		headers.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			headers.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
