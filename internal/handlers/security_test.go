package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopkartapp/shopkart/internal/config"
)

func corsTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnv(t, &config.Config{
		RazorpayKeySecret:     "test_key_secret",
		RazorpayWebhookSecret: "whsec_test",
		JWTSecret:             "test-jwt-secret",
		AllowedOrigins:        []string{"http://localhost:5173", "https://shop.example"},
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	env := corsTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	env.handlers.SecurityHeaders(okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("allowed origin is echoed", func(t *testing.T) {
		t.Parallel()

		env := corsTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		env.handlers.CORS(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("expected origin echoed, got %q", got)
		}
	})

	t.Run("disallowed origin is blocked", func(t *testing.T) {
		t.Parallel()

		env := corsTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		env.handlers.CORS(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		t.Parallel()

		env := corsTestEnv(t)
		req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
		req.Header.Set("Origin", "https://shop.example")
		rec := httptest.NewRecorder()

		env.handlers.CORS(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Fatal("expected allow-methods header on preflight")
		}
	})

	t.Run("no origin passes through", func(t *testing.T) {
		t.Parallel()

		env := corsTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", nil)
		rec := httptest.NewRecorder()

		env.handlers.CORS(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected no CORS headers without an origin, got %q", got)
		}
	})
}
