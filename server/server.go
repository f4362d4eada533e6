package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/shopkartapp/shopkart/internal/config"
	"github.com/shopkartapp/shopkart/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()

	// The chain wraps the router rather than using mux middleware so that
	// CORS preflights are answered before route matching.
	chain := h.RequestLogger(h.MetricsContext(h.SecurityHeaders(h.CORS(router))))
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	// Fixed user paths must register before the {email} catch-all.
	userRouter := r.PathPrefix("/users").Subrouter()
	userRouter.HandleFunc("/signup", h.Signup).Methods("POST").Name("users.signup")
	userRouter.HandleFunc("/login", h.Login).Methods("POST").Name("users.login")
	userRouter.HandleFunc("", h.UpsertUser).Methods("POST").Name("users.upsert")
	userRouter.HandleFunc("/id/{id}", h.GetUserByID).Methods("GET").Name("users.get_by_id")
	userRouter.HandleFunc("/{email}", h.GetUserByEmail).Methods("GET").Name("users.get_by_email")
	userRouter.HandleFunc("/{id}", h.UpdateUser).Methods("PUT").Name("users.update")

	orderRouter := r.PathPrefix("/orders").Subrouter()
	orderRouter.HandleFunc("", h.CreateOrder).Methods("POST").Name("orders.create")
	orderRouter.HandleFunc("/{orderId}", h.GetOrder).Methods("GET").Name("orders.get")
	orderRouter.HandleFunc("/{orderId}", h.UpdateOrder).Methods("PATCH").Name("orders.update")

	paymentRouter := r.PathPrefix("/payments").Subrouter()
	paymentRouter.HandleFunc("/order", h.CreatePaymentOrder).Methods("POST").Name("payments.order")
	paymentRouter.HandleFunc("/verify", h.VerifyPayment).Methods("POST").Name("payments.verify")
	paymentRouter.HandleFunc("/webhook", h.RazorpayWebhook).Methods("POST").Name("payments.webhook")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not found"}`)
	})

	return r
}
