package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/txgate/txgate/application/port/inbound"
	apperror "github.com/txgate/txgate/domain/error"
	"github.com/txgate/txgate/infrastructure/http/handler"
	"github.com/txgate/txgate/infrastructure/http/middleware"
	"github.com/txgate/txgate/infrastructure/http/response"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// Server wires the transaction and admin handlers onto one mux router.
type Server struct {
	server *http.Server
	logger logger.Logger
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func NewServer(
	config ServerConfig,
	executor inbound.TransactionExecutor,
	admin inbound.PermissionAdmin,
	auth *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	log logger.Logger,
) *Server {
	router := mux.NewRouter()

	router.Use(middleware.CorrelationIDMiddleware)
	router.Use(rateLimit.RateLimit)

	txHandler := handler.NewTransactionHandler(executor, auth)
	txHandler.RegisterRoutes(router)

	adminHandler := handler.NewAdminHandler(admin, auth)
	adminHandler.RegisterRoutes(router)

	// Readiness is authoritative: an unready registry/cache must refuse
	// to serve rather than silently deny everything.
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !admin.IsReady() {
			response.WriteAppError(w, apperror.ErrRegistryNotReady(), logger.CorrelationID(r.Context()))
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	addr := config.Host + ":" + config.Port

	return &Server{
		logger: log,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
