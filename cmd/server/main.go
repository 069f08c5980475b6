package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ninepay-gateway/internal/config"
	"ninepay-gateway/internal/db"
	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/metrics"
	"ninepay-gateway/internal/middleware"
	"ninepay-gateway/internal/payment"
	"ninepay-gateway/internal/payment/api"
	"ninepay-gateway/internal/payment/webhook"
	"ninepay-gateway/internal/transport"
	"ninepay-gateway/internal/utils"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = listenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("Server stopped", zap.Error(err))
	}
	logger.Sync()
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		return err
	}

	database := initDBFunc(cfg)
	defer database.Close()

	handler, err := newServer(cfg, database)
	if err != nil {
		return err
	}

	addr := ":" + cfg.AppPort
	logger.L().Info("NinePay gateway service starting",
		zap.String("addr", addr),
		zap.String("env", cfg.AppEnv),
		zap.String("ninepay_env", cfg.NinePayEnv),
	)
	return startServerFunc(addr, handler)
}

// newServer wires the gateway, storage and handlers behind the middleware chain.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, error) {
	recorder := metrics.NewRecorder()

	manager, err := payment.NewManager(cfg.NinePay(), transport.NewClient(nil), recorder)
	if err != nil {
		return nil, err
	}
	gateway := manager.Gateway()
	repo := payment.NewRepository(database)

	webhookHandler := webhook.NewWebhookHandler(gateway, repo)
	apiHandler := api.NewHandler(gateway, repo)

	limiter := middleware.NewLimiter(cfg.ServiceKey)
	router := setupRouter(cfg.JWTSecret, limiter, recorder, webhookHandler.CallbackHandler, apiHandler)

	return logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.CORS(cfg.CORSOrigin)(router),
		),
	), nil
}

func setupRouter(
	jwtSecret string,
	limiter *middleware.Limiter,
	recorder *metrics.Recorder,
	callback http.HandlerFunc,
	apiHandler *api.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	mux.Handle("GET /metrics", recorder.Handler())

	// 9Pay posts results here and redirects the buyer here; the checksum
	// authenticates both.
	mux.Handle(middleware.CallbackPath, limiter.Middleware(callback))

	apiMux := http.NewServeMux()
	apiHandler.Register(apiMux)
	protected := middleware.RequireAuth(jwtSecret)(limiter.Middleware(apiMux))
	mux.Handle("/payments", protected)
	mux.Handle("/payments/", protected)
	mux.Handle("/refunds", protected)

	return mux
}

func listenAndServe(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

