package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/dialadrink/payrecon/config"
	"github.com/dialadrink/payrecon/internal/auth"
	"github.com/dialadrink/payrecon/internal/gateway/mpesa"
	"github.com/dialadrink/payrecon/internal/gateway/pesapal"
	handler "github.com/dialadrink/payrecon/internal/handler/http"
	"github.com/dialadrink/payrecon/internal/models"
	"github.com/dialadrink/payrecon/internal/repository"
	"github.com/dialadrink/payrecon/internal/repository/postgres"
	"github.com/dialadrink/payrecon/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	err = db.Migrate()
	if err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKeyHex := cfg.AuthTokenKey
	if tokenKeyHex == "" {
		tokenKeyHex = defaultAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(tokenKeyHex)
	if err != nil {
		logger.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	if cfg.StaffPasswordHash == "" {
		logger.Fatal("STAFF_PASSWORD_HASH is not set")
	}

	// dependency injection
	// auth
	authService := service.NewAuthService(cfg.StaffLogin, cfg.StaffPasswordHash, token)
	authHandler := handler.NewAuthHandler(authService)

	// payment
	orderRepo := repository.NewOrderRepository(db)
	pushGateway := mpesa.NewClient(cfg.MpesaAddr)
	redirectGateway := pesapal.NewClient(cfg.PesapalAddr)

	// terminal session transitions are pushed to the dashboard feed
	events := service.SessionEvents{
		OnReconciled: func(order *models.Order) {
			logger.Info("payment confirmed",
				zap.String("order", order.ID),
				zap.String("receipt", order.TransactionCode))
		},
		OnFailed: func(orderID, reason string) {
			logger.Info("payment not collected",
				zap.String("order", orderID),
				zap.String("reason", reason))
		},
		OnTimedOut: func(orderID string) {
			logger.Info("payment unconfirmed, check manually",
				zap.String("order", orderID))
		},
	}

	paymentService := service.NewPaymentService(
		orderRepo,
		pushGateway,
		redirectGateway,
		cfg.PollInterval,
		cfg.SessionTimeout,
		events,
		logger,
	)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := chi.NewRouter()

	router.Use(handler.Logging(logger))

	router.Post("/api/login", authHandler.LoginUser())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Post("/api/payments", paymentHandler.InitiatePayment())
		group.Post("/api/payments/{orderID}/prompt", paymentHandler.PromptPayment())
		group.Get("/api/payments/{orderID}/session", paymentHandler.GetSession())
		group.Post("/api/payments/{orderID}/cancel", paymentHandler.CancelSession())
		group.Post("/api/payments/{orderID}/window-closed", paymentHandler.WindowClosed())
		group.Post("/api/payments/{orderID}/manual", paymentHandler.RecordManualPayment())
	})

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}
