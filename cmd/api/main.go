package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"abcampus-finance/internal/adapter/gateway/fedapay"
	httpadp "abcampus-finance/internal/adapter/http"
	"abcampus-finance/internal/adapter/middleware"
	"abcampus-finance/internal/adapter/repository/gormrepo"
	"abcampus-finance/internal/adapter/sms/vonage"
	"abcampus-finance/internal/config"
	"abcampus-finance/internal/infrastructure/cache"
	"abcampus-finance/internal/infrastructure/db"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/checkout"
	"abcampus-finance/internal/usecase/loan"
	"abcampus-finance/internal/usecase/notification"
	"abcampus-finance/internal/usecase/otp"
	"abcampus-finance/internal/usecase/reconcile"
	"abcampus-finance/internal/usecase/review"
	"abcampus-finance/internal/usecase/savings"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("abcampus-finance", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// repositories
	loans := gormrepo.NewLoanRepository(gdb)
	plans := gormrepo.NewSavingsRepository(gdb)
	payments := gormrepo.NewPaymentRepository(gdb)
	unit := gormrepo.NewGormUoW(gdb)

	// outbound clients
	gateway := fedapay.NewClient(cfg.FedaPay, cfg.GatewayTimeout, log)
	var sender otp.Sender
	if cfg.SMSEnabled() {
		sender = vonage.NewClient(cfg.Vonage, cfg.GatewayTimeout, log)
	} else {
		log.Warn("VONAGE_API_KEY not set, SMS OTP disabled")
	}

	// use cases
	notifications := notification.NewUsecase(gormrepo.NewNotificationRepository(gdb), log)
	loanUC := loan.NewUsecase(loans, payments, unit, notifications, cfg.Loan, log)
	reviewUC := review.NewUsecase(unit, notifications, log)
	savingsUC := savings.NewUsecase(plans, unit, notifications, log)
	checkoutUC := checkout.NewUsecase(loans, plans, gateway, cfg.FedaPay.PublicKey, log)
	reconcileUC := reconcile.NewUsecase(unit, notifications, log)
	otpUC := otp.NewUsecase(sender, cache.NewThrottle(rdb, "otp:throttle:", cfg.OTPThrottle), log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))

	httpadp.Register(e, httpadp.Routes{
		Health:        httpadp.NewHandler(),
		Loans:         httpadp.NewLoanHandler(loanUC, log),
		Reviews:       httpadp.NewReviewHandler(reviewUC, log),
		Savings:       httpadp.NewSavingsHandler(savingsUC, log),
		Payments:      httpadp.NewPaymentHandler(checkoutUC, reconcileUC, gateway, cfg.FedaPay.WebhookSecret, log),
		Notifications: httpadp.NewNotificationHandler(notifications, log),
		SMS:           httpadp.NewSMSHandler(otpUC, log),
		Idempotency:   middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
		Admin:         middleware.AdminAuth(cfg.AdminJWTSecret),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
