package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "crmcore/docs"
	"crmcore/internal/billing"
	"crmcore/internal/config"
	"crmcore/internal/domain"
	noopemail "crmcore/internal/email/noop"
	sesemail "crmcore/internal/email/ses"
	"crmcore/internal/handler"
	nooplock "crmcore/internal/lock/noop"
	redislocker "crmcore/internal/lock/redis"
	"crmcore/internal/logger"
	"crmcore/internal/port"
	"crmcore/internal/repository/postgres"
	"crmcore/internal/router"
	"crmcore/internal/service"
	s3storage "crmcore/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

// @title CRM Core API
// @version 1.0
// @description Invoices, quotations, GST computation and the payment ledger.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	seqRepo := postgres.NewSequenceRepo(db)
	txnRepo := postgres.NewTransactionRepo(db)
	auditRepo := postgres.NewDocumentAuditRepo(db)
	reportRepo := postgres.NewReportRepo(db)

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}

	// Payment lock
	var locker port.DocumentLocker
	if cfg.Redis.Enabled() {
		rdb, err := redislocker.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		locker = redislocker.NewDocumentLocker(rdb, cfg.Redis.LockTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("payment lock enabled")
	} else {
		locker = nooplock.NewDocumentLocker()
	}

	// Initialize storage and email
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = sesemail.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noopemail.NewNoopSender()
	}

	calc := billing.NewTaxCalculator(cfg.Billing.HomeJurisdiction)
	codes := billing.CodeFormat{
		InvoicePrefix:   cfg.Billing.InvoicePrefix,
		QuotationPrefix: cfg.Billing.QuotationPrefix,
		Width:           cfg.Billing.CodeWidth,
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	docSvc := service.NewDocumentService(docRepo, seqRepo, customerRepo, auditRepo, calc, codes)
	paymentSvc := service.NewPaymentService(docRepo, txnRepo, auditRepo, locker)
	deliverySvc := service.NewDeliveryService(docRepo, customerRepo, auditRepo, s3Client, sender, &cfg.S3)
	reportSvc := service.NewReportService(reportRepo)

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:              handler.NewAuthHandler(authSvc),
		User:              handler.NewUserHandler(userSvc),
		Customer:          handler.NewCustomerHandler(customerSvc),
		Invoice:           handler.NewDocumentHandler(docSvc, domain.DocumentTypeInvoice),
		Quotation:         handler.NewDocumentHandler(docSvc, domain.DocumentTypeQuotation),
		InvoiceDelivery:   handler.NewDeliveryHandler(deliverySvc, domain.DocumentTypeInvoice),
		QuotationDelivery: handler.NewDeliveryHandler(deliverySvc, domain.DocumentTypeQuotation),
		Payment:           handler.NewPaymentHandler(paymentSvc),
		Report:            handler.NewReportHandler(reportSvc),
		Health:            handler.NewHealthHandler(checks),
	}

	r := router.Setup(authSvc, handlers, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// In-flight deliveries finish before the database closes.
	deliverySvc.Wait()
	log.Info().Msg("server stopped")
	return nil
}
