package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aarambha-backend/config"
	"aarambha-backend/controllers"
	"aarambha-backend/database"
	"aarambha-backend/logger"
	"aarambha-backend/models"
	"aarambha-backend/providers"
	"aarambha-backend/repository"
	"aarambha-backend/routes"
	"aarambha-backend/sender"
	servicepkg "aarambha-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync() //nolint:errcheck

	if err := database.Connect(cfg); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	if err := database.DB.AutoMigrate(
		&models.Application{},
		&models.Donation{},
		&models.ChildSponsorship{},
		&models.SponsoredChild{},
		&models.PaymentInstallment{},
		&models.Campaign{},
		&models.CampaignPayment{},
		&models.Payment{},
		&models.UserNotification{},
		&models.EmailQueue{},
	); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Gateway and DI chain
	gateway := providers.NewKhaltiProvider(providers.KhaltiConfig{
		SecretKey: cfg.KhaltiSecretKey,
		BaseURL:   cfg.KhaltiBaseURL,
		Timeout:   cfg.KhaltiTimeout,
	})

	applicationRepo := repository.NewGormApplicationRepo(database.DB)
	donationRepo := repository.NewGormDonationRepo(database.DB)
	sponsorshipRepo := repository.NewGormSponsorshipRepo(database.DB)
	campaignRepo := repository.NewGormCampaignRepo(database.DB)
	paymentRepo := repository.NewGormPaymentRepo(database.DB)
	notificationRepo := repository.NewGormNotificationRepo(database.DB)
	emailRepo := repository.NewGormEmailRepo(database.DB)

	receipts := servicepkg.NewReceiptService(notificationRepo, emailRepo, paymentRepo, logger.Log)

	applicationSvc := servicepkg.NewApplicationService(applicationRepo, gateway, receipts, cfg.ReturnBaseURL, cfg.SiteURL, logger.Log)
	donationSvc := servicepkg.NewDonationService(donationRepo, gateway, receipts, cfg.ReturnBaseURL, cfg.SiteURL, logger.Log)
	sponsorshipSvc := servicepkg.NewSponsorshipService(sponsorshipRepo, gateway, receipts, cfg.ReturnBaseURL, cfg.SiteURL, logger.Log)
	campaignSvc := servicepkg.NewCampaignService(campaignRepo, gateway, receipts, cfg.ReturnBaseURL, cfg.SiteURL, logger.Log)

	// Email worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	smtpSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		logger.Log.Warn("SMTP not configured, email worker disabled", zap.Error(err))
	} else {
		worker := servicepkg.NewEmailWorker(emailRepo, smtpSender, servicepkg.EmailWorkerConfig{
			BatchSize:    cfg.EmailBatchSize,
			MaxAttempts:  cfg.EmailMaxAttempts,
			PollInterval: cfg.EmailPollInterval,
			ErrorBackoff: cfg.EmailErrorBackoff,
			SendTimeout:  cfg.EmailSendTimeout,
		}, logger.Log)
		go worker.Start(workerCtx)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.Register(r, routes.Controllers{
		Applications:  controllers.NewApplicationController(applicationSvc, cfg.SiteURL, logger.Log),
		Donations:     controllers.NewDonationController(donationSvc, cfg.SiteURL, logger.Log),
		Sponsorships:  controllers.NewSponsorshipController(sponsorshipSvc, cfg.SiteURL, logger.Log),
		Campaign:      controllers.NewCampaignController(campaignSvc, cfg.SiteURL, logger.Log),
		Payments:      controllers.NewPaymentController(paymentRepo, logger.Log),
		Notifications: controllers.NewNotificationController(notificationRepo, logger.Log),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Log.Info("Aarambha backend started", zap.String("port", cfg.Port))
	<-quit
	logger.Log.Info("Shutting down...")

	stopWorker()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server exited cleanly")
}
