package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/unilib/portal-api/internal/config"
	"github.com/unilib/portal-api/internal/email"
	"github.com/unilib/portal-api/internal/handler"
	reservationHandler "github.com/unilib/portal-api/internal/handler/reservation"
	sweepHandler "github.com/unilib/portal-api/internal/handler/sweep"
	"github.com/unilib/portal-api/internal/middleware"
	"github.com/unilib/portal-api/internal/notifier"
	"github.com/unilib/portal-api/internal/repository/legacy"
	"github.com/unilib/portal-api/internal/repository/mysql"
	"github.com/unilib/portal-api/internal/router"
	legacysyncService "github.com/unilib/portal-api/internal/service/legacysync"
	reservationService "github.com/unilib/portal-api/internal/service/reservation"
	"github.com/unilib/portal-api/internal/worker"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("portal")

	// Two independent pools: reservation ledger and legacy catalog
	ledgerDB, err := mysql.NewDB(cfg.LedgerDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to ledger database")
	}
	defer ledgerDB.Close()

	legacyDB, err := mysql.NewDB(cfg.LegacyDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to legacy catalog database")
	}
	defer legacyDB.Close()

	// Initialize repositories
	reservationRepo := mysql.NewReservationRepository(ledgerDB)
	userDir := mysql.NewUserDirectory(ledgerDB)
	notificationRepo := mysql.NewNotificationRepository(ledgerDB)
	catalog := legacy.NewCatalogGateway(legacyDB)

	// Initialize services
	syncSvc := legacysyncService.NewService(catalog, appLogger, appMetrics)
	reservationSvc := reservationService.NewService(
		reservationRepo, userDir, catalog, syncSvc, appLogger, appMetrics)

	// Notification bus owned by the application root
	bus := notifier.NewSubject(appLogger)
	bus.Attach(notifier.NewPersistenceSink(notificationRepo, appMetrics))
	bus.Attach(notifier.NewEmailSink(email.NewSMTPSender(cfg.SMTP), notificationRepo, appLogger))

	// Sweep lease so concurrent instances do not double-notify
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	lease := worker.NewRedisLease(redisClient, cfg.Scheduler.LeaseKey, cfg.Scheduler.LeaseTTL)

	scheduler := worker.NewOverdueScheduler(
		reservationRepo, userDir, notificationRepo, bus, lease,
		cfg.Scheduler.Interval, appLogger, appMetrics)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT)
	reservationH := reservationHandler.NewHandler(reservationSvc)
	sweepH := sweepHandler.NewHandler(scheduler)
	healthH := handler.NewHealthHandler(ledgerDB, legacyDB)

	// Setup router
	r := router.NewRouter(authMiddleware, reservationH, sweepH, healthH, router.Config{
		RateLimit: 50,
		RateBurst: 100,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go scheduler.Start(schedulerCtx)
	if cfg.Scheduler.RunOnBoot {
		go func() {
			if _, err := scheduler.Sweep(schedulerCtx); err != nil {
				appLogger.Error(err, "boot sweep failed")
			}
		}()
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
