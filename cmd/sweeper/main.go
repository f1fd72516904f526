package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/unilib/portal-api/internal/config"
	"github.com/unilib/portal-api/internal/email"
	"github.com/unilib/portal-api/internal/notifier"
	"github.com/unilib/portal-api/internal/repository/mysql"
	"github.com/unilib/portal-api/internal/worker"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

// Standalone sweep runner for deployments that schedule the overdue job
// outside the API process (cron, one-off container). With -once it runs
// a single sweep and exits; otherwise it ticks on the configured
// interval.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("portal_sweeper")

	ledgerDB, err := mysql.NewDB(cfg.LedgerDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to ledger database")
	}
	defer ledgerDB.Close()

	reservationRepo := mysql.NewReservationRepository(ledgerDB)
	userDir := mysql.NewUserDirectory(ledgerDB)
	notificationRepo := mysql.NewNotificationRepository(ledgerDB)

	bus := notifier.NewSubject(appLogger)
	bus.Attach(notifier.NewPersistenceSink(notificationRepo, appMetrics))
	bus.Attach(notifier.NewEmailSink(email.NewSMTPSender(cfg.SMTP), notificationRepo, appLogger))

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	lease := worker.NewRedisLease(redisClient, cfg.Scheduler.LeaseKey, cfg.Scheduler.LeaseTTL)

	scheduler := worker.NewOverdueScheduler(
		reservationRepo, userDir, notificationRepo, bus, lease,
		cfg.Scheduler.Interval, appLogger, appMetrics)

	if *once {
		summary, err := scheduler.Sweep(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("sweep failed")
		}
		log.Info().
			Int("due_count", summary.DueCount).
			Int("overdue_count", summary.OverdueCount).
			Msg("sweep finished")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go scheduler.Start(ctx)
	if cfg.Scheduler.RunOnBoot {
		go func() {
			if _, err := scheduler.Sweep(ctx); err != nil {
				appLogger.Error(err, "boot sweep failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	log.Info().Msg("sweeper exited")
}
