package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avasilakis/autoinvest/internal/clients/brokerage"
	"github.com/avasilakis/autoinvest/internal/clients/marketdata"
	"github.com/avasilakis/autoinvest/internal/config"
	"github.com/avasilakis/autoinvest/internal/database"
	"github.com/avasilakis/autoinvest/internal/events"
	"github.com/avasilakis/autoinvest/internal/modules/allocation"
	"github.com/avasilakis/autoinvest/internal/modules/portfolio"
	"github.com/avasilakis/autoinvest/internal/modules/reporting"
	"github.com/avasilakis/autoinvest/internal/modules/trading"
	"github.com/avasilakis/autoinvest/internal/notify"
	"github.com/avasilakis/autoinvest/internal/scheduler"
	"github.com/avasilakis/autoinvest/internal/server"
	"github.com/avasilakis/autoinvest/pkg/logger"
)

func main() {
	// Load configuration first so the logger picks up level and file
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
		File:   cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	log.Info().Bool("dry_run", cfg.DryRun).Msg("Starting autoinvest")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := allocation.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to init allocation schema")
	}
	if err := reporting.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to init reporting schema")
	}

	// Clients
	broker := brokerage.NewClient(cfg.BrokerageURL, cfg.BrokerageRPS, log)
	history := marketdata.NewClient(cfg.MarketDataURL, log)

	// Services
	eventManager := events.NewManager(log)
	allocService := allocation.NewService(allocation.NewLoader(log), allocation.NewRepository(db.Conn(), log), log)
	portfolioService := portfolio.NewService(log)
	executor := trading.NewExecutor(broker, eventManager, cfg.DryRun, log)
	reportingService := reporting.NewService(portfolioService, history, reporting.NewRepository(db.Conn(), log), log)

	// The allocation file is the source of truth for targets
	if _, err := allocService.Sync(cfg.AllocationFile); err != nil {
		log.Fatal().Err(err).Str("path", cfg.AllocationFile).Msg("Failed to load target allocation")
	}

	notifiers := []notify.Notifier{notify.NewLogNotifier(log)}
	if cfg.EmailEnabled() {
		notifiers = append(notifiers, notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			To:       cfg.EmailTo,
		}, log))
	}

	sched := scheduler.New(log)
	cycle := scheduler.NewInvestCycle(
		broker, allocService, portfolioService, executor,
		reportingService, notifiers, eventManager, log,
	)

	if cfg.RunOnce {
		if err := sched.RunNow(cycle); err != nil {
			log.Fatal().Err(err).Msg("Investment cycle failed")
		}
		log.Info().Msg("Investment cycle completed")
		return
	}

	if err := sched.AddJob(cfg.Schedule, cycle); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Failed to register invest cycle")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Allocation: allocService,
		Reporting:  reportingService,
		Cycle:      cycle,
		Scheduler:  sched,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("schedule", cfg.Schedule).Msg("autoinvest running")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Stopped")
}
