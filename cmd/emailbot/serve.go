package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/api"
	"github.com/abhishekbhowal06/email-automation/internal/automation"
	"github.com/abhishekbhowal06/email-automation/internal/config"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/delivery"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
	"github.com/abhishekbhowal06/email-automation/internal/scraper"
	"github.com/abhishekbhowal06/email-automation/internal/stats"
	"github.com/abhishekbhowal06/email-automation/internal/writer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and automation scheduler",
	RunE:  runServe,
}

var configFile string

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	outbox, err := delivery.OpenOutbox(cfg.Outbox.Path)
	if err != nil {
		return err
	}
	defer outbox.Close()

	leadRepo := repository.NewLeadRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)
	campaignRepo := repository.NewCampaignRepository(database.DB)
	emailRepo := repository.NewEmailRepository(database.DB)
	logRepo := repository.NewLogRepository(database.DB)
	settingsRepo := repository.NewSettingsRepository(database.DB)

	act := activity.New(logRepo, logger)
	m := metrics.New()

	simulator := delivery.NewSimulator(delivery.Config{
		DeliveredRate: *cfg.Simulator.DeliveredRate,
		OpenRate:      *cfg.Simulator.OpenRate,
		MaxOpenDelay:  cfg.Simulator.MaxOpenDelay,
	}, delivery.SimulatorDeps{
		Emails:    emailRepo,
		Campaigns: campaignRepo,
		Settings:  settingsRepo,
		Outbox:    outbox,
		Activity:  act,
		Metrics:   m,
		Logger:    logger,
	})
	defer simulator.Close()

	scheduler := automation.NewScheduler(nil, settingsRepo, act, m, logger)
	dispatcher := automation.NewDispatcher(automation.DispatcherConfig{
		Campaigns: campaignRepo,
		Leads:     leadRepo,
		Templates: templateRepo,
		Emails:    emailRepo,
		Settings:  settingsRepo,
		Sender:    simulator,
		Quota:     scheduler,
		Activity:  act,
		Metrics:   m,
		Logger:    logger,
	})
	scheduler.SetProcessor(dispatcher)

	aggregator := stats.NewAggregator(leadRepo, emailRepo, campaignRepo, scheduler)
	backup := leadio.NewBackupService(database.DB, leadRepo, templateRepo, campaignRepo, emailRepo, logRepo, settingsRepo)

	srv := api.NewServer(api.Deps{
		Leads:          leadRepo,
		Templates:      templateRepo,
		Campaigns:      campaignRepo,
		Emails:         emailRepo,
		Logs:           logRepo,
		Settings:       settingsRepo,
		Scheduler:      scheduler,
		Stats:          aggregator,
		Scraper:        scraper.New(),
		Writer:         writer.New(),
		Backup:         backup,
		Outbox:         outbox,
		Activity:       act,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Version:        version,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
