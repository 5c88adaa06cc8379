package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/crm-sync/internal/app"
	"github.com/xavierca1/crm-sync/internal/config"
	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/database"
	"github.com/xavierca1/crm-sync/internal/infra/queue"
	"github.com/xavierca1/crm-sync/internal/usecase"
	"github.com/xavierca1/crm-sync/pkg/logger"
)

func main() {
	firstRun := flag.Bool("first_run", false, "refresh dependent entities changed in the first-run window instead of the regular one")
	flag.Parse()

	os.Exit(run(*firstRun))
}

func run(firstRun bool) int {
	bootLog := logger.New(logger.Config{})
	cfg, err := config.Load()
	if err != nil {
		bootLog.Error().Err(err).Msg("configuration")
		return 1
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(ctx, cfg.Database.URL)
	if err != nil {
		log.Error().Err(err).Msg("database connection")
		return 1
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Error().Err(err).Msg("database schema")
		return 1
	}

	var publisher entity.InspectionPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, inspection report will only be logged")
		} else {
			defer mq.Close()
			publisher = queue.NewProducer(mq.Ch, logger.Component(log, "queue"))
		}
	}

	window := cfg.Sync.RefreshWindow
	if firstRun {
		window = cfg.Sync.FirstRunWindow
	}

	uc := app.NewLeadSync(cfg, db, publisher, log)
	sum, err := uc.Execute(ctx, usecase.RunLeadSyncInput{RefreshSince: time.Now().UTC().Add(-window)})
	if sum != nil {
		log.Info().Str("summary", sum.String()).Msg("lead sync finished")
	}
	if err != nil {
		log.Error().Err(err).Msg("lead sync failed")
		return 1
	}
	return 0
}
