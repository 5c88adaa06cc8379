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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/app"
	"github.com/xavierca1/crm-sync/internal/config"
	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/database"
	"github.com/xavierca1/crm-sync/internal/infra/http/handlers"
	"github.com/xavierca1/crm-sync/internal/infra/http/middleware"
	"github.com/xavierca1/crm-sync/internal/infra/mail"
	"github.com/xavierca1/crm-sync/internal/infra/queue"
	"github.com/xavierca1/crm-sync/internal/infra/worker"
	"github.com/xavierca1/crm-sync/pkg/logger"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.NewDBConnection(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// 2. Inspection queue and notifier
	var (
		publisher entity.InspectionPublisher
		mq        *queue.RabbitMQ
	)
	if cfg.RabbitMQ.URL != "" {
		mq, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer mq.Close()

		queueLog := logger.Component(log, "queue")
		publisher = queue.NewProducer(mq.Ch, queueLog)
		startNotifier(ctx, cfg, mq, queueLog)
	}

	// 3. Scheduled runs
	uc := app.NewLeadSync(cfg, db, publisher, log)
	syncWorker := worker.NewLeadSyncWorker(uc, cfg.Sync.Interval, cfg.Sync.RefreshWindow, logger.Component(log, "worker"))
	go syncWorker.Start(ctx)

	// 4. Ops router
	health := handlers.NewHealthHandler(db, nil, cfg.C4C.BaseURL, version)
	if mq != nil {
		health.Broker = mq
	}
	runs := handlers.NewRunHandler(syncWorker, logger.Component(log, "http"))
	limiter := middleware.NewRateLimiter(ctx, 6, time.Minute)

	r := chi.NewRouter()
	if cfg.HTTP.BehindProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.With(limiter.Limit).Post("/runs/leads", runs.RunLeads)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startNotifier(ctx context.Context, cfg *config.Config, mq *queue.RabbitMQ, log zerolog.Logger) {
	if len(cfg.Mail.Recipients) == 0 || cfg.Mail.Host == "" {
		log.Warn().Msg("no mail recipients configured, inspection reports stay queued")
		return
	}
	notifier := queue.NewWorker(mq.Ch, mail.NewEmailSender(cfg.Mail, log), log)
	go func() {
		if err := notifier.Start(ctx, queue.QueueName); err != nil {
			log.Error().Err(err).Msg("inspection worker stopped")
		}
	}()
}
