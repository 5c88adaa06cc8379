package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/infra/http/middleware"
	"github.com/xavierca1/crm-sync/internal/usecase"
)

type leadSyncUseCase interface {
	Execute(ctx context.Context, in usecase.RunLeadSyncInput) (*usecase.RunSummary, error)
}

// LeadSyncWorker runs the lead sync on a ticker. Only one run is in flight
// at any time, whether scheduled or triggered by hand.
type LeadSyncWorker struct {
	uc            leadSyncUseCase
	tickInterval  time.Duration
	refreshWindow time.Duration
	log           zerolog.Logger
	now           func() time.Time

	mu sync.Mutex
}

func NewLeadSyncWorker(uc leadSyncUseCase, tickInterval, refreshWindow time.Duration, log zerolog.Logger) *LeadSyncWorker {
	return &LeadSyncWorker{
		uc:            uc,
		tickInterval:  tickInterval,
		refreshWindow: refreshWindow,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (w *LeadSyncWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.tickInterval).Msg("[WORKER] lead sync worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("[WORKER] lead sync worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *LeadSyncWorker) tick(ctx context.Context) {
	_, err := w.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrRunInProgress):
		w.log.Info().Msg("[WORKER] previous run still in progress, tick skipped")
	default:
		w.log.Error().Err(err).Msg("[WORKER] scheduled lead sync failed")
	}
}

// RunOnce runs with the regular refresh window.
func (w *LeadSyncWorker) RunOnce(ctx context.Context) (*usecase.RunSummary, error) {
	return w.RunWithWindow(ctx, w.refreshWindow)
}

// RunWithWindow runs once, refreshing dependent entities changed within
// window. It fails fast with ErrRunInProgress instead of queueing.
func (w *LeadSyncWorker) RunWithWindow(ctx context.Context, window time.Duration) (*usecase.RunSummary, error) {
	if !w.mu.TryLock() {
		return nil, usecase.ErrRunInProgress
	}
	defer w.mu.Unlock()

	start := w.now()
	sum, err := w.uc.Execute(ctx, usecase.RunLeadSyncInput{RefreshSince: start.Add(-window)})
	recordRun(sum, err, w.now().Sub(start), w.now())

	if sum != nil {
		w.log.Info().Str("summary", sum.String()).Err(err).Msg("[WORKER] lead sync run finished")
	}
	return sum, err
}

func recordRun(sum *usecase.RunSummary, err error, elapsed time.Duration, finishedAt time.Time) {
	middleware.RecordSyncRun(runResult(err), elapsed, finishedAt)
	if sum == nil {
		return
	}
	middleware.RecordLeadOutcome(middleware.OutcomeCreated, sum.Batch.Created)
	middleware.RecordLeadOutcome(middleware.OutcomeUpdated, sum.Batch.Updated)
	middleware.RecordLeadOutcome(middleware.OutcomeCreateFailed, sum.Batch.CreateFailed)
	middleware.RecordLeadOutcome(middleware.OutcomeUpdateFailed, sum.Batch.UpdateFailed)
	middleware.RecordLeadOutcome(middleware.OutcomeRejected, len(sum.Rejected))
	middleware.RecordLeadOutcome(middleware.OutcomeSwept, sum.Swept)
	for cat, ids := range sum.Batch.Inspection {
		middleware.RecordInspection(string(cat), len(ids))
	}
}

func runResult(err error) string {
	if err == nil {
		return "success"
	}
	var (
		de *usecase.DomainError
		te *usecase.TechnicalError
	)
	switch {
	case errors.As(err, &de):
		return de.Code
	case errors.As(err, &te):
		return te.Code
	default:
		return "error"
	}
}
