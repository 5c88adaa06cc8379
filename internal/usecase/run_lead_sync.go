package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

type RunLeadSyncInput struct {
	// RefreshSince bounds the dependent entity refresh.
	RefreshSince time.Time
}

type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Loaded     int
	Rejected   []int64
	Synced     int
	Swept      int
	Batch      BatchResult
	Report     entity.InspectionReport
}

// RunLeadSyncUseCase is one complete outbound run: load, mark, two passes,
// persist, refresh, report and sweep.
type RunLeadSyncUseCase struct {
	Leads       entity.LeadRepositoryInterface
	CRM         CRMGateway
	Transformer *LeadTransformer
	Syncer      *LeadSyncer
	Refresher   *DependentRefresher
	Publisher   entity.InspectionPublisher
	Log         zerolog.Logger
	Now         func() time.Time
}

func (uc *RunLeadSyncUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *RunLeadSyncUseCase) Execute(ctx context.Context, in RunLeadSyncInput) (*RunSummary, error) {
	sum := &RunSummary{RunID: uuid.NewString(), StartedAt: uc.now()}
	log := uc.Log.With().Str("run_id", sum.RunID).Logger()

	records, err := uc.Leads.FindByStatus(ctx, entity.LeadStatusPending)
	if err != nil {
		return sum, dbError("load pending leads", err)
	}
	leads, rejected := uc.Transformer.TransformAll(records)
	sum.Loaded = len(records)
	sum.Rejected = tableIDs(rejected)

	if len(leads) == 0 {
		log.Info().Int("loaded", len(records)).Msg("[SYNC] no pending lead to send")
		return sum, uc.sweep(ctx, log, sum)
	}

	token, err := uc.CRM.FetchCSRFToken(ctx)
	if err != nil {
		if errors.Is(err, c4c.ErrNoCSRFToken) {
			return sum, &DomainError{Code: ErrCodeNoCSRFToken, Message: "no c4c csrf token, nothing was sent"}
		}
		return sum, err
	}

	// Committed on its own so a failed run cannot roll the marker back.
	if err := uc.Leads.MarkProcessing(ctx, leads); err != nil {
		return sum, dbError("mark leads processing", err)
	}
	log.Info().Int("leads", len(leads)).Msg("[SYNC] leads marked processing")

	first, err := uc.Syncer.SyncBatch(ctx, token, leads)
	if err != nil {
		return sum, uc.abort(ctx, log, sum, first.Leads, err)
	}

	merged := first
	if retry := stillPending(first.Leads); len(retry) > 0 {
		log.Info().Int("leads", len(retry)).Msg("[SYNC] second pass")
		second, err := uc.Syncer.SyncBatch(ctx, token, retry)
		if err != nil {
			return sum, uc.abort(ctx, log, sum, MergePasses(first, second).Leads, err)
		}
		merged = MergePasses(first, second)
	}
	sum.Batch = *merged
	sum.Synced = len(merged.Leads)

	if err := uc.Leads.SaveOutcomes(ctx, merged.Leads); err != nil {
		return sum, dbError("save sync outcomes", err)
	}

	if uc.Refresher != nil {
		if _, err := uc.Refresher.Refresh(ctx, in.RefreshSince); err != nil {
			log.Error().Err(err).Msg("[SYNC] dependent entity refresh failed")
		}
	}

	sum.Report = uc.report(sum, merged)
	uc.logReport(log, sum.Report)
	if uc.Publisher != nil && sum.Report.NeedsAttention() {
		if err := uc.Publisher.PublishInspectionReport(ctx, sum.Report); err != nil {
			log.Error().Err(err).Msg("[SYNC] inspection report not published")
		}
	}

	return sum, uc.sweep(ctx, log, sum)
}

// abort persists whatever is known after a transport failure. Leads the
// batch never reached stay processing until a later sweep.
func (uc *RunLeadSyncUseCase) abort(ctx context.Context, log zerolog.Logger, sum *RunSummary, known []*entity.LeadPayload, cause error) error {
	log.Error().Err(cause).Int("known", len(known)).Msg("[SYNC] c4c unreachable, run aborted")
	sum.Synced = len(known)
	if len(known) > 0 {
		if err := uc.Leads.SaveOutcomes(ctx, known); err != nil {
			log.Error().Err(err).Msg("[SYNC] partial outcomes not saved")
		}
	}
	sum.FinishedAt = uc.now()
	return &TechnicalError{Code: ErrCodeCRMTransport, Message: "c4c transport failure", Err: cause}
}

// sweep puts every row still marked processing back to pending.
func (uc *RunLeadSyncUseCase) sweep(ctx context.Context, log zerolog.Logger, sum *RunSummary) error {
	defer func() { sum.FinishedAt = uc.now() }()

	stuck, err := uc.Leads.FindByStatus(ctx, entity.LeadStatusProcessing)
	if err != nil {
		return dbError("load processing leads", err)
	}
	if len(stuck) == 0 {
		return nil
	}

	leads, rejected := uc.Transformer.TransformAll(stuck)
	for _, l := range leads {
		l.Status = entity.LeadStatusPending
	}
	if err := uc.Leads.ResetToPending(ctx, leads, tableIDs(rejected)); err != nil {
		return dbError("reset processing leads", err)
	}
	sum.Swept = len(stuck)
	log.Info().Int("leads", len(stuck)).Msg("[SYNC] processing leads reset to pending")
	return nil
}

func (uc *RunLeadSyncUseCase) report(sum *RunSummary, b *BatchResult) entity.InspectionReport {
	return entity.InspectionReport{
		RunID:        sum.RunID,
		StartedAt:    sum.StartedAt,
		FinishedAt:   uc.now(),
		Created:      b.Created,
		Updated:      b.Updated,
		CreateFailed: b.CreateFailed,
		UpdateFailed: b.UpdateFailed,
		StillPending: len(stillPending(b.Leads)),
		Rejected:     sum.Rejected,
		Categories:   b.Inspection,
	}
}

func (uc *RunLeadSyncUseCase) logReport(log zerolog.Logger, r entity.InspectionReport) {
	log.Info().
		Int("created", r.Created).
		Int("updated", r.Updated).
		Int("create_failed", r.CreateFailed).
		Int("update_failed", r.UpdateFailed).
		Int("still_pending", r.StillPending).
		Msg("[SYNC] run finished")
	for _, cat := range entity.InspectionCategories {
		if ids := r.Categories[cat]; len(ids) > 0 {
			log.Warn().Str("category", string(cat)).Ints64("table_ids", ids).Msg("[SYNC] leads need inspection")
		}
	}
}

// MergePasses keeps the first pass result for every lead, except where the
// second pass got a lead out of pending. Every lead the first pass failed to
// write is retried, so the failure counts are the second pass's alone.
func MergePasses(first, second *BatchResult) *BatchResult {
	if second == nil {
		return first
	}
	retried := make(map[int64]*entity.LeadPayload, len(second.Leads))
	for _, l := range second.Leads {
		if l.Status != entity.LeadStatusPending {
			retried[l.TableID] = l
		}
	}

	out := newBatchResult(len(first.Leads))
	for _, l := range first.Leads {
		if r, ok := retried[l.TableID]; ok {
			out.Leads = append(out.Leads, r)
			continue
		}
		out.Leads = append(out.Leads, l)
	}
	out.Inspection.Merge(first.Inspection)
	out.Inspection.Merge(second.Inspection)
	out.Created = first.Created + second.Created
	out.Updated = first.Updated + second.Updated
	out.CreateFailed = second.CreateFailed
	out.UpdateFailed = second.UpdateFailed
	out.Skipped = first.Skipped
	return out
}

func stillPending(leads []*entity.LeadPayload) []*entity.LeadPayload {
	var out []*entity.LeadPayload
	for _, l := range leads {
		if l.Status == entity.LeadStatusPending {
			out = append(out, l)
		}
	}
	return out
}

func tableIDs(rejected []Rejection) []int64 {
	if len(rejected) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(rejected))
	for _, r := range rejected {
		ids = append(ids, r.TableID)
	}
	return ids
}

func (s RunSummary) String() string {
	return fmt.Sprintf("run %s: loaded=%d synced=%d created=%d updated=%d swept=%d",
		s.RunID, s.Loaded, s.Synced, s.Batch.Created, s.Batch.Updated, s.Swept)
}
