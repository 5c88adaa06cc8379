package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/usecase"
)

// LeadSyncRunner triggers one run outside the schedule.
type LeadSyncRunner interface {
	RunOnce(ctx context.Context) (*usecase.RunSummary, error)
}

type RunHandler struct {
	Runner LeadSyncRunner
	Log    zerolog.Logger
}

func NewRunHandler(runner LeadSyncRunner, log zerolog.Logger) *RunHandler {
	return &RunHandler{Runner: runner, Log: log}
}

type RunResponse struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Loaded       int               `json:"loaded"`
	Rejected     []int64           `json:"rejected,omitempty"`
	Synced       int               `json:"synced"`
	Swept        int               `json:"swept"`
	Created      int               `json:"created"`
	Updated      int               `json:"updated"`
	CreateFailed int               `json:"create_failed"`
	UpdateFailed int               `json:"update_failed"`
	Inspection   entity.Inspection `json:"inspection,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RunLeads handles POST /runs/leads.
func (h *RunHandler) RunLeads(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Runner.RunOnce(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(sum))
}

func (h *RunHandler) writeError(w http.ResponseWriter, err error) {
	var (
		de *usecase.DomainError
		te *usecase.TechnicalError
	)
	switch {
	case errors.As(err, &de) && de.Code == usecase.ErrCodeRunInProgress:
		writeJSON(w, http.StatusConflict, ErrorResponse{Code: de.Code, Message: de.Message})
	case errors.As(err, &de):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Code: de.Code, Message: de.Message})
	case errors.As(err, &te) && te.Code == usecase.ErrCodeCRMTransport:
		h.Log.Error().Err(err).Msg("manual run aborted")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Code: te.Code, Message: te.Message})
	case errors.As(err, &te):
		h.Log.Error().Err(err).Msg("manual run failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: te.Code, Message: te.Message})
	default:
		h.Log.Error().Err(err).Msg("manual run failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL_ERROR", Message: "lead sync run failed"})
	}
}

func toRunResponse(sum *usecase.RunSummary) RunResponse {
	return RunResponse{
		RunID:        sum.RunID,
		StartedAt:    sum.StartedAt,
		FinishedAt:   sum.FinishedAt,
		Loaded:       sum.Loaded,
		Rejected:     sum.Rejected,
		Synced:       sum.Synced,
		Swept:        sum.Swept,
		Created:      sum.Batch.Created,
		Updated:      sum.Batch.Updated,
		CreateFailed: sum.Batch.CreateFailed,
		UpdateFailed: sum.Batch.UpdateFailed,
		Inspection:   sum.Batch.Inspection,
	}
}
