package entity

import (
	"context"
	"time"
)

// InspectionCategory names a lead that reached C4C but whose permission
// chain needs a human to look at it.
type InspectionCategory string

const (
	InspectExistedMPForNewLead         InspectionCategory = "existed_mp_for_new_lead"
	InspectNoContactUUIDForNewLead     InspectionCategory = "no_contactuuid_for_new_lead"
	InspectNoContactUUIDForExisting    InspectionCategory = "no_contactuuid_for_existing_lead"
	InspectUnfoundZ03URI               InspectionCategory = "unfound_z03_uri_for_both_existing_lead_and_mp"
	InspectErrorCreatingMPForNewLead   InspectionCategory = "error_creating_mp_for_new_lead"
	InspectErrorCreatingMPForExisting  InspectionCategory = "error_creating_mp_for_existing_lead"
	InspectErrorUpdatingZ03ForExisting InspectionCategory = "error_updating_z03_for_existing_lead"
	InspectErrorCreatingZ03ForExisting InspectionCategory = "error_creating_z03_for_existing_lead"
	InspectErrorCreatingZ03ForNewLead  InspectionCategory = "error_creating_z03_for_new_lead"
)

// InspectionCategories lists every category in reporting order.
var InspectionCategories = []InspectionCategory{
	InspectExistedMPForNewLead,
	InspectNoContactUUIDForNewLead,
	InspectNoContactUUIDForExisting,
	InspectUnfoundZ03URI,
	InspectErrorCreatingMPForNewLead,
	InspectErrorCreatingMPForExisting,
	InspectErrorUpdatingZ03ForExisting,
	InspectErrorCreatingZ03ForExisting,
	InspectErrorCreatingZ03ForNewLead,
}

// Inspection maps a category to the table ids that landed in it.
type Inspection map[InspectionCategory][]int64

func (in Inspection) Add(cat InspectionCategory, tableID int64) {
	in[cat] = append(in[cat], tableID)
}

// Merge appends other's ids into in.
func (in Inspection) Merge(other Inspection) {
	for cat, ids := range other {
		in[cat] = append(in[cat], ids...)
	}
}

func (in Inspection) Total() int {
	n := 0
	for _, ids := range in {
		n += len(ids)
	}
	return n
}

// InspectionReport is the end-of-run summary sent to operators.
type InspectionReport struct {
	RunID        string     `json:"run_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
	Created      int        `json:"created"`
	Updated      int        `json:"updated"`
	CreateFailed int        `json:"create_failed"`
	UpdateFailed int        `json:"update_failed"`
	StillPending int        `json:"still_pending"`
	Rejected     []int64    `json:"rejected,omitempty"`
	Categories   Inspection `json:"categories"`
}

// NeedsAttention is true when operators have something to act on.
func (r *InspectionReport) NeedsAttention() bool {
	return r.Categories.Total() > 0 || r.CreateFailed > 0 || r.UpdateFailed > 0 || len(r.Rejected) > 0
}

type InspectionPublisher interface {
	PublishInspectionReport(ctx context.Context, report InspectionReport) error
}
