package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

const (
	leadCollection       = "LeadCollection"
	permissionCollection = "MarketingPermissionCollection"
)

// BatchResult is what one pass over a batch produced.
type BatchResult struct {
	Leads        []*entity.LeadPayload
	Inspection   entity.Inspection
	Created      int
	Updated      int
	CreateFailed int
	UpdateFailed int
	Skipped      int
}

func newBatchResult(n int) *BatchResult {
	return &BatchResult{
		Leads:      make([]*entity.LeadPayload, 0, n),
		Inspection: entity.Inspection{},
	}
}

// LeadSyncer sends leads to C4C one at a time and follows each with its
// marketing permission chain.
type LeadSyncer struct {
	crm     CRMGateway
	consent *ConsentResolver
	log     zerolog.Logger
}

func NewLeadSyncer(crm CRMGateway, consent *ConsentResolver, log zerolog.Logger) *LeadSyncer {
	return &LeadSyncer{crm: crm, consent: consent, log: log}
}

// SyncBatch works on copies of leads; the inputs are never mutated. A
// transport error stops the batch and the result holds every lead handled
// up to and including the one that failed.
func (s *LeadSyncer) SyncBatch(ctx context.Context, token string, leads []*entity.LeadPayload) (*BatchResult, error) {
	res := newBatchResult(len(leads))

	for _, in := range leads {
		lead := in.Clone()
		err := s.syncOne(ctx, token, lead, res)
		res.Leads = append(res.Leads, lead)
		if err != nil {
			return res, fmt.Errorf("lead %d: %w", lead.TableID, err)
		}
	}

	s.log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("create_failed", res.CreateFailed).
		Int("update_failed", res.UpdateFailed).
		Int("skipped", res.Skipped).
		Msg("[SYNC] batch finished")
	return res, nil
}

func (s *LeadSyncer) syncOne(ctx context.Context, token string, lead *entity.LeadPayload, res *BatchResult) error {
	if lead.ExternalID == nil && (lead.URI != nil || lead.ContactUUID != nil) {
		s.log.Warn().Int64("table_id", lead.TableID).Msg("[SYNC] lead without id carries uri or contact uuid, clearing them")
		lead.URI = nil
		lead.ContactUUID = nil
	}

	body, consent := buildRequestBody(lead)

	switch state := lead.State(); {
	case state == entity.LeadStateExisting && lead.TaskName == entity.TaskUpdateLeads:
		return s.updateLead(ctx, token, lead, body, consent, res)
	case state == entity.LeadStateNew && lead.TaskName == entity.TaskCreateLeads:
		return s.createLead(ctx, token, lead, body, consent, res)
	default:
		res.Skipped++
		s.log.Debug().
			Int64("table_id", lead.TableID).
			Str("state", state.String()).
			Str("task", string(lead.TaskName)).
			Msg("[SYNC] no action for state and task")
		return nil
	}
}

func (s *LeadSyncer) updateLead(ctx context.Context, token string, lead, body *entity.LeadPayload, consent *string, res *BatchResult) error {
	r, err := s.crm.Update(ctx, *lead.URI, token, body)
	if err != nil {
		return err
	}
	if !r.OK {
		res.UpdateFailed++
		return nil
	}
	lead.Status = entity.LeadStatusUpdated
	res.Updated++

	if err := s.backfillOwner(ctx, lead); err != nil {
		return err
	}

	// State() already guarantees a contact on the update path.
	resolution, err := s.consent.Resolve(ctx, *lead.ContactUUID)
	if err != nil {
		if c4c.IsTransportError(err) {
			return err
		}
		s.log.Warn().Err(err).Int64("table_id", lead.TableID).Msg("[SYNC] z03 channel could not be resolved")
		res.Inspection.Add(entity.InspectUnfoundZ03URI, lead.TableID)
		return nil
	}

	code := EncodeConsent(consent)
	chain := NewChain(s.log.With().Int64("table_id", lead.TableID).Logger())
	switch found := resolution.(type) {
	case ChannelExists:
		chain.AddStep("patch z03", entity.InspectErrorUpdatingZ03ForExisting, s.patchChannel(token, found.ChannelURI, code))
	case PermissionNoChannel:
		chain.AddStep("create z03", entity.InspectErrorCreatingZ03ForExisting,
			s.createChannel(token, func() (string, string) { return found.ChannelCollectionURI, found.PermissionObjectID }, code))
	case NoPermission:
		mp := &createdPermission{}
		chain.AddStep("create marketing permission", entity.InspectErrorCreatingMPForExisting, s.createPermission(token, *lead.ContactUUID, mp))
		chain.AddStep("create z03", entity.InspectErrorCreatingZ03ForExisting, s.createChannel(token, mp.target, code))
	default:
		panic(fmt.Sprintf("unhandled consent resolution %T", resolution))
	}
	return s.runChain(ctx, chain, lead, res)
}

func (s *LeadSyncer) createLead(ctx context.Context, token string, lead, body *entity.LeadPayload, consent *string, res *BatchResult) error {
	created, err := s.crm.Create(ctx, leadCollection, token, body)
	if err != nil {
		return err
	}
	if !created.OK {
		res.CreateFailed++
		return nil
	}
	lead.ExternalID = entity.StringPtr(created.ID)
	lead.URI = entity.StringPtr(created.URI)
	lead.ContactUUID = entity.StringPtr(created.ContactUUID)
	lead.Status = entity.LeadStatusCreated
	res.Created++

	if err := s.backfillOwner(ctx, lead); err != nil {
		return err
	}

	if lead.ContactUUID == nil {
		s.log.Warn().Int64("table_id", lead.TableID).Msg("[SYNC] created lead has no contact uuid")
		res.Inspection.Add(entity.InspectNoContactUUIDForNewLead, lead.TableID)
		return nil
	}

	resolution, err := s.consent.Resolve(ctx, *lead.ContactUUID)
	if err != nil {
		if c4c.IsTransportError(err) {
			return err
		}
		s.log.Warn().Err(err).Int64("table_id", lead.TableID).Msg("[SYNC] marketing permission lookup failed")
		res.Inspection.Add(entity.InspectErrorCreatingMPForNewLead, lead.TableID)
		return nil
	}

	switch resolution.(type) {
	case NoPermission:
		mp := &createdPermission{}
		chain := NewChain(s.log.With().Int64("table_id", lead.TableID).Logger()).
			AddStep("create marketing permission", entity.InspectErrorCreatingMPForNewLead, s.createPermission(token, *lead.ContactUUID, mp)).
			AddStep("create z03", entity.InspectErrorCreatingZ03ForNewLead, s.createChannel(token, mp.target, EncodeConsent(consent)))
		return s.runChain(ctx, chain, lead, res)
	case PermissionNoChannel, ChannelExists:
		s.log.Warn().Int64("table_id", lead.TableID).Msg("[SYNC] marketing permission already exists for a new lead")
		res.Inspection.Add(entity.InspectExistedMPForNewLead, lead.TableID)
		return nil
	default:
		panic(fmt.Sprintf("unhandled consent resolution %T", resolution))
	}
}

func (s *LeadSyncer) runChain(ctx context.Context, chain *Chain, lead *entity.LeadPayload, res *BatchResult) error {
	category, err := chain.Execute(ctx)
	if err != nil {
		return err
	}
	if category != "" {
		res.Inspection.Add(category, lead.TableID)
	}
	return nil
}

// backfillOwner reads the owner C4C assigned when the staging row had none.
func (s *LeadSyncer) backfillOwner(ctx context.Context, lead *entity.LeadPayload) error {
	if lead.OwnerPartyUUID != nil || lead.URI == nil {
		return nil
	}
	owner, err := s.crm.ReadOwnerPartyUUID(ctx, *lead.URI)
	if err != nil {
		if c4c.IsTransportError(err) {
			return err
		}
		s.log.Warn().Err(err).Int64("table_id", lead.TableID).Msg("[SYNC] owner read-back failed")
		return nil
	}
	lead.OwnerPartyUUID = entity.StringPtr(owner)
	return nil
}

// createdPermission carries the new marketing permission from the create
// step to the channel step.
type createdPermission struct {
	channelURI string
	objectID   string
}

func (p *createdPermission) target() (string, string) {
	return p.channelURI, p.objectID
}

func (s *LeadSyncer) createPermission(token, contactUUID string, out *createdPermission) stepFunc {
	return func(ctx context.Context) (bool, error) {
		created, err := s.crm.Create(ctx, permissionCollection, token, c4c.NewMarketingPermission{BusinessPartnerUUID: contactUUID})
		if err != nil {
			return false, err
		}
		if !created.OK || created.URI == "" {
			return false, nil
		}
		out.channelURI = created.URI + "/ChannelPermission"
		out.objectID = c4c.ObjectIDFromURI(created.URI)
		if out.objectID == "" {
			out.objectID = created.ObjectID
		}
		return out.objectID != "", nil
	}
}

func (s *LeadSyncer) createChannel(token string, target func() (string, string), code string) stepFunc {
	return func(ctx context.Context) (bool, error) {
		uri, parent := target()
		created, err := s.crm.Create(ctx, uri, token, c4c.NewChannelPermission{
			ParentObjectID: parent,
			Channel:        entity.ChannelZ03,
			Consent:        code,
		})
		if err != nil {
			return false, err
		}
		return created.OK, nil
	}
}

func (s *LeadSyncer) patchChannel(token, uri, code string) stepFunc {
	return func(ctx context.Context) (bool, error) {
		r, err := s.crm.Update(ctx, uri, token, c4c.ChannelConsentPatch{Channel: entity.ChannelZ03, Consent: code})
		if err != nil {
			return false, err
		}
		return r.OK, nil
	}
}
