package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/xavierca1/crm-sync/internal/entity"
)

type leadColumn struct {
	name  string
	field func(*entity.LeadRecord) any
}

// leadColumns is the read order of the lead table.
var leadColumns = []leadColumn{
	{"table_id", func(l *entity.LeadRecord) any { return &l.TableID }},
	{"external_id", func(l *entity.LeadRecord) any { return &l.ExternalID }},
	{"group_code", func(l *entity.LeadRecord) any { return &l.GroupCode }},
	{"name", func(l *entity.LeadRecord) any { return &l.Name }},
	{"user_status_code", func(l *entity.LeadRecord) any { return &l.UserStatusCode }},
	{"owner_party_uuid", func(l *entity.LeadRecord) any { return &l.OwnerPartyUUID }},
	{"company", func(l *entity.LeadRecord) any { return &l.Company }},
	{"street", func(l *entity.LeadRecord) any { return &l.Street }},
	{"city", func(l *entity.LeadRecord) any { return &l.City }},
	{"postal_code", func(l *entity.LeadRecord) any { return &l.PostalCode }},
	{"state", func(l *entity.LeadRecord) any { return &l.State }},
	{"country", func(l *entity.LeadRecord) any { return &l.Country }},
	{"email", func(l *entity.LeadRecord) any { return &l.Email }},
	{"first_name", func(l *entity.LeadRecord) any { return &l.FirstName }},
	{"last_name", func(l *entity.LeadRecord) any { return &l.LastName }},
	{"title", func(l *entity.LeadRecord) any { return &l.Title }},
	{"mobile", func(l *entity.LeadRecord) any { return &l.Mobile }},
	{"phone", func(l *entity.LeadRecord) any { return &l.Phone }},
	{"note", func(l *entity.LeadRecord) any { return &l.Note }},
	{"field_of_work", func(l *entity.LeadRecord) any { return &l.FieldOfWork }},
	{"product_group", func(l *entity.LeadRecord) any { return &l.ProductGroup }},
	{"dealer_source", func(l *entity.LeadRecord) any { return &l.DealerSource }},
	{"campaign_value", func(l *entity.LeadRecord) any { return &l.CampaignValue }},
	{"roof_lead_category", func(l *entity.LeadRecord) any { return &l.RoofLeadCategory }},
	{"rel_roof_installation", func(l *entity.LeadRecord) any { return &l.RelRoofInstallation }},
	{"rel_roof_profile", func(l *entity.LeadRecord) any { return &l.RelRoofProfile }},
	{"rel_roof_rws", func(l *entity.LeadRecord) any { return &l.RelRoofRWS }},
	{"rel_roof_safety", func(l *entity.LeadRecord) any { return &l.RelRoofSafety }},
	{"rel_roof_accessories", func(l *entity.LeadRecord) any { return &l.RelRoofAccessories }},
	{"rel_roof_solar", func(l *entity.LeadRecord) any { return &l.RelRoofSolar }},
	{"attachment_1", func(l *entity.LeadRecord) any { return &l.Attachment1 }},
	{"attachment_2", func(l *entity.LeadRecord) any { return &l.Attachment2 }},
	{"attachment_3", func(l *entity.LeadRecord) any { return &l.Attachment3 }},
	{"attachment_4", func(l *entity.LeadRecord) any { return &l.Attachment4 }},
	{"attachment_5", func(l *entity.LeadRecord) any { return &l.Attachment5 }},
	{"project_status", func(l *entity.LeadRecord) any { return &l.ProjectStatus }},
	{"bill_addr_name", func(l *entity.LeadRecord) any { return &l.BillAddrName }},
	{"bill_addr_street", func(l *entity.LeadRecord) any { return &l.BillAddrStreet }},
	{"bill_addr_city", func(l *entity.LeadRecord) any { return &l.BillAddrCity }},
	{"bill_addr_postcode", func(l *entity.LeadRecord) any { return &l.BillAddrPostcode }},
	{"bill_addr_country", func(l *entity.LeadRecord) any { return &l.BillAddrCountry }},
	{"installers_earliest_week", func(l *entity.LeadRecord) any { return &l.InstallersEarliestWeek }},
	{"installers_latest_week", func(l *entity.LeadRecord) any { return &l.InstallersLatestWeek }},
	{"products_at_site_week", func(l *entity.LeadRecord) any { return &l.ProductsAtSiteWeek }},
	{"homing_letter_date", func(l *entity.LeadRecord) any { return &l.HomingLetterDate }},
	{"proj_man_1_name", func(l *entity.LeadRecord) any { return &l.ProjMan1Name }},
	{"proj_man_1_email", func(l *entity.LeadRecord) any { return &l.ProjMan1Email }},
	{"proj_man_1_mobile", func(l *entity.LeadRecord) any { return &l.ProjMan1Mobile }},
	{"proj_man_2_name", func(l *entity.LeadRecord) any { return &l.ProjMan2Name }},
	{"proj_man_2_email", func(l *entity.LeadRecord) any { return &l.ProjMan2Email }},
	{"proj_man_2_mobile", func(l *entity.LeadRecord) any { return &l.ProjMan2Mobile }},
	{"created_to_kata_date", func(l *entity.LeadRecord) any { return &l.CreatedToKataDate }},
	{"created_to_kata_time", func(l *entity.LeadRecord) any { return &l.CreatedToKataTime }},
	{"agreed_app_date", func(l *entity.LeadRecord) any { return &l.AgreedAppDate }},
	{"agreed_app_time", func(l *entity.LeadRecord) any { return &l.AgreedAppTime }},
	{"utm_medium_original", func(l *entity.LeadRecord) any { return &l.UTMMediumOriginal }},
	{"utm_source_original", func(l *entity.LeadRecord) any { return &l.UTMSourceOriginal }},
	{"utm_medium_recent", func(l *entity.LeadRecord) any { return &l.UTMMediumRecent }},
	{"utm_source_recent", func(l *entity.LeadRecord) any { return &l.UTMSourceRecent }},
	{"survey_status", func(l *entity.LeadRecord) any { return &l.SurveyStatus }},
	{"contact_uuid", func(l *entity.LeadRecord) any { return &l.ContactUUID }},
	{"uri", func(l *entity.LeadRecord) any { return &l.URI }},
	{"task_name", func(l *entity.LeadRecord) any { return &l.TaskName }},
	{"status", func(l *entity.LeadRecord) any { return &l.Status }},
	{"b2b_consent", func(l *entity.LeadRecord) any { return &l.B2BConsent }},
	{"b2c_consent", func(l *entity.LeadRecord) any { return &l.B2CConsent }},
	{"updated_at", func(l *entity.LeadRecord) any { return &l.UpdatedAt }},
}

func leadColumnNames() []string {
	names := make([]string, len(leadColumns))
	for i, c := range leadColumns {
		names[i] = c.name
	}
	return names
}

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByStatus(ctx context.Context, status entity.LeadStatus) ([]entity.LeadRecord, error) {
	query := `SELECT ` + strings.Join(leadColumnNames(), ", ") + ` FROM lead WHERE status = $1 ORDER BY table_id`

	rows, err := r.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, wrapPQ("select leads", err)
	}
	defer rows.Close()

	var out []entity.LeadRecord
	for rows.Next() {
		var rec entity.LeadRecord
		targets := make([]any, len(leadColumns))
		for i, c := range leadColumns {
			targets[i] = c.field(&rec)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, wrapPQ("scan lead", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPQ("iterate leads", err)
	}
	return out, nil
}

// MarkProcessing commits the processing marker in its own transaction.
func (r *LeadRepository) MarkProcessing(ctx context.Context, leads []*entity.LeadPayload) error {
	if len(leads) == 0 {
		return nil
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE lead SET status = $1, updated_at = NOW() WHERE table_id = ANY($2)`,
			string(entity.LeadStatusProcessing), pq.Array(payloadIDs(leads)))
		if err != nil {
			return wrapPQ("mark processing", err)
		}
		return nil
	})
}

// SaveOutcomes writes status and C4C identifiers back for every lead.
func (r *LeadRepository) SaveOutcomes(ctx context.Context, leads []*entity.LeadPayload) error {
	if len(leads) == 0 {
		return nil
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE lead SET
				status = $2,
				external_id = $3,
				uri = $4,
				contact_uuid = $5,
				owner_party_uuid = $6,
				updated_at = NOW()
			WHERE table_id = $1`)
		if err != nil {
			return wrapPQ("prepare save outcome", err)
		}
		defer stmt.Close()

		for _, l := range leads {
			if _, err := stmt.ExecContext(ctx,
				l.TableID,
				string(l.Status),
				l.ExternalID,
				l.URI,
				l.ContactUUID,
				l.OwnerPartyUUID,
			); err != nil {
				return wrapPQ("save outcome", err)
			}
		}
		return nil
	})
}

// ResetToPending moves rows still marked processing back to pending.
func (r *LeadRepository) ResetToPending(ctx context.Context, leads []*entity.LeadPayload, orphanTableIDs []int64) error {
	ids := append(payloadIDs(leads), orphanTableIDs...)
	if len(ids) == 0 {
		return nil
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE lead SET status = $1, updated_at = NOW() WHERE table_id = ANY($2) AND status = $3`,
			string(entity.LeadStatusPending), pq.Array(ids), string(entity.LeadStatusProcessing))
		if err != nil {
			return wrapPQ("reset to pending", err)
		}
		return nil
	})
}

func payloadIDs(leads []*entity.LeadPayload) []int64 {
	ids := make([]int64, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.TableID)
	}
	return ids
}
