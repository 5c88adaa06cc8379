package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/crm-sync/internal/entity"
)

type MarketingPermissionRepository struct {
	DB *sql.DB
}

func NewMarketingPermissionRepository(db *sql.DB) *MarketingPermissionRepository {
	return &MarketingPermissionRepository{DB: db}
}

func (r *MarketingPermissionRepository) Upsert(ctx context.Context, permissions []entity.MarketingPermission) error {
	if len(permissions) == 0 {
		return nil
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO marketing_permission (contact_uuid, business_partner_id, general_consent, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (contact_uuid) DO UPDATE SET
				business_partner_id = EXCLUDED.business_partner_id,
				general_consent = EXCLUDED.general_consent,
				updated_at = NOW()`)
		if err != nil {
			return wrapPQ("prepare permission upsert", err)
		}
		defer stmt.Close()

		for _, p := range permissions {
			if _, err := stmt.ExecContext(ctx, p.ContactUUID, p.BusinessPartnerID, p.GeneralConsent); err != nil {
				return wrapPQ("upsert permission", err)
			}
		}
		return nil
	})
}
