// Package app wires the lead sync object graph shared by the commands.
package app

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/config"
	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/database"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
	"github.com/xavierca1/crm-sync/internal/usecase"
	"github.com/xavierca1/crm-sync/pkg/logger"
)

// NewLeadSync builds the run use case. publisher may be nil.
func NewLeadSync(cfg *config.Config, db *sql.DB, publisher entity.InspectionPublisher, log zerolog.Logger) *usecase.RunLeadSyncUseCase {
	leadRepo := database.NewLeadRepository(db)
	permissionRepo := database.NewMarketingPermissionRepository(db)
	employeeRepo := database.NewEmployeeRepository(db)

	crm := c4c.NewClient(cfg.C4C, logger.Component(log, "c4c"))
	syncLog := logger.Component(log, "sync")
	consent := usecase.NewConsentResolver(crm, syncLog)

	return &usecase.RunLeadSyncUseCase{
		Leads:       leadRepo,
		CRM:         crm,
		Transformer: usecase.NewLeadTransformer(syncLog),
		Syncer:      usecase.NewLeadSyncer(crm, consent, syncLog),
		Refresher: &usecase.DependentRefresher{
			CRM:               crm,
			Consent:           consent,
			Permissions:       permissionRepo,
			Employees:         employeeRepo,
			ExcludedEmployees: cfg.Sync.ExcludedEmployeeUUID,
			Log:               logger.Component(log, "refresh"),
		},
		Publisher: publisher,
		Log:       syncLog,
	}
}
