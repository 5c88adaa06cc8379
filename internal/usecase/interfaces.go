package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

type PermissionFinder interface {
	FindMarketingPermissions(ctx context.Context, contactUUID string) ([]c4c.MarketingPermission, error)
	FindChannelPermissions(ctx context.Context, collectionURI, channel string) ([]c4c.ChannelPermission, error)
}

// CRMGateway is the write side of C4C used by the lead sync.
type CRMGateway interface {
	PermissionFinder
	FetchCSRFToken(ctx context.Context) (string, error)
	Create(ctx context.Context, target, token string, payload any) (c4c.Created, error)
	Update(ctx context.Context, uri, token string, payload any) (c4c.Result, error)
	ReadOwnerPartyUUID(ctx context.Context, leadURI string) (string, error)
}

// CRMReader is the read side used to refresh dependent entities.
type CRMReader interface {
	PermissionFinder
	ReadChannelPermission(ctx context.Context, uri string) (c4c.ChannelPermission, error)
	ChangedLeads(ctx context.Context, since time.Time) ([]c4c.Lead, error)
	ChangedEmployees(ctx context.Context, since time.Time) ([]c4c.Employee, error)
	OrgUnitAssignments(ctx context.Context, uri string) ([]c4c.OrgUnitAssignment, error)
	FindBusinessPartners(ctx context.Context, uuids []string) ([]c4c.BusinessPartner, error)
}
