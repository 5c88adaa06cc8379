package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

type RefreshSummary struct {
	Leads            int
	Permissions      int
	Employees        int
	BusinessPartners int
}

// DependentRefresher pulls marketing permissions, employees and lead owners
// touched since a point in time back into the staging tables.
type DependentRefresher struct {
	CRM         CRMReader
	Consent     *ConsentResolver
	Permissions entity.MarketingPermissionRepositoryInterface
	Employees   entity.EmployeeRepositoryInterface
	// ExcludedEmployees are duplicate employee UUIDs that must not be stored.
	ExcludedEmployees []string
	Log               zerolog.Logger
}

func (r *DependentRefresher) Refresh(ctx context.Context, since time.Time) (*RefreshSummary, error) {
	sum := &RefreshSummary{}

	leads, err := r.CRM.ChangedLeads(ctx, since)
	if err != nil {
		return sum, fmt.Errorf("read changed leads: %w", err)
	}
	sum.Leads = len(leads)

	perms, err := r.permissions(ctx, leads)
	if err != nil {
		return sum, err
	}
	if len(perms) > 0 {
		if err := r.Permissions.Upsert(ctx, perms); err != nil {
			return sum, dbError("upsert marketing permissions", err)
		}
	}
	sum.Permissions = len(perms)

	emps, err := r.employees(ctx, since)
	if err != nil {
		return sum, err
	}
	if len(emps) > 0 {
		if err := r.Employees.Upsert(ctx, emps); err != nil {
			return sum, dbError("upsert employees", err)
		}
	}
	sum.Employees = len(emps)

	partners, err := r.businessPartners(ctx, leads)
	if err != nil {
		return sum, err
	}
	if len(partners) > 0 {
		if err := r.Employees.Upsert(ctx, partners); err != nil {
			return sum, dbError("upsert business partners", err)
		}
	}
	sum.BusinessPartners = len(partners)

	r.Log.Info().
		Time("since", since).
		Int("leads", sum.Leads).
		Int("permissions", sum.Permissions).
		Int("employees", sum.Employees).
		Int("business_partners", sum.BusinessPartners).
		Msg("[REFRESH] dependent entities refreshed")
	return sum, nil
}

func (r *DependentRefresher) permissions(ctx context.Context, leads []c4c.Lead) ([]entity.MarketingPermission, error) {
	seen := map[string]bool{}
	var out []entity.MarketingPermission

	for _, l := range leads {
		contact, err := NormalizeContactUUID(l.ContactUUID)
		if err != nil || seen[contact] {
			continue
		}
		seen[contact] = true

		resolution, err := r.Consent.Resolve(ctx, contact)
		if err != nil {
			if c4c.IsTransportError(err) {
				return nil, err
			}
			r.Log.Warn().Err(err).Str("contact_uuid", contact).Msg("[REFRESH] marketing permission skipped")
			continue
		}

		mp := entity.MarketingPermission{ContactUUID: contact}
		switch found := resolution.(type) {
		case NoPermission:
		case PermissionNoChannel:
			if mp.BusinessPartnerID, err = r.businessPartnerID(ctx, contact); err != nil {
				return nil, err
			}
		case ChannelExists:
			if mp.BusinessPartnerID, err = r.businessPartnerID(ctx, contact); err != nil {
				return nil, err
			}
			cp, err := r.CRM.ReadChannelPermission(ctx, found.ChannelURI)
			if err != nil {
				if c4c.IsTransportError(err) {
					return nil, err
				}
				r.Log.Warn().Err(err).Str("contact_uuid", contact).Msg("[REFRESH] z03 consent not readable")
			}
			mp.GeneralConsent = entity.StringPtr(cp.Consent)
		default:
			panic(fmt.Sprintf("unhandled consent resolution %T", resolution))
		}
		out = append(out, mp)
	}
	return out, nil
}

func (r *DependentRefresher) businessPartnerID(ctx context.Context, contact string) (*string, error) {
	mps, err := r.CRM.FindMarketingPermissions(ctx, contact)
	if err != nil {
		if c4c.IsTransportError(err) {
			return nil, err
		}
		return nil, nil
	}
	if len(mps) == 0 {
		return nil, nil
	}
	return entity.StringPtr(mps[0].BusinessPartnerID), nil
}

func (r *DependentRefresher) employees(ctx context.Context, since time.Time) ([]entity.Employee, error) {
	raw, err := r.CRM.ChangedEmployees(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("read changed employees: %w", err)
	}

	excluded := upperSet(r.ExcludedEmployees)
	out := make([]entity.Employee, 0, len(raw))
	for _, e := range raw {
		if e.UUID == "" || excluded[strings.ToUpper(e.UUID)] {
			continue
		}

		var department *string
		if uri := e.EmployeeOrganisationalUnitAssignment.Deferred.URI; uri != "" {
			units, err := r.CRM.OrgUnitAssignments(ctx, uri)
			if err != nil {
				if c4c.IsTransportError(err) {
					return nil, err
				}
				r.Log.Warn().Err(err).Str("employee", e.UUID).Msg("[REFRESH] org unit not readable")
			}
			for _, u := range units {
				if u.OrgUnitID != "" {
					department = entity.StringPtr(u.OrgUnitID)
				}
			}
		}

		out = append(out, entity.Employee{
			EmployeeID:        e.UUID,
			Name:              entity.StringPtr(strings.TrimSpace(e.FirstName + " " + e.LastName)),
			Email:             entity.StringPtr(e.Email),
			Department:        department,
			Country:           entity.StringPtr(e.CountryCode),
			BusinessPartnerID: entity.StringPtr(e.BusinessPartnerID),
			Kind:              entity.EmployeeKindEmployee,
		})
	}
	return out, nil
}

// businessPartners returns lead owners that are partner contacts rather
// than employees already on file.
func (r *DependentRefresher) businessPartners(ctx context.Context, leads []c4c.Lead) ([]entity.Employee, error) {
	existing, err := r.Employees.ListAll(ctx)
	if err != nil {
		return nil, dbError("list employees", err)
	}
	knownIDs := map[string]bool{}
	knownNames := map[string]bool{}
	for _, e := range existing {
		knownIDs[strings.ToUpper(e.EmployeeID)] = true
		if e.Name != nil {
			knownNames[*e.Name] = true
		}
	}

	var owners []string
	seen := map[string]bool{}
	for _, l := range leads {
		id := strings.ToUpper(strings.TrimSpace(l.OwnerPartyUUID))
		if id == "" || knownIDs[id] || seen[id] {
			continue
		}
		seen[id] = true
		owners = append(owners, id)
	}
	if len(owners) == 0 {
		return nil, nil
	}

	bps, err := r.CRM.FindBusinessPartners(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("read business partners: %w", err)
	}

	var out []entity.Employee
	for _, bp := range bps {
		if bp.ThingType != c4c.ThingTypePartnerContact || bp.Name == "" || knownNames[bp.Name] {
			continue
		}
		knownNames[bp.Name] = true
		out = append(out, entity.Employee{
			EmployeeID: strings.ToUpper(bp.BusinessPartnerUUID),
			Name:       entity.StringPtr(bp.Name),
			Kind:       entity.EmployeeKindBusinessPartner,
		})
	}
	return out, nil
}

func upperSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[strings.ToUpper(strings.TrimSpace(v))] = true
	}
	return out
}
