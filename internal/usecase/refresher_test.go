package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

const (
	otherContact = "00163E0A-1B2C-1EDB-A0B1-000000000002"
	ownerEmp     = "00163E0A-0000-0000-0000-00000000E001"
	ownerBP      = "00163E0A-0000-0000-0000-00000000B001"
	dupEmp       = "00163EAD-C76A-1EDB-9793-6F537D2E7316"
)

func employee(id, first, last, orgURI string) c4c.Employee {
	e := c4c.Employee{UUID: id, FirstName: first, LastName: last, Email: first + "@example.com", CountryCode: "FI"}
	e.EmployeeOrganisationalUnitAssignment.Deferred.URI = orgURI
	return e
}

// TestRefreshDependentEntities - permissions, employees and partner owners are upserted
func TestRefreshDependentEntities(t *testing.T) {
	ctx := context.Background()
	since := time.Date(2024, 5, 2, 11, 25, 0, 0, time.UTC)
	crm := new(MockCRM)
	perms := new(MockPermissionRepository)
	emps := new(MockEmployeeRepository)

	crm.On("ChangedLeads", ctx, since).Return([]c4c.Lead{
		{ContactUUID: testContact, OwnerPartyUUID: ownerEmp},
		{ContactUUID: testContact, OwnerPartyUUID: ownerBP},
		{ContactUUID: otherContact},
		{ContactUUID: ""},
	}, nil)

	mp := permission("MP1")
	cp := c4c.ChannelPermission{}
	cp.Metadata.URI = channelURI
	crm.On("FindMarketingPermissions", ctx, testContact).Return([]c4c.MarketingPermission{mp}, nil)
	crm.On("FindChannelPermissions", ctx, mp.ChannelPermission.Deferred.URI, "Z03").Return([]c4c.ChannelPermission{cp}, nil)
	crm.On("ReadChannelPermission", ctx, channelURI).Return(c4c.ChannelPermission{Consent: "2"}, nil)
	crm.On("FindMarketingPermissions", ctx, otherContact).Return([]c4c.MarketingPermission{}, nil)

	perms.On("Upsert", ctx, []entity.MarketingPermission{
		{ContactUUID: testContact, BusinessPartnerID: strp("1001"), GeneralConsent: strp("2")},
		{ContactUUID: otherContact},
	}).Return(nil)

	crm.On("ChangedEmployees", ctx, since).Return([]c4c.Employee{
		employee(ownerEmp, "Anna", "Virta", "https://x/EmployeeCollection('E1')/EmployeeOrganisationalUnitAssignment"),
		employee(dupEmp, "Dup", "Licate", ""),
	}, nil)
	crm.On("OrgUnitAssignments", ctx, "https://x/EmployeeCollection('E1')/EmployeeOrganisationalUnitAssignment").
		Return([]c4c.OrgUnitAssignment{{OrgUnitID: "SALES-FI"}}, nil)
	emps.On("Upsert", ctx, mock.MatchedBy(func(list []entity.Employee) bool {
		return len(list) == 1 && list[0].EmployeeID == ownerEmp && *list[0].Name == "Anna Virta" &&
			*list[0].Department == "SALES-FI" && list[0].Kind == entity.EmployeeKindEmployee
	})).Return(nil).Once()

	emps.On("ListAll", ctx).Return([]entity.Employee{
		{EmployeeID: ownerEmp, Name: strp("Anna Virta"), Kind: entity.EmployeeKindEmployee},
	}, nil)
	crm.On("FindBusinessPartners", ctx, []string{ownerBP}).Return([]c4c.BusinessPartner{
		{BusinessPartnerUUID: ownerBP, Name: "Partner Oy", ThingType: c4c.ThingTypePartnerContact},
	}, nil)
	emps.On("Upsert", ctx, []entity.Employee{
		{EmployeeID: ownerBP, Name: strp("Partner Oy"), Kind: entity.EmployeeKindBusinessPartner},
	}).Return(nil).Once()

	r := &DependentRefresher{
		CRM:               crm,
		Consent:           NewConsentResolver(crm, zerolog.Nop()),
		Permissions:       perms,
		Employees:         emps,
		ExcludedEmployees: []string{dupEmp},
		Log:               zerolog.Nop(),
	}
	sum, err := r.Refresh(ctx, since)
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Leads)
	assert.Equal(t, 2, sum.Permissions)
	assert.Equal(t, 1, sum.Employees)
	assert.Equal(t, 1, sum.BusinessPartners)
	perms.AssertExpectations(t)
	emps.AssertExpectations(t)
	crm.AssertExpectations(t)
}

// TestRefreshSkipsNonPartnerOwners - only partner contacts with new names are kept
func TestRefreshSkipsNonPartnerOwners(t *testing.T) {
	ctx := context.Background()
	since := time.Now()
	crm := new(MockCRM)
	emps := new(MockEmployeeRepository)

	crm.On("ChangedLeads", ctx, since).Return([]c4c.Lead{{OwnerPartyUUID: ownerBP}, {OwnerPartyUUID: otherContact}}, nil)
	crm.On("ChangedEmployees", ctx, since).Return([]c4c.Employee{}, nil)
	emps.On("ListAll", ctx).Return([]entity.Employee{{EmployeeID: ownerEmp, Name: strp("Partner Oy")}}, nil)
	crm.On("FindBusinessPartners", ctx, []string{ownerBP, otherContact}).Return([]c4c.BusinessPartner{
		{BusinessPartnerUUID: ownerBP, Name: "Partner Oy", ThingType: c4c.ThingTypePartnerContact},
		{BusinessPartnerUUID: otherContact, Name: "Someone", ThingType: "BUT000"},
	}, nil)

	r := &DependentRefresher{
		CRM:         crm,
		Consent:     NewConsentResolver(crm, zerolog.Nop()),
		Permissions: new(MockPermissionRepository),
		Employees:   emps,
		Log:         zerolog.Nop(),
	}
	sum, err := r.Refresh(ctx, since)
	require.NoError(t, err)
	assert.Zero(t, sum.BusinessPartners)
	emps.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
