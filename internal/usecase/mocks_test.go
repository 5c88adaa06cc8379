package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

// MockCRM
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) FetchCSRFToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCRM) Create(ctx context.Context, target, token string, payload any) (c4c.Created, error) {
	args := m.Called(ctx, target, token, payload)
	return args.Get(0).(c4c.Created), args.Error(1)
}

func (m *MockCRM) Update(ctx context.Context, uri, token string, payload any) (c4c.Result, error) {
	args := m.Called(ctx, uri, token, payload)
	return args.Get(0).(c4c.Result), args.Error(1)
}

func (m *MockCRM) ReadOwnerPartyUUID(ctx context.Context, leadURI string) (string, error) {
	args := m.Called(ctx, leadURI)
	return args.String(0), args.Error(1)
}

func (m *MockCRM) FindMarketingPermissions(ctx context.Context, contactUUID string) ([]c4c.MarketingPermission, error) {
	args := m.Called(ctx, contactUUID)
	mps, _ := args.Get(0).([]c4c.MarketingPermission)
	return mps, args.Error(1)
}

func (m *MockCRM) FindChannelPermissions(ctx context.Context, collectionURI, channel string) ([]c4c.ChannelPermission, error) {
	args := m.Called(ctx, collectionURI, channel)
	cps, _ := args.Get(0).([]c4c.ChannelPermission)
	return cps, args.Error(1)
}

func (m *MockCRM) ReadChannelPermission(ctx context.Context, uri string) (c4c.ChannelPermission, error) {
	args := m.Called(ctx, uri)
	return args.Get(0).(c4c.ChannelPermission), args.Error(1)
}

func (m *MockCRM) ChangedLeads(ctx context.Context, since time.Time) ([]c4c.Lead, error) {
	args := m.Called(ctx, since)
	leads, _ := args.Get(0).([]c4c.Lead)
	return leads, args.Error(1)
}

func (m *MockCRM) ChangedEmployees(ctx context.Context, since time.Time) ([]c4c.Employee, error) {
	args := m.Called(ctx, since)
	emps, _ := args.Get(0).([]c4c.Employee)
	return emps, args.Error(1)
}

func (m *MockCRM) OrgUnitAssignments(ctx context.Context, uri string) ([]c4c.OrgUnitAssignment, error) {
	args := m.Called(ctx, uri)
	units, _ := args.Get(0).([]c4c.OrgUnitAssignment)
	return units, args.Error(1)
}

func (m *MockCRM) FindBusinessPartners(ctx context.Context, uuids []string) ([]c4c.BusinessPartner, error) {
	args := m.Called(ctx, uuids)
	bps, _ := args.Get(0).([]c4c.BusinessPartner)
	return bps, args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByStatus(ctx context.Context, status entity.LeadStatus) ([]entity.LeadRecord, error) {
	args := m.Called(ctx, status)
	recs, _ := args.Get(0).([]entity.LeadRecord)
	return recs, args.Error(1)
}

func (m *MockLeadRepository) MarkProcessing(ctx context.Context, leads []*entity.LeadPayload) error {
	return m.Called(ctx, leads).Error(0)
}

func (m *MockLeadRepository) SaveOutcomes(ctx context.Context, leads []*entity.LeadPayload) error {
	return m.Called(ctx, leads).Error(0)
}

func (m *MockLeadRepository) ResetToPending(ctx context.Context, leads []*entity.LeadPayload, orphanTableIDs []int64) error {
	return m.Called(ctx, leads, orphanTableIDs).Error(0)
}

// MockPermissionRepository
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Upsert(ctx context.Context, permissions []entity.MarketingPermission) error {
	return m.Called(ctx, permissions).Error(0)
}

// MockEmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Upsert(ctx context.Context, employees []entity.Employee) error {
	return m.Called(ctx, employees).Error(0)
}

func (m *MockEmployeeRepository) ListAll(ctx context.Context) ([]entity.Employee, error) {
	args := m.Called(ctx)
	emps, _ := args.Get(0).([]entity.Employee)
	return emps, args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInspectionReport(ctx context.Context, report entity.InspectionReport) error {
	return m.Called(ctx, report).Error(0)
}

func strp(s string) *string { return &s }

const (
	testContact = "00163E0A-1B2C-1EDB-A0B1-000000000001"
	testBase    = "https://c4c.example/api"
)

func newLeadRecord(id int64, task entity.TaskName) entity.LeadRecord {
	return entity.LeadRecord{
		TableID:   id,
		GroupCode: strp("Z101"),
		Name:      strp("Roof renovation"),
		Company:   strp("Acme Oy"),
		Country:   strp("FI"),
		Email:     strp("buyer@example.com"),
		TaskName:  strp(string(task)),
		Status:    strp(string(entity.LeadStatusPending)),
	}
}
