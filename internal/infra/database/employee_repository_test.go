package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// TestEmployeeUpsertDefaultsKind - rows without a kind are stored as employees
func TestEmployeeUpsertDefaultsKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO employee .* ON CONFLICT \(employee_id\) DO UPDATE`)
	prep.ExpectExec().
		WithArgs("E1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "employee").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("BP1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "business_partner").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewEmployeeRepository(db)
	err = repo.Upsert(context.Background(), []entity.Employee{
		{EmployeeID: "E1", Name: entity.StringPtr("Aino Virtanen")},
		{EmployeeID: "BP1", Kind: entity.EmployeeKindBusinessPartner},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEmployeeListAll - reads every stored employee and partner
func TestEmployeeListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"employee_id", "name", "email", "department", "country", "business_partner_id", "kind"}).
		AddRow("E1", "Aino Virtanen", "aino@example.com", "FI100", "FI", "8000001", "employee").
		AddRow("BP1", "Partner Oy", nil, nil, nil, nil, "business_partner")
	mock.ExpectQuery(`SELECT employee_id, .* FROM employee`).WillReturnRows(rows)

	repo := NewEmployeeRepository(db)
	got, err := repo.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "FI100", entity.Deref(got[0].Department))
	assert.Equal(t, entity.EmployeeKindBusinessPartner, got[1].Kind)
	assert.Nil(t, got[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMarketingPermissionUpsert - one statement per contact in a single transaction
func TestMarketingPermissionUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO marketing_permission .* ON CONFLICT \(contact_uuid\)`)
	prep.ExpectExec().
		WithArgs("00163E0A-1B2C-1EDB-A0B1-000000000001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewMarketingPermissionRepository(db)
	err = repo.Upsert(context.Background(), []entity.MarketingPermission{{
		ContactUUID:       "00163E0A-1B2C-1EDB-A0B1-000000000001",
		BusinessPartnerID: entity.StringPtr("1000123"),
		GeneralConsent:    entity.StringPtr("1"),
	}})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEnsureSchema - every statement runs inside one transaction
func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS lead`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS lead_status_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS marketing_permission`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS employee`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadTableDDL(t *testing.T) {
	ddl := leadTableDDL()
	assert.Contains(t, ddl, "table_id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "status VARCHAR(20) NOT NULL DEFAULT 'pending'")
	assert.Contains(t, ddl, "b2c_consent TEXT")
}
