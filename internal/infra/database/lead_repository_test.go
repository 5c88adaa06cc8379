package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crm-sync/internal/entity"
)

func leadRow(id int64, overrides map[string]driver.Value) []driver.Value {
	row := make([]driver.Value, len(leadColumns))
	for i, c := range leadColumns {
		switch c.name {
		case "table_id":
			row[i] = id
		default:
			row[i] = nil
		}
		if v, ok := overrides[c.name]; ok {
			row[i] = v
		}
	}
	return row
}

// TestFindByStatus - scans every column and keeps NULLs as nil pointers
func TestFindByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(leadColumnNames()).
		AddRow(leadRow(7, map[string]driver.Value{
			"group_code": "Z101",
			"name":       "Roof renovation",
			"company":    "Acme Oy",
			"country":    "FI",
			"task_name":  "create_leads",
			"status":     "pending",
		})...).
		AddRow(leadRow(9, map[string]driver.Value{"external_id": "4711"})...)

	mock.ExpectQuery(`SELECT table_id, external_id, .* FROM lead WHERE status = \$1 ORDER BY table_id`).
		WithArgs("pending").
		WillReturnRows(rows)

	repo := NewLeadRepository(db)
	got, err := repo.FindByStatus(context.Background(), entity.LeadStatusPending)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].TableID)
	assert.Equal(t, "Acme Oy", entity.Deref(got[0].Company))
	assert.Equal(t, "create_leads", entity.Deref(got[0].TaskName))
	assert.Nil(t, got[0].ExternalID)
	assert.Nil(t, got[0].UpdatedAt)
	assert.Equal(t, "4711", entity.Deref(got[1].ExternalID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByStatusQueryError - driver errors carry the Postgres condition name
func TestFindByStatusQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM lead`).WillReturnError(&pq.Error{Code: "42P01", Message: "relation \"lead\" does not exist"})

	repo := NewLeadRepository(db)
	_, err = repo.FindByStatus(context.Background(), entity.LeadStatusPending)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined_table")
	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr))
}

// TestMarkProcessing - one update over all ids inside a transaction
func TestMarkProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE lead SET status = \$1, updated_at = NOW\(\) WHERE table_id = ANY\(\$2\)`).
		WithArgs("processing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewLeadRepository(db)
	err = repo.MarkProcessing(context.Background(), []*entity.LeadPayload{{TableID: 1}, {TableID: 2}})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMarkProcessingEmpty - no leads means no round trip
func TestMarkProcessingEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)
	require.NoError(t, repo.MarkProcessing(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveOutcomes - writes identifiers and status per lead
func TestSaveOutcomes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := "4711"
	uri := "https://c4c/LeadCollection('00163E')"
	contact := "00163E0A-1B2C-1EDB-A0B1-000000000001"

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`UPDATE lead SET`)
	prep.ExpectExec().
		WithArgs(int64(1), "created", &id, &uri, &contact, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(int64(2), "pending", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewLeadRepository(db)
	err = repo.SaveOutcomes(context.Background(), []*entity.LeadPayload{
		{TableID: 1, Status: entity.LeadStatusCreated, ExternalID: &id, URI: &uri, ContactUUID: &contact},
		{TableID: 2, Status: entity.LeadStatusPending},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveOutcomesRollsBack - a failed row rolls the whole batch back
func TestSaveOutcomesRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`UPDATE lead SET`)
	prep.ExpectExec().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewLeadRepository(db)
	err = repo.SaveOutcomes(context.Background(), []*entity.LeadPayload{{TableID: 1, Status: entity.LeadStatusCreated}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save outcome")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestResetToPending - payload and orphan ids only move back while still processing
func TestResetToPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE lead SET status = \$1, .* WHERE table_id = ANY\(\$2\) AND status = \$3`).
		WithArgs("pending", sqlmock.AnyArg(), "processing").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	repo := NewLeadRepository(db)
	err = repo.ResetToPending(context.Background(), []*entity.LeadPayload{{TableID: 1}}, []int64{40, 41})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayloadIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 5}, payloadIDs([]*entity.LeadPayload{{TableID: 3}, {TableID: 5}}))
	assert.Empty(t, payloadIDs(nil))
}
