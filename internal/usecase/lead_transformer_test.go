package usecase

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// TestTransformValidRow - named fields are carried over and normalized
func TestTransformValidRow(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())
	rec := newLeadRecord(7, entity.TaskCreateLeads)
	rec.OwnerPartyUUID = strp("00163e0a-aaaa-bbbb-cccc-000000000009")
	rec.RelRoofSolar = strp("TRUE")
	rec.RelRoofRWS = strp("False")
	rec.RelRoofSafety = strp("yes")
	rec.Phone = strp("")
	rec.AgreedAppDate = strp("2024-05-02 13:45:10.123")
	rec.AgreedAppTime = strp("2024-05-02 13:45:10.123")

	p, rej := tr.Transform(rec)
	require.Nil(t, rej)

	assert.Equal(t, int64(7), p.TableID)
	assert.Equal(t, "Z101", p.GroupCode)
	assert.Equal(t, "FI", p.Country)
	assert.Equal(t, entity.TaskCreateLeads, p.TaskName)
	assert.Equal(t, entity.LeadStatusPending, p.Status)
	assert.Equal(t, "00163E0A-AAAA-BBBB-CCCC-000000000009", *p.OwnerPartyUUID)
	require.NotNil(t, p.RelRoofSolar)
	assert.True(t, *p.RelRoofSolar)
	require.NotNil(t, p.RelRoofRWS)
	assert.False(t, *p.RelRoofRWS)
	assert.Nil(t, p.RelRoofSafety)
	assert.Nil(t, p.RelRoofInstallation)
	assert.Nil(t, p.Phone)
	assert.Equal(t, "2024-05-02T13:45:10", *p.AgreedAppDate)
	assert.Equal(t, "PT13H45M10S", *p.AgreedAppTime)
	assert.Equal(t, entity.LeadStateNew, p.State())
}

// TestTransformRejectsMissingRequired - group code, name and company are required
func TestTransformRejectsMissingRequired(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())

	for _, tc := range []struct {
		name  string
		mut   func(*entity.LeadRecord)
		field string
	}{
		{"group code", func(r *entity.LeadRecord) { r.GroupCode = nil }, "group_code"},
		{"name", func(r *entity.LeadRecord) { r.Name = strp("") }, "name"},
		{"company", func(r *entity.LeadRecord) { r.Company = nil }, "company"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := newLeadRecord(1, entity.TaskCreateLeads)
			tc.mut(&rec)

			p, rej := tr.Transform(rec)
			assert.Nil(t, p)
			require.NotNil(t, rej)
			assert.Equal(t, tc.field, rej.Errors[0].Field)
		})
	}
}

// TestTransformRejectsCacheArtifact - a create row with a C4C id is never sent
func TestTransformRejectsCacheArtifact(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())
	rec := newLeadRecord(3, entity.TaskCreateLeads)
	rec.ExternalID = strp("4711")

	p, rej := tr.Transform(rec)
	assert.Nil(t, p)
	require.NotNil(t, rej)
	assert.Equal(t, "external_id", rej.Errors[0].Field)

	rec.TaskName = strp(string(entity.TaskUpdateLeads))
	p, rej = tr.Transform(rec)
	assert.Nil(t, rej)
	assert.NotNil(t, p)
}

// TestTransformRejectsCountry - country must be two characters
func TestTransformRejectsCountry(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())

	for _, country := range []*string{nil, strp("FIN"), strp("F")} {
		rec := newLeadRecord(1, entity.TaskCreateLeads)
		rec.Country = country
		_, rej := tr.Transform(rec)
		require.NotNil(t, rej)
		assert.Equal(t, "country", rej.Errors[0].Field)
	}
}

func TestTransformAllSplitsRejections(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())
	bad := newLeadRecord(2, entity.TaskCreateLeads)
	bad.Company = nil

	payloads, rejected := tr.TransformAll([]entity.LeadRecord{newLeadRecord(1, entity.TaskCreateLeads), bad})
	require.Len(t, payloads, 1)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(2), rejected[0].TableID)
	assert.Contains(t, rejected[0].Error(), "company")
}

func TestFormatDateTime(t *testing.T) {
	cases := map[string]*string{
		"2024-01-31T08:15:00.000": strp("2024-01-31T08:15:00"),
		"2024-01-31T08:15:00":     strp("2024-01-31T08:15:00"),
		"2024-01-31 08:15:00.5":   strp("2024-01-31T08:15:00"),
		"2024-01-31":              nil,
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDateTime(strp(in)), in)
	}
	assert.Nil(t, FormatDateTime(nil))
	assert.Nil(t, FormatDateTime(strp("")))
}

func TestFormatDuration(t *testing.T) {
	cases := map[string]string{
		"PT10H30M00S":             "PT10H30M00S",
		"2024-01-31 08:15:00.000": "PT08H15M00S",
		"2024-01-31T08:15:07":     "PT08H15M07S",
		"08:15:07":                "PT08H15M07S",
		"2024-01-31 garbage":      "PT00H00M00S",
		"not a time":              "PT00H00M00S",
	}
	for in, want := range cases {
		got := FormatDuration(strp(in))
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}
	assert.Nil(t, FormatDuration(nil))
}

// TestTransformRegionOnWire - the state column goes out as AccountState
func TestTransformRegionOnWire(t *testing.T) {
	tr := NewLeadTransformer(zerolog.Nop())
	rec := newLeadRecord(11, entity.TaskCreateLeads)
	rec.State = strp("Uusimaa")

	p, rej := tr.Transform(rec)
	require.Nil(t, rej)
	assert.Equal(t, "Uusimaa", entity.Deref(p.Region))
	assert.Equal(t, entity.LeadStateNew, p.State())

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "Uusimaa", wire["AccountState"])
}
