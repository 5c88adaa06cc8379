package usecase

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
)

const defaultDuration = "PT00H00M00S"

type LeadTransformer struct {
	validate *validator.Validate
	log      zerolog.Logger
}

func NewLeadTransformer(log zerolog.Logger) *LeadTransformer {
	return &LeadTransformer{
		validate: validator.New(),
		log:      log,
	}
}

// TransformAll converts staging rows into payloads. Rows that cannot be sent
// are returned as rejections and logged.
func (t *LeadTransformer) TransformAll(records []entity.LeadRecord) ([]*entity.LeadPayload, []Rejection) {
	payloads := make([]*entity.LeadPayload, 0, len(records))
	var rejected []Rejection
	for _, rec := range records {
		p, rej := t.Transform(rec)
		if rej != nil {
			t.log.Debug().Int64("table_id", rec.TableID).Err(rej).Msg("[TRANSFORM] row skipped")
			rejected = append(rejected, *rej)
			continue
		}
		payloads = append(payloads, p)
	}
	return payloads, rejected
}

// Transform validates one row and normalizes its fields.
func (t *LeadTransformer) Transform(rec entity.LeadRecord) (*entity.LeadPayload, *Rejection) {
	required := leadRules{
		GroupCode: entity.Deref(rec.GroupCode),
		Name:      entity.Deref(rec.Name),
		Company:   entity.Deref(rec.Company),
	}
	if err := t.validate.Struct(required); err != nil {
		return nil, &Rejection{TableID: rec.TableID, Errors: validationErrors(err)}
	}

	// A create task on a row that already has a C4C id is left over from
	// the cache and must never be posted again.
	if nonEmpty(rec.ExternalID) != nil && entity.TaskName(entity.Deref(rec.TaskName)) == entity.TaskCreateLeads {
		return nil, &Rejection{TableID: rec.TableID, Errors: []ValidationError{
			{Field: "external_id", Message: "already set on a create_leads row"},
		}}
	}

	country := countryRule{Country: entity.Deref(rec.Country)}
	if err := t.validate.Struct(country); err != nil {
		return nil, &Rejection{TableID: rec.TableID, Errors: validationErrors(err)}
	}

	p := &entity.LeadPayload{
		TableID:    rec.TableID,
		ExternalID: nonEmpty(rec.ExternalID),
		URI:        nonEmpty(rec.URI),
		TaskName:   entity.TaskName(entity.Deref(rec.TaskName)),
		Status:     entity.LeadStatus(entity.Deref(rec.Status)),
		Email:      nonEmpty(rec.Email),
		B2BConsent: nonEmpty(rec.B2BConsent),
		B2CConsent: nonEmpty(rec.B2CConsent),

		ContactUUID: nonEmpty(rec.ContactUUID),

		GroupCode:      required.GroupCode,
		Name:           required.Name,
		UserStatusCode: nonEmpty(rec.UserStatusCode),
		OwnerPartyUUID: upper(nonEmpty(rec.OwnerPartyUUID)),

		Company:    required.Company,
		Street:     nonEmpty(rec.Street),
		City:       nonEmpty(rec.City),
		PostalCode: nonEmpty(rec.PostalCode),
		Region:     nonEmpty(rec.State),
		Country:    country.Country,

		FirstName: nonEmpty(rec.FirstName),
		LastName:  nonEmpty(rec.LastName),
		Title:     nonEmpty(rec.Title),
		Mobile:    nonEmpty(rec.Mobile),
		Phone:     nonEmpty(rec.Phone),
		Note:      nonEmpty(rec.Note),

		FieldOfWork:      nonEmpty(rec.FieldOfWork),
		ProductGroup:     nonEmpty(rec.ProductGroup),
		DealerSource:     nonEmpty(rec.DealerSource),
		CampaignValue:    nonEmpty(rec.CampaignValue),
		RoofLeadCategory: nonEmpty(rec.RoofLeadCategory),

		RelRoofInstallation: parseBool(rec.RelRoofInstallation),
		RelRoofProfile:      parseBool(rec.RelRoofProfile),
		RelRoofRWS:          parseBool(rec.RelRoofRWS),
		RelRoofSafety:       parseBool(rec.RelRoofSafety),
		RelRoofAccessories:  parseBool(rec.RelRoofAccessories),
		RelRoofSolar:        parseBool(rec.RelRoofSolar),

		Attachment1: nonEmpty(rec.Attachment1),
		Attachment2: nonEmpty(rec.Attachment2),
		Attachment3: nonEmpty(rec.Attachment3),
		Attachment4: nonEmpty(rec.Attachment4),
		Attachment5: nonEmpty(rec.Attachment5),

		ProjectStatus:          nonEmpty(rec.ProjectStatus),
		BillAddrName:           nonEmpty(rec.BillAddrName),
		BillAddrStreet:         nonEmpty(rec.BillAddrStreet),
		BillAddrCity:           nonEmpty(rec.BillAddrCity),
		BillAddrPostcode:       nonEmpty(rec.BillAddrPostcode),
		BillAddrCountry:        nonEmpty(rec.BillAddrCountry),
		InstallersEarliestWeek: nonEmpty(rec.InstallersEarliestWeek),
		InstallersLatestWeek:   nonEmpty(rec.InstallersLatestWeek),
		ProductsAtSiteWeek:     nonEmpty(rec.ProductsAtSiteWeek),
		HomingLetterDate:       FormatDateTime(rec.HomingLetterDate),

		ProjMan1Name:   nonEmpty(rec.ProjMan1Name),
		ProjMan1Email:  nonEmpty(rec.ProjMan1Email),
		ProjMan1Mobile: nonEmpty(rec.ProjMan1Mobile),
		ProjMan2Name:   nonEmpty(rec.ProjMan2Name),
		ProjMan2Email:  nonEmpty(rec.ProjMan2Email),
		ProjMan2Mobile: nonEmpty(rec.ProjMan2Mobile),

		CreatedToKataDate: FormatDateTime(rec.CreatedToKataDate),
		CreatedToKataTime: FormatDuration(rec.CreatedToKataTime),
		AgreedAppDate:     FormatDateTime(rec.AgreedAppDate),
		AgreedAppTime:     FormatDuration(rec.AgreedAppTime),

		UTMMediumOriginal: nonEmpty(rec.UTMMediumOriginal),
		UTMSourceOriginal: nonEmpty(rec.UTMSourceOriginal),
		UTMMediumRecent:   nonEmpty(rec.UTMMediumRecent),
		UTMSourceRecent:   nonEmpty(rec.UTMSourceRecent),
		SurveyStatus:      nonEmpty(rec.SurveyStatus),
	}
	return p, nil
}

// FormatDateTime turns "YYYY-MM-DDTHH:MM:SS[.fff]" or "YYYY-MM-DD HH:MM:SS[.fff]"
// into "YYYY-MM-DDTHH:MM:SS". Anything without a date/time separator is nil.
func FormatDateTime(s *string) *string {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	for _, sep := range []string{"T", " "} {
		if date, rest, ok := strings.Cut(*v, sep); ok {
			clock, _, _ := strings.Cut(rest, ".")
			out := date + "T" + clock
			return &out
		}
	}
	return nil
}

// FormatDuration returns values already in PTnHnMnS form unchanged and
// rebuilds anything else from its HH:MM:SS token. Unparseable input becomes
// PT00H00M00S.
func FormatDuration(s *string) *string {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	if strings.Contains(*v, "PT") || strings.Contains(*v, "H") || strings.Contains(*v, "M") {
		return v
	}

	token := *v
	if _, after, ok := strings.Cut(token, " "); ok {
		token = after
	} else if _, after, ok := strings.Cut(token, "T"); ok {
		token = after
	}
	token, _, _ = strings.Cut(token, ".")

	parts := strings.Split(token, ":")
	if len(parts) != 3 || !allDigits(parts) {
		out := defaultDuration
		return &out
	}
	out := "PT" + parts[0] + "H" + parts[1] + "M" + parts[2] + "S"
	return &out
}

func parseBool(s *string) *bool {
	if s == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*s)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(*s)
	return &v
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
