package usecase

import (
	"strings"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// C4C caps company and street fields at this many characters.
const crmFieldLimit = 40

// buildRequestBody returns the copy of lead that goes on the wire together
// with the consent that applies to its group code.
func buildRequestBody(lead *entity.LeadPayload) (*entity.LeadPayload, *string) {
	body := lead.Clone()

	var consent *string
	switch {
	case strings.Contains(lead.GroupCode, "Z103") || strings.Contains(lead.GroupCode, "Z108"):
		consent = lead.B2BConsent
		body.ContactEMail = lead.Email
	case strings.Contains(lead.GroupCode, "Z101"):
		consent = lead.B2CConsent
		body.ConsumerEMail = lead.Email
	}

	body.Company, body.CompanySecondName, body.CompanyThirdName = splitField(lead.Company)
	if lead.Street != nil {
		first, second, third := splitField(*lead.Street)
		body.Street = &first
		body.StreetSuffix, body.AdditionalStreetSuffix = second, third
	}
	return body, consent
}

// splitField cuts s into at most three parts: two of crmFieldLimit runes and
// whatever is left.
func splitField(s string) (string, *string, *string) {
	head, rest := cutRunes(s, crmFieldLimit)
	if rest == "" {
		return head, nil, nil
	}
	second, third := cutRunes(rest, crmFieldLimit)
	if third == "" {
		return head, &second, nil
	}
	return head, &second, &third
}

func cutRunes(s string, n int) (string, string) {
	r := []rune(s)
	if len(r) <= n {
		return s, ""
	}
	return string(r[:n]), string(r[n:])
}
