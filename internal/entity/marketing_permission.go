package entity

import "context"

// ChannelZ03 is the general marketing consent channel.
const ChannelZ03 = "Z03"

// Wire consent codes used by C4C channel permissions.
const (
	ConsentGranted = "1"
	ConsentDenied  = "2"
	ConsentUnknown = "3"
)

// MarketingPermission is the staged copy of a contact's C4C marketing
// permission, keyed by the contact UUID (BusinessPartnerUUID in C4C).
type MarketingPermission struct {
	ContactUUID       string  `json:"contact_uuid"`
	BusinessPartnerID *string `json:"business_partner_id,omitempty"`
	GeneralConsent    *string `json:"general_consent,omitempty"`
}

type MarketingPermissionRepositoryInterface interface {
	Upsert(ctx context.Context, permissions []MarketingPermission) error
}
