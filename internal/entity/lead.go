package entity

import (
	"context"
	"time"
)

type LeadStatus string

const (
	LeadStatusPending    LeadStatus = "pending"
	LeadStatusProcessing LeadStatus = "processing"
	LeadStatusCreated    LeadStatus = "created"
	LeadStatusUpdated    LeadStatus = "updated"
)

type TaskName string

const (
	TaskCreateLeads TaskName = "create_leads"
	TaskUpdateLeads TaskName = "update_leads"
)

// LeadState classifies a lead by which CRM identifiers it carries.
type LeadState int

const (
	LeadStateNew LeadState = iota
	LeadStateExisting
	LeadStateInconsistent
)

func (s LeadState) String() string {
	switch s {
	case LeadStateNew:
		return "new"
	case LeadStateExisting:
		return "existing"
	default:
		return "inconsistent"
	}
}

// LeadRecord is one row of the lead staging table. Nullable columns are pointers.
type LeadRecord struct {
	TableID        int64
	ExternalID     *string // C4C lead ID
	GroupCode      *string
	Name           *string
	UserStatusCode *string
	OwnerPartyUUID *string
	Company        *string
	Street         *string
	City           *string
	PostalCode     *string
	State          *string
	Country        *string
	Email          *string
	FirstName      *string
	LastName       *string
	Title          *string
	Mobile         *string
	Phone          *string
	Note           *string

	FieldOfWork      *string
	ProductGroup     *string
	DealerSource     *string
	CampaignValue    *string
	RoofLeadCategory *string

	RelRoofInstallation *string
	RelRoofProfile      *string
	RelRoofRWS          *string
	RelRoofSafety       *string
	RelRoofAccessories  *string
	RelRoofSolar        *string

	Attachment1 *string
	Attachment2 *string
	Attachment3 *string
	Attachment4 *string
	Attachment5 *string

	ProjectStatus          *string
	BillAddrName           *string
	BillAddrStreet         *string
	BillAddrCity           *string
	BillAddrPostcode       *string
	BillAddrCountry        *string
	InstallersEarliestWeek *string
	InstallersLatestWeek   *string
	ProductsAtSiteWeek     *string
	HomingLetterDate       *string

	ProjMan1Name   *string
	ProjMan1Email  *string
	ProjMan1Mobile *string
	ProjMan2Name   *string
	ProjMan2Email  *string
	ProjMan2Mobile *string

	CreatedToKataDate *string
	CreatedToKataTime *string
	AgreedAppDate     *string
	AgreedAppTime     *string

	UTMMediumOriginal *string
	UTMSourceOriginal *string
	UTMMediumRecent   *string
	UTMSourceRecent   *string
	SurveyStatus      *string

	ContactUUID *string
	URI         *string
	TaskName    *string
	Status      *string
	B2BConsent  *string // "1" granted, "0" denied, nil unknown
	B2CConsent  *string
	UpdatedAt   *time.Time
}

// LeadPayload is a validated lead ready to be sent to C4C. Fields tagged "-"
// are bookkeeping and never leave the process; the rest marshal under their
// C4C property names.
type LeadPayload struct {
	TableID    int64      `json:"-"`
	ExternalID *string    `json:"-"`
	URI        *string    `json:"-"`
	TaskName   TaskName   `json:"-"`
	Status     LeadStatus `json:"-"`
	Email      *string    `json:"-"`
	B2BConsent *string    `json:"-"`
	B2CConsent *string    `json:"-"`

	ContactUUID *string `json:"ContactUUID,omitempty"`

	GroupCode      string  `json:"GroupCode"`
	Name           string  `json:"Name"`
	UserStatusCode *string `json:"UserStatusCode"`
	OwnerPartyUUID *string `json:"OwnerPartyUUID"`

	Company           string  `json:"Company"`
	CompanySecondName *string `json:"CompanySecondName,omitempty"`
	CompanyThirdName  *string `json:"CompanyThirdName,omitempty"`

	Street                 *string `json:"AccountPostalAddressElementsStreetName"`
	StreetSuffix           *string `json:"AccountPostalAddressElementsStreetSufix,omitempty"`
	AdditionalStreetSuffix *string `json:"AccountPostalAddressElementsAdditionalStreetSuffixName,omitempty"`
	City                   *string `json:"AccountCity"`
	PostalCode             *string `json:"AccountPostalAddressElementsStreetPostalCode"`
	Region                 *string `json:"AccountState"`
	Country                string  `json:"AccountCountry"`

	ContactEMail  *string `json:"ContactEMail,omitempty"`
	ConsumerEMail *string `json:"ZConsumerEMail_KUT,omitempty"`

	FirstName *string `json:"ContactFirstName"`
	LastName  *string `json:"ContactLastName"`
	Title     *string `json:"ContactFunctionalTitleName"`
	Mobile    *string `json:"ContactMobile"`
	Phone     *string `json:"ContactPhone"`
	Note      *string `json:"Note"`

	FieldOfWork      *string `json:"ZFieldofWork_KUT"`
	ProductGroup     *string `json:"ZProductGrp_KUT"`
	DealerSource     *string `json:"ZDealerSource_KUT"`
	CampaignValue    *string `json:"ZCampaignvalue_KUT"`
	RoofLeadCategory *string `json:"ZRoofLeadCat_KUT"`

	RelRoofInstallation *bool `json:"ZRelRoofInstallation_KUT"`
	RelRoofProfile      *bool `json:"ZRelRoofProfile_KUT"`
	RelRoofRWS          *bool `json:"ZRelRoofRWS_KUT"`
	RelRoofSafety       *bool `json:"ZRelRoofSafety_KUT"`
	RelRoofAccessories  *bool `json:"ZRelRoofAccessories_KUT"`
	RelRoofSolar        *bool `json:"ZRelRoofSolar_KUT"`

	Attachment1 *string `json:"ZAttachment1URL_KUT"`
	Attachment2 *string `json:"ZAttachment2URL_KUT"`
	Attachment3 *string `json:"ZAttachment3URL_KUT"`
	Attachment4 *string `json:"ZAttachment4URL_KUT"`
	Attachment5 *string `json:"ZAttachment5URL_KUT"`

	ProjectStatus          *string `json:"ZProjectStatus_KUT"`
	BillAddrName           *string `json:"ZBillAddrName_KUT"`
	BillAddrStreet         *string `json:"ZBillAddrStreet_KUT"`
	BillAddrCity           *string `json:"ZBillAddrCity_KUT"`
	BillAddrPostcode       *string `json:"ZBillAddrPostcode_KUT"`
	BillAddrCountry        *string `json:"ZBillAddrCtry_KUT"`
	InstallersEarliestWeek *string `json:"ZInstatsiteearlatweek_KUT"`
	InstallersLatestWeek   *string `json:"ZInstatsitelateatweek_KUT"`
	ProductsAtSiteWeek     *string `json:"ZProductsatsiteweek_KUT"`
	HomingLetterDate       *string `json:"ZEloquaHomLettDate_KUT"`

	ProjMan1Name   *string `json:"ZProjMan1Name_KUT"`
	ProjMan1Email  *string `json:"ZProjMan1Email_KUT"`
	ProjMan1Mobile *string `json:"ZProjMan1Mobile_KUT"`
	ProjMan2Name   *string `json:"ZProjMan2Name_KUT"`
	ProjMan2Email  *string `json:"ZProjMan2Email_KUT"`
	ProjMan2Mobile *string `json:"ZProjMan2Mobile_KUT"`

	CreatedToKataDate *string `json:"ZCreatedToKataDate_KUT"`
	CreatedToKataTime *string `json:"ZCreatedToKataTime_KUT"`
	AgreedAppDate     *string `json:"ZAgreedappdate_KUT"`
	AgreedAppTime     *string `json:"ZAgreedapptime_KUT"`

	UTMMediumOriginal *string `json:"ZUTMMediumOriginal_KUT"`
	UTMSourceOriginal *string `json:"ZUTMSourceOriginal_KUT"`
	UTMMediumRecent   *string `json:"ZUTMMediumRecent_KUT"`
	UTMSourceRecent   *string `json:"ZUTMSourceRecent_KUT"`
	SurveyStatus      *string `json:"ZCustomerSurveyStatus_KUT"`
}

// State reports whether the payload is a new lead, an existing one, or a mix
// of present and missing identifiers.
func (p *LeadPayload) State() LeadState {
	id, uri, contact := present(p.ExternalID), present(p.URI), present(p.ContactUUID)
	switch {
	case id && uri && contact:
		return LeadStateExisting
	case !id && !uri && !contact:
		return LeadStateNew
	default:
		return LeadStateInconsistent
	}
}

// Clone returns a copy that shares no pointers with p for the fields the sync
// mutates.
func (p *LeadPayload) Clone() *LeadPayload {
	c := *p
	c.ExternalID = cloneString(p.ExternalID)
	c.URI = cloneString(p.URI)
	c.ContactUUID = cloneString(p.ContactUUID)
	c.OwnerPartyUUID = cloneString(p.OwnerPartyUUID)
	return &c
}

type LeadRepositoryInterface interface {
	FindByStatus(ctx context.Context, status LeadStatus) ([]LeadRecord, error)
	MarkProcessing(ctx context.Context, leads []*LeadPayload) error
	SaveOutcomes(ctx context.Context, leads []*LeadPayload) error
	ResetToPending(ctx context.Context, leads []*LeadPayload, orphanTableIDs []int64) error
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
