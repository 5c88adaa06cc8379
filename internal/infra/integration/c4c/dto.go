package c4c

// Resource is the closed set of C4C collections this client reads. Each
// variant carries its own field set and knows its collection name.
type Resource interface {
	Contact | Account | Lead | TargetGroup | TargetGroupMember | MarketingPermission | Employee | BusinessPartner
	collectionName() string
	selectFields() string
}

type Metadata struct {
	URI  string `json:"uri"`
	Type string `json:"type,omitempty"`
}

type Deferred struct {
	Deferred struct {
		URI string `json:"uri"`
	} `json:"__deferred"`
}

// Contact, Account, TargetGroup and TargetGroupMember are read-only views
// for inbound readers. The outbound lead sync never requests them.
type Contact struct {
	Metadata              Metadata `json:"__metadata"`
	ContactID             string   `json:"ContactID"`
	ContactUUID           string   `json:"ContactUUID"`
	AccountID             string   `json:"AccountID"`
	Email                 string   `json:"Email"`
	FirstName             string   `json:"FirstName"`
	LastName              string   `json:"LastName"`
	BusinessAddressCity   string   `json:"BusinessAddressCity"`
	BusinessAddressStreet string   `json:"BusinessAddressStreet"`
	EntityLastChangedOn   string   `json:"EntityLastChangedOn"`
}

func (Contact) collectionName() string { return "ContactCollection" }
func (Contact) selectFields() string {
	return "ContactID,ContactUUID,AccountID,Email,FirstName,LastName,BusinessAddressCity,BusinessAddressStreet,EntityLastChangedOn"
}

// Account is the inbound view of a corporate account.
type Account struct {
	Metadata            Metadata `json:"__metadata"`
	AccountID           string   `json:"AccountID"`
	Name                string   `json:"Name"`
	City                string   `json:"City"`
	CountryCode         string   `json:"CountryCode"`
	OwnerUUID           string   `json:"OwnerUUID"`
	EntityLastChangedOn string   `json:"EntityLastChangedOn"`
}

func (Account) collectionName() string { return "CorporateAccountCollection" }
func (Account) selectFields() string {
	return "AccountID,Name,City,CountryCode,OwnerUUID,EntityLastChangedOn"
}

// Lead is the inbound view of a C4C lead, limited to what the dependent
// entity refresh needs.
type Lead struct {
	Metadata            Metadata `json:"__metadata"`
	ID                  string   `json:"ID"`
	ContactUUID         string   `json:"ContactUUID"`
	OwnerPartyUUID      string   `json:"OwnerPartyUUID"`
	EntityLastChangedOn string   `json:"EntityLastChangedOn"`
}

func (Lead) collectionName() string { return "LeadCollection" }
func (Lead) selectFields() string {
	return "ID,ContactUUID,OwnerPartyUUID,EntityLastChangedOn"
}

// TargetGroup is the inbound view of a marketing target group.
type TargetGroup struct {
	Metadata            Metadata `json:"__metadata"`
	ID                  string   `json:"ID"`
	Description         string   `json:"Description"`
	EntityLastChangedOn string   `json:"EntityLastChangedOn"`
}

func (TargetGroup) collectionName() string { return "TargetGroupCollection" }
func (TargetGroup) selectFields() string   { return "ID,Description,EntityLastChangedOn" }

// TargetGroupMember links a contact to a target group, for inbound readers.
type TargetGroupMember struct {
	Metadata      Metadata `json:"__metadata"`
	ContactID     string   `json:"ContactID"`
	TargetGroupID string   `json:"TargetGroupID"`
}

func (TargetGroupMember) collectionName() string { return "TargetGroupMemberCollection" }
func (TargetGroupMember) selectFields() string   { return "ContactID,TargetGroupID" }

type MarketingPermission struct {
	Metadata            Metadata `json:"__metadata"`
	ObjectID            string   `json:"ObjectID"`
	BusinessPartnerUUID string   `json:"BusinessPartnerUUID"`
	BusinessPartnerID   string   `json:"BusinessPartner_ID"`
	ChannelPermission   Deferred `json:"ChannelPermission"`
}

func (MarketingPermission) collectionName() string { return "MarketingPermissionCollection" }

// Navigation properties only come back deferred when $select is left out.
func (MarketingPermission) selectFields() string { return "" }

type Employee struct {
	Metadata                             Metadata `json:"__metadata"`
	UUID                                 string   `json:"UUID"`
	FirstName                            string   `json:"FirstName"`
	LastName                             string   `json:"LastName"`
	Email                                string   `json:"Email"`
	CountryCode                          string   `json:"CountryCode"`
	BusinessPartnerID                    string   `json:"BusinessPartnerID"`
	EmployeeOrganisationalUnitAssignment Deferred `json:"EmployeeOrganisationalUnitAssignment"`
	EntityLastChangedOn                  string   `json:"EntityLastChangedOn"`
}

func (Employee) collectionName() string { return "EmployeeCollection" }
func (Employee) selectFields() string {
	return "UUID,FirstName,LastName,Email,CountryCode,BusinessPartnerID,EmployeeOrganisationalUnitAssignment,EntityLastChangedOn"
}

type BusinessPartner struct {
	Metadata            Metadata `json:"__metadata"`
	BusinessPartnerUUID string   `json:"BusinessPartnerUUID"`
	Name                string   `json:"Name"`
	ThingType           string   `json:"ThingType"`
}

func (BusinessPartner) collectionName() string { return "BusinessPartnerCollection" }
func (BusinessPartner) selectFields() string   { return "BusinessPartnerUUID,Name,ThingType" }

// ThingTypePartnerContact marks business partners that are partner contacts.
const ThingTypePartnerContact = "COD_PARTNERCONTACT_TT"

// ChannelPermission lives under a MarketingPermission's ChannelPermission
// navigation property.
type ChannelPermission struct {
	Metadata       Metadata `json:"__metadata"`
	ObjectID       string   `json:"ObjectID"`
	ParentObjectID string   `json:"ParentObjectID"`
	Channel        string   `json:"Channel"`
	Consent        string   `json:"Consent"`
}

type OrgUnitAssignment struct {
	OrgUnitID string `json:"OrgUnitID"`
}

// NewMarketingPermission is the POST body for a marketing permission.
type NewMarketingPermission struct {
	BusinessPartnerUUID string `json:"BusinessPartnerUUID"`
}

// NewChannelPermission is the POST body for a channel permission.
type NewChannelPermission struct {
	ParentObjectID string `json:"ParentObjectID"`
	Channel        string `json:"Channel"`
	Consent        string `json:"Consent"`
}

// ChannelConsentPatch is the PATCH body for an existing channel permission.
type ChannelConsentPatch struct {
	Channel string `json:"Channel"`
	Consent string `json:"Consent"`
}

type ownerPartyView struct {
	OwnerPartyUUID string `json:"OwnerPartyUUID"`
}

type listEnvelope[T any] struct {
	D struct {
		Results []T    `json:"results"`
		Next    string `json:"__next"`
	} `json:"d"`
}

type entityEnvelope[T any] struct {
	D struct {
		Results T `json:"results"`
	} `json:"d"`
}
