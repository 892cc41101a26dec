package omsbridge

// User is the normalized user profile.
type User struct {
	UserID          string         `json:"userId"`
	UserLoginID     string         `json:"userLoginId,omitempty"`
	PartyID         string         `json:"partyId"`
	PartyName       string         `json:"partyName,omitempty"`
	Email           string         `json:"email,omitempty"`
	TimeZone        string         `json:"timeZone,omitempty"`
	Locale          string         `json:"locale,omitempty"`
	OMSInstanceName string         `json:"omsInstanceName,omitempty"`
	Stores          []ProductStore `json:"stores,omitempty"`
	Facilities      []Facility     `json:"facilities,omitempty"`
}

type TimeZone struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

type Facility struct {
	FacilityID     string `json:"facilityId"`
	FacilityName   string `json:"facilityName,omitempty"`
	FacilityTypeID string `json:"facilityTypeId,omitempty"`
	SequenceNum    int    `json:"sequenceNum,omitempty"`
}

type ProductStore struct {
	ProductStoreID          string `json:"productStoreId"`
	StoreName               string `json:"storeName,omitempty"`
	ProductIdentifierEnumID string `json:"productIdentifierEnumId,omitempty"`
}

type Enumeration struct {
	EnumID      string `json:"enumId"`
	EnumTypeID  string `json:"enumTypeId,omitempty"`
	EnumName    string `json:"enumName,omitempty"`
	Description string `json:"description,omitempty"`
}

// NotificationTopicPref is one notification topic a user has opted into.
type NotificationTopicPref struct {
	UserPrefTypeID      string `json:"userPrefTypeId"`
	UserPrefGroupTypeID string `json:"userPrefGroupTypeId,omitempty"`
}

// ProductIdentificationPref picks which product identifiers a store shows.
type ProductIdentificationPref struct {
	PrimaryID   string `json:"primaryId"`
	SecondaryID string `json:"secondaryId"`
}

// DefaultProductIdentificationPref is used whenever a store has no setting.
func DefaultProductIdentificationPref() ProductIdentificationPref {
	return ProductIdentificationPref{PrimaryID: "productId", SecondaryID: ""}
}

// FacilityQuery selects the facilities a user may work in. Token and BaseURL
// are optional; when both are set the call bypasses the session.
type FacilityQuery struct {
	Token           string
	BaseURL         string
	PartyID         string
	FacilityGroupID string
	IsAdminUser     bool
	Filters         map[string]any
}

type StoreQuery struct {
	Token      string
	BaseURL    string
	ViewSize   int
	FacilityID string
}

type PreferenceQuery struct {
	Token      string
	BaseURL    string
	PrefTypeID string
	UserID     string
}

type UserPreference struct {
	UserID     string
	PrefTypeID string
	Value      string
}

// Well-known preference type ids.
const (
	PrefSelectedFacility = "SELECTED_FACILITY"
	PrefSelectedBrand    = "SELECTED_BRAND"
)
