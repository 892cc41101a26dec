package omsbridge

import "context"

// Requester is the transport surface adapters build on. *Transport
// implements it.
type Requester interface {
	// API sends through the session base URL with auth and caching.
	API(ctx context.Context, req *Request) (*Response, error)
	// Client sends using only what the request carries.
	Client(ctx context.Context, req *Request) (*Response, error)
	// APIClient is Client with the modern backend's 401 hook.
	APIClient(ctx context.Context, req *Request) (*Response, error)
}

// CredentialProvider exposes the current session to the transport.
type CredentialProvider interface {
	Credentials() Credentials
}

// ExpiryNotifier is implemented by credential providers that want to hear
// about 401 responses.
type ExpiryNotifier interface {
	NotifyExpired(kind BackendKind)
}

// UserAPI groups the user and settings operations.
type UserAPI interface {
	GetProfile(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
	LoginShopifyAppUser(ctx context.Context, baseURL string, payload map[string]any) (map[string]any, error)

	GetAvailableTimeZones(ctx context.Context) ([]TimeZone, error)
	SetUserTimeZone(ctx context.Context, userID, tzID string) error
	SetUserLocale(ctx context.Context, userID, locale string) error

	GetUserFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error)
	GetEComStores(ctx context.Context, q StoreQuery) ([]ProductStore, error)
	GetEComStoresByFacility(ctx context.Context, q StoreQuery) ([]ProductStore, error)

	GetUserPreference(ctx context.Context, q PreferenceQuery) (string, error)
	SetUserPreference(ctx context.Context, pref UserPreference) error

	GetProductIdentificationPref(ctx context.Context, productStoreID string) (ProductIdentificationPref, error)
	SetProductIdentificationPref(ctx context.Context, productStoreID string, pref ProductIdentificationPref) (ProductIdentificationPref, error)
}

// NotificationAPI groups the push-notification operations. The platform SDK
// that produces registration tokens lives outside this package.
type NotificationAPI interface {
	GetNotificationEnumIDs(ctx context.Context, enumTypeID string) ([]Enumeration, error)
	GetNotificationUserPrefTypeIDs(ctx context.Context, applicationID, userID string, filters map[string]any) ([]NotificationTopicPref, error)
	StoreClientRegistrationToken(ctx context.Context, registrationToken, deviceID, applicationID string) error
	RemoveClientRegistrationToken(ctx context.Context, deviceID, applicationID string) error
	SubscribeTopic(ctx context.Context, topicName, applicationID string) error
	UnsubscribeTopic(ctx context.Context, topicName, applicationID string) error
}

// Backend is one dialect's implementation of every logical operation.
type Backend interface {
	UserAPI
	NotificationAPI
	Kind() BackendKind
}
