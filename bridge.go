// bridge.go
// ---------
// OMSBridge is the entry point application code talks to. It holds the
// backend kind chosen at construction and a registry of backends, and
// forwards every logical operation to the one backend registered for that
// kind. It never calls the other backend and never falls back.
//
// Typical wiring:
//
//	session := omsbridge.NewSession("acme")
//	t := omsbridge.NewTransport(omsbridge.TransportConfig{Backend: kind, Credentials: session})
//	bridge := adapters.NewBridge(kind, t)
package omsbridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type OMSBridge struct {
	mu       sync.RWMutex
	kind     BackendKind
	backends map[BackendKind]Backend
	log      logrus.FieldLogger
}

func NewOMSBridge(kind BackendKind) *OMSBridge {
	return &OMSBridge{
		kind:     kind,
		backends: make(map[BackendKind]Backend),
		log:      logrus.StandardLogger(),
	}
}

// SetLogger replaces the standard logrus logger.
func (b *OMSBridge) SetLogger(log logrus.FieldLogger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = log
}

// RegisterBackend associates a Backend with a kind. Registering a backend for
// the kind the bridge does not target is allowed and harmless.
func (b *OMSBridge) RegisterBackend(kind BackendKind, backend Backend) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backends[kind] = backend
	b.log.WithField("backend", kind.String()).Debug("registered backend")
}

func (b *OMSBridge) Kind() BackendKind { return b.kind }

// Backend returns the backend calls are dispatched to.
func (b *OMSBridge) Backend() (Backend, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	backend, ok := b.backends[b.kind]
	if !ok || backend == nil {
		return nil, fmt.Errorf("%s: %w", b.kind, ErrBackendNotRegistered)
	}
	return backend, nil
}

func (b *OMSBridge) GetProfile(ctx context.Context) (*User, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetProfile(ctx)
}

func (b *OMSBridge) Logout(ctx context.Context) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.Logout(ctx)
}

func (b *OMSBridge) LoginShopifyAppUser(ctx context.Context, baseURL string, payload map[string]any) (map[string]any, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.LoginShopifyAppUser(ctx, baseURL, payload)
}

func (b *OMSBridge) GetAvailableTimeZones(ctx context.Context) ([]TimeZone, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetAvailableTimeZones(ctx)
}

func (b *OMSBridge) SetUserTimeZone(ctx context.Context, userID, tzID string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.SetUserTimeZone(ctx, userID, tzID)
}

func (b *OMSBridge) SetUserLocale(ctx context.Context, userID, locale string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.SetUserLocale(ctx, userID, locale)
}

func (b *OMSBridge) GetUserFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetUserFacilities(ctx, q)
}

func (b *OMSBridge) GetEComStores(ctx context.Context, q StoreQuery) ([]ProductStore, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetEComStores(ctx, q)
}

func (b *OMSBridge) GetEComStoresByFacility(ctx context.Context, q StoreQuery) ([]ProductStore, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetEComStoresByFacility(ctx, q)
}

func (b *OMSBridge) GetUserPreference(ctx context.Context, q PreferenceQuery) (string, error) {
	backend, err := b.Backend()
	if err != nil {
		return "", err
	}
	return backend.GetUserPreference(ctx, q)
}

func (b *OMSBridge) SetUserPreference(ctx context.Context, pref UserPreference) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.SetUserPreference(ctx, pref)
}

func (b *OMSBridge) GetProductIdentificationPref(ctx context.Context, productStoreID string) (ProductIdentificationPref, error) {
	backend, err := b.Backend()
	if err != nil {
		return ProductIdentificationPref{}, err
	}
	return backend.GetProductIdentificationPref(ctx, productStoreID)
}

func (b *OMSBridge) SetProductIdentificationPref(ctx context.Context, productStoreID string, pref ProductIdentificationPref) (ProductIdentificationPref, error) {
	backend, err := b.Backend()
	if err != nil {
		return ProductIdentificationPref{}, err
	}
	return backend.SetProductIdentificationPref(ctx, productStoreID, pref)
}

func (b *OMSBridge) GetNotificationEnumIDs(ctx context.Context, enumTypeID string) ([]Enumeration, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetNotificationEnumIDs(ctx, enumTypeID)
}

func (b *OMSBridge) GetNotificationUserPrefTypeIDs(ctx context.Context, applicationID, userID string, filters map[string]any) ([]NotificationTopicPref, error) {
	backend, err := b.Backend()
	if err != nil {
		return nil, err
	}
	return backend.GetNotificationUserPrefTypeIDs(ctx, applicationID, userID, filters)
}

func (b *OMSBridge) StoreClientRegistrationToken(ctx context.Context, registrationToken, deviceID, applicationID string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.StoreClientRegistrationToken(ctx, registrationToken, deviceID, applicationID)
}

func (b *OMSBridge) RemoveClientRegistrationToken(ctx context.Context, deviceID, applicationID string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.RemoveClientRegistrationToken(ctx, deviceID, applicationID)
}

func (b *OMSBridge) SubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.SubscribeTopic(ctx, topicName, applicationID)
}

func (b *OMSBridge) UnsubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	backend, err := b.Backend()
	if err != nil {
		return err
	}
	return backend.UnsubscribeTopic(ctx, topicName, applicationID)
}

var (
	_ UserAPI         = (*OMSBridge)(nil)
	_ NotificationAPI = (*OMSBridge)(nil)
)
