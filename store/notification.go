package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	omsbridge "github.com/opengovern/oms-bridge"
	"github.com/opengovern/oms-bridge/internal"
)

// Notification is one received push message.
type Notification struct {
	Payload  map[string]any
	Received time.Time
}

// NotificationPref is a notification topic and whether the user is
// subscribed to it.
type NotificationPref struct {
	EnumID      string
	Description string
	Enabled     bool
}

// NotificationStore keeps received notifications, the device id and the
// user's notification preferences for one application.
type NotificationStore struct {
	api           omsbridge.NotificationAPI
	applicationID string
	opts          options

	mu            sync.RWMutex
	notifications []Notification
	hasUnread     bool
	deviceID      string
	prefs         []NotificationPref
}

func NewNotificationStore(api omsbridge.NotificationAPI, applicationID string, opts ...Option) *NotificationStore {
	return &NotificationStore{
		api:           api,
		applicationID: applicationID,
		opts:          buildOptions(opts),
		hasUnread:     true,
	}
}

// AddNotification records a received message. Foreground messages also
// raise a toast.
func (s *NotificationStore) AddNotification(payload map[string]any, isForeground bool) {
	s.mu.Lock()
	s.notifications = append(s.notifications, Notification{Payload: payload, Received: s.opts.now()})
	s.hasUnread = true
	s.mu.Unlock()

	if isForeground {
		s.opts.notify("New notification received.")
	}
}

func (s *NotificationStore) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

func (s *NotificationStore) HasUnread() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasUnread
}

func (s *NotificationStore) MarkRead() {
	s.mu.Lock()
	s.hasUnread = false
	s.mu.Unlock()
}

// DeviceID returns the device id, generating it on first use.
func (s *NotificationStore) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deviceID == "" {
		s.deviceID = internal.DeviceID(s.opts.now())
	}
	return s.deviceID
}

// StoreClientRegistrationToken registers the push token for this device.
// Failures are logged, not returned.
func (s *NotificationStore) StoreClientRegistrationToken(ctx context.Context, registrationToken string) {
	deviceID := s.DeviceID()
	if err := s.api.StoreClientRegistrationToken(ctx, registrationToken, deviceID, s.applicationID); err != nil {
		s.opts.log.WithError(err).WithField("deviceId", deviceID).Error("could not store client registration token")
	}
}

// RemoveClientRegistrationToken unregisters this device, as on logout.
func (s *NotificationStore) RemoveClientRegistrationToken(ctx context.Context) error {
	return s.api.RemoveClientRegistrationToken(ctx, s.DeviceID(), s.applicationID)
}

// LoadNotificationPrefs lists the topics of enumTypeID, marking those userID
// is subscribed to.
func (s *NotificationStore) LoadNotificationPrefs(ctx context.Context, enumTypeID, userID string) ([]NotificationPref, error) {
	enums, err := s.api.GetNotificationEnumIDs(ctx, enumTypeID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.api.GetNotificationUserPrefTypeIDs(ctx, s.applicationID, userID, nil)
	if err != nil {
		return nil, err
	}

	enabled := make(map[string]bool, len(subscribed))
	for _, p := range subscribed {
		enabled[p.UserPrefTypeID] = true
	}
	prefs := make([]NotificationPref, 0, len(enums))
	for _, e := range enums {
		prefs = append(prefs, NotificationPref{EnumID: e.EnumID, Description: e.Description, Enabled: enabled[e.EnumID]})
	}

	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()
	return prefs, nil
}

func (s *NotificationStore) NotificationPrefs() []NotificationPref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]NotificationPref(nil), s.prefs...)
}

// Subscribe and Unsubscribe toggle a topic for this application.
func (s *NotificationStore) Subscribe(ctx context.Context, topicName string) error {
	return s.api.SubscribeTopic(ctx, topicName, s.applicationID)
}

func (s *NotificationStore) Unsubscribe(ctx context.Context, topicName string) error {
	return s.api.UnsubscribeTopic(ctx, topicName, s.applicationID)
}

// TopicName builds the push topic for an enum at a facility:
// <omsInstanceName>-<facilityId>-<enumId>.
func TopicName(omsInstanceName, facilityID, enumID string) string {
	return fmt.Sprintf("%s-%s-%s", omsInstanceName, facilityID, enumID)
}
