package store

import (
	"context"
	"sort"
	"sync"
	"time"

	omsbridge "github.com/opengovern/oms-bridge"
)

const defaultLocale = "en-US"

// UserStore keeps the user's profile, locale, time zone, facilities and
// product stores, and the preferred facility and store.
type UserStore struct {
	api   omsbridge.UserAPI
	creds omsbridge.CredentialProvider
	opts  options

	mu               sync.RWMutex
	profile          *omsbridge.User
	locale           string
	currentTimeZone  string
	timeZones        []omsbridge.TimeZone
	facilities       []omsbridge.Facility
	currentFacility  omsbridge.Facility
	eComStores       []omsbridge.ProductStore
	currentEComStore omsbridge.ProductStore
}

// NewUserStore builds a store over api. creds, when non-nil, supplies the
// token and base URL passed explicitly to facility, store and preference
// reads.
func NewUserStore(api omsbridge.UserAPI, creds omsbridge.CredentialProvider, opts ...Option) *UserStore {
	return &UserStore{
		api:    api,
		creds:  creds,
		opts:   buildOptions(opts),
		locale: defaultLocale,
	}
}

func (s *UserStore) credentials() omsbridge.Credentials {
	if s.creds == nil {
		return omsbridge.Credentials{}
	}
	return s.creds.Credentials()
}

// FetchProfile loads the profile and adopts its time zone.
func (s *UserStore) FetchProfile(ctx context.Context) (*omsbridge.User, error) {
	user, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profile = user
	if user.TimeZone != "" {
		s.currentTimeZone = user.TimeZone
	}
	s.mu.Unlock()
	return user, nil
}

func (s *UserStore) Profile() *omsbridge.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *UserStore) userID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return ""
	}
	return s.profile.UserID
}

func (s *UserStore) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

// LocaleOptions returns the supported locale codes, sorted.
func (s *UserStore) LocaleOptions() []string {
	codes := make([]string, 0, len(s.opts.localeOptions))
	for code := range s.opts.localeOptions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MatchLocale picks a supported locale for locale: an exact match, else one
// sharing the two-letter language code, else "".
func (s *UserStore) MatchLocale(locale string) string {
	if locale == "" {
		return ""
	}
	codes := s.LocaleOptions()
	for _, code := range codes {
		if code == locale {
			return code
		}
	}
	for _, code := range codes {
		if prefix(code, 2) == prefix(locale, 2) {
			return code
		}
	}
	return ""
}

// SetLocale switches to the best supported match for locale and saves it on
// the backend. The local switch happens even when saving fails.
func (s *UserStore) SetLocale(ctx context.Context, locale string) string {
	newLocale := s.Locale()
	if locale != "" {
		if match := s.MatchLocale(locale); match != "" {
			newLocale = match
		}
		if err := s.api.SetUserLocale(ctx, s.userID(), newLocale); err != nil {
			s.opts.log.WithError(err).Error("could not save user locale")
		}
	}

	s.mu.Lock()
	s.locale = newLocale
	s.mu.Unlock()
	return newLocale
}

func (s *UserStore) CurrentTimeZone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTimeZone
}

// SetUserTimeZone saves tzID for the user. Selecting the current zone again
// makes no call.
func (s *UserStore) SetUserTimeZone(ctx context.Context, tzID string) error {
	if s.CurrentTimeZone() == tzID {
		return nil
	}
	if err := s.api.SetUserTimeZone(ctx, s.userID(), tzID); err != nil {
		s.opts.log.WithError(err).Error("could not save user time zone")
		return err
	}

	s.mu.Lock()
	s.currentTimeZone = tzID
	s.mu.Unlock()
	s.opts.notify("Time zone updated successfully")
	return nil
}

// LoadAvailableTimeZones fetches the zones once, keeping only ids the local
// time zone database knows.
func (s *UserStore) LoadAvailableTimeZones(ctx context.Context) []omsbridge.TimeZone {
	if zones := s.TimeZones(); len(zones) > 0 {
		return zones
	}
	zones, err := s.api.GetAvailableTimeZones(ctx)
	if err != nil {
		s.opts.log.WithError(err).Error("could not fetch available time zones")
		return nil
	}

	valid := make([]omsbridge.TimeZone, 0, len(zones))
	for _, tz := range zones {
		if _, err := time.LoadLocation(tz.ID); err == nil && tz.ID != "" {
			valid = append(valid, tz)
		}
	}
	s.mu.Lock()
	s.timeZones = valid
	s.mu.Unlock()
	return valid
}

func (s *UserStore) TimeZones() []omsbridge.TimeZone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeZones
}

// LoadFacilities fetches the facilities the user may work in. On failure the
// previous list is kept.
func (s *UserStore) LoadFacilities(ctx context.Context, partyID, facilityGroupID string, isAdminUser bool, filters map[string]any) []omsbridge.Facility {
	creds := s.credentials()
	facilities, err := s.api.GetUserFacilities(ctx, omsbridge.FacilityQuery{
		Token:           creds.Token,
		BaseURL:         creds.BaseURL,
		PartyID:         partyID,
		FacilityGroupID: facilityGroupID,
		IsAdminUser:     isAdminUser,
		Filters:         filters,
	})
	if err != nil {
		s.opts.log.WithError(err).Error("could not fetch user facilities")
		return s.Facilities()
	}
	s.mu.Lock()
	s.facilities = facilities
	s.mu.Unlock()
	return facilities
}

func (s *UserStore) Facilities() []omsbridge.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facilities
}

func (s *UserStore) CurrentFacility() omsbridge.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFacility
}

// LoadFacilityPreference selects the preferred facility: the one named by the
// stored preference when it is in the list, else the first facility.
func (s *UserStore) LoadFacilityPreference(ctx context.Context, prefTypeID, userID string) {
	facilities := s.Facilities()
	if len(facilities) == 0 {
		return
	}
	preferred := facilities[0]
	if id := s.preference(ctx, prefTypeID, userID); id != "" {
		for _, f := range facilities {
			if f.FacilityID == id {
				preferred = f
				break
			}
		}
	}
	s.mu.Lock()
	s.currentFacility = preferred
	s.mu.Unlock()
}

// SetFacilityPreference saves facility as SELECTED_FACILITY and selects it
// locally even when saving fails.
func (s *UserStore) SetFacilityPreference(ctx context.Context, facility omsbridge.Facility) {
	err := s.api.SetUserPreference(ctx, omsbridge.UserPreference{
		UserID:     s.userID(),
		PrefTypeID: omsbridge.PrefSelectedFacility,
		Value:      facility.FacilityID,
	})
	if err != nil {
		s.opts.log.WithError(err).Error("could not save facility preference")
	}
	s.mu.Lock()
	s.currentFacility = facility
	s.mu.Unlock()
}

func (s *UserStore) LoadEComStores(ctx context.Context) []omsbridge.ProductStore {
	creds := s.credentials()
	stores, err := s.api.GetEComStores(ctx, omsbridge.StoreQuery{Token: creds.Token, BaseURL: creds.BaseURL, ViewSize: 100})
	if err != nil {
		s.opts.log.WithError(err).Error("could not fetch product stores")
		return s.EComStores()
	}
	s.setStores(stores)
	return stores
}

func (s *UserStore) LoadEComStoresByFacility(ctx context.Context, facilityID string) []omsbridge.ProductStore {
	creds := s.credentials()
	stores, err := s.api.GetEComStoresByFacility(ctx, omsbridge.StoreQuery{
		Token:      creds.Token,
		BaseURL:    creds.BaseURL,
		ViewSize:   100,
		FacilityID: facilityID,
	})
	if err != nil {
		s.opts.log.WithError(err).WithField("facilityId", facilityID).Error("could not fetch facility product stores")
		return s.EComStores()
	}
	s.setStores(stores)
	return stores
}

func (s *UserStore) setStores(stores []omsbridge.ProductStore) {
	s.mu.Lock()
	s.eComStores = stores
	s.mu.Unlock()
}

func (s *UserStore) EComStores() []omsbridge.ProductStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eComStores
}

func (s *UserStore) CurrentEComStore() omsbridge.ProductStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEComStore
}

// LoadEComStorePreference mirrors LoadFacilityPreference for product stores.
func (s *UserStore) LoadEComStorePreference(ctx context.Context, prefTypeID, userID string) {
	stores := s.EComStores()
	if len(stores) == 0 {
		return
	}
	preferred := stores[0]
	if id := s.preference(ctx, prefTypeID, userID); id != "" {
		for _, st := range stores {
			if st.ProductStoreID == id {
				preferred = st
				break
			}
		}
	}
	s.mu.Lock()
	s.currentEComStore = preferred
	s.mu.Unlock()
}

// SetEComStorePreference saves store as SELECTED_BRAND and selects it locally
// even when saving fails.
func (s *UserStore) SetEComStorePreference(ctx context.Context, store omsbridge.ProductStore) {
	err := s.api.SetUserPreference(ctx, omsbridge.UserPreference{
		UserID:     s.userID(),
		PrefTypeID: omsbridge.PrefSelectedBrand,
		Value:      store.ProductStoreID,
	})
	if err != nil {
		s.opts.log.WithError(err).Error("could not save product store preference")
	}
	s.mu.Lock()
	s.currentEComStore = store
	s.mu.Unlock()
}

func (s *UserStore) preference(ctx context.Context, prefTypeID, userID string) string {
	creds := s.credentials()
	value, err := s.api.GetUserPreference(ctx, omsbridge.PreferenceQuery{
		Token:      creds.Token,
		BaseURL:    creds.BaseURL,
		PrefTypeID: prefTypeID,
		UserID:     userID,
	})
	if err != nil {
		s.opts.log.WithError(err).WithField("prefTypeId", prefTypeID).Error("could not fetch user preference")
		return ""
	}
	return value
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
