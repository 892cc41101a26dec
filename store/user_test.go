package store_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	omsbridge "github.com/opengovern/oms-bridge"
	"github.com/opengovern/oms-bridge/adapters"
	"github.com/opengovern/oms-bridge/mock"
	"github.com/opengovern/oms-bridge/store"
)

var kinds = []omsbridge.BackendKind{omsbridge.LegacyBackend, omsbridge.ModernBackend}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type toasts struct{ messages []string }

func (t *toasts) Notify(message string) { t.messages = append(t.messages, message) }

func newBridge(t *testing.T, kind omsbridge.BackendKind) (*omsbridge.OMSBridge, *mock.Server, *omsbridge.Session) {
	t.Helper()
	srv := mock.New(kind)
	t.Cleanup(srv.Close)

	session := omsbridge.NewSession(srv.URL)
	session.SetToken("tok", time.Time{})
	tr := omsbridge.NewTransport(omsbridge.TransportConfig{Backend: kind, Credentials: session, Logger: quietLogger()})
	return adapters.NewBridge(kind, tr), srv, session
}

func newUserStore(t *testing.T, kind omsbridge.BackendKind, opts ...store.Option) (*store.UserStore, *mock.Server) {
	t.Helper()
	bridge, srv, session := newBridge(t, kind)
	opts = append([]store.Option{store.WithLogger(quietLogger())}, opts...)
	users := store.NewUserStore(bridge, session, opts...)
	_, err := users.FetchProfile(context.Background())
	require.NoError(t, err)
	return users, srv
}

func TestUserStore_MatchLocale(t *testing.T) {
	users := store.NewUserStore(nil, nil, store.WithLocaleOptions(map[string]string{
		"en-US": "English",
		"es-ES": "Español",
		"fr":    "Français",
	}))

	tests := map[string]string{
		"en-US": "en-US",
		"es-MX": "es-ES",
		"fr-CA": "fr",
		"fr":    "fr",
		"de-DE": "",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, users.MatchLocale(in), in)
	}
	assert.Equal(t, []string{"en-US", "es-ES", "fr"}, users.LocaleOptions())
	assert.Equal(t, "en-US", users.Locale())
}

func TestUserStore_SetLocale(t *testing.T) {
	locales := store.WithLocaleOptions(map[string]string{"en-US": "English", "es-ES": "Español"})
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			users, srv := newUserStore(t, kind, locales)

			assert.Equal(t, "es-ES", users.SetLocale(ctx, "es-MX"))
			assert.Equal(t, "es-ES", users.Locale())
			assert.Equal(t, "es-ES", srv.Profile()["locale"])

			assert.Equal(t, "es-ES", users.SetLocale(ctx, "de-DE"), "unsupported locales keep the current one")

			calls := len(srv.Calls())
			assert.Equal(t, "es-ES", users.SetLocale(ctx, ""))
			assert.Len(t, srv.Calls(), calls, "an empty locale is not sent")
		})
	}
}

func TestUserStore_SetLocaleSwitchesWhenSaveFails(t *testing.T) {
	users, srv := newUserStore(t, omsbridge.ModernBackend,
		store.WithLocaleOptions(map[string]string{"en-US": "English", "fr": "Français"}))
	srv.SetFailStatus(http.StatusInternalServerError)

	assert.Equal(t, "fr", users.SetLocale(context.Background(), "fr-CA"))
	assert.Equal(t, "fr", users.Locale())
}

func TestUserStore_TimeZone(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			notifier := &toasts{}
			users, srv := newUserStore(t, kind, store.WithNotifier(notifier))
			assert.Equal(t, "America/New_York", users.CurrentTimeZone(), "adopted from the profile")

			calls := len(srv.Calls())
			require.NoError(t, users.SetUserTimeZone(ctx, "America/New_York"))
			assert.Len(t, srv.Calls(), calls, "the current zone is not saved again")
			assert.Empty(t, notifier.messages)

			require.NoError(t, users.SetUserTimeZone(ctx, "Asia/Kolkata"))
			assert.Equal(t, "Asia/Kolkata", users.CurrentTimeZone())
			assert.Equal(t, "Asia/Kolkata", srv.Profile()["userTimeZone"])
			assert.Equal(t, []string{"Time zone updated successfully"}, notifier.messages)

			srv.SetFailStatus(http.StatusInternalServerError)
			assert.Error(t, users.SetUserTimeZone(ctx, "America/New_York"))
			assert.Equal(t, "Asia/Kolkata", users.CurrentTimeZone())
			assert.Len(t, notifier.messages, 1)
		})
	}
}

func TestUserStore_LoadAvailableTimeZones(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			users, srv := newUserStore(t, kind)

			zones := users.LoadAvailableTimeZones(ctx)
			require.Len(t, zones, 2, "ids the time zone database does not know are dropped")
			assert.Equal(t, "America/New_York", zones[0].ID)
			assert.Equal(t, "Asia/Kolkata", zones[1].ID)

			calls := len(srv.Calls())
			assert.Equal(t, zones, users.LoadAvailableTimeZones(ctx))
			assert.Len(t, srv.Calls(), calls, "zones are fetched once")
		})
	}
}

func TestUserStore_FacilityPreference(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			users, srv := newUserStore(t, kind)

			facilities := users.LoadFacilities(ctx, "10001", "", false, nil)
			require.Len(t, facilities, 2)

			users.LoadFacilityPreference(ctx, omsbridge.PrefSelectedFacility, "hotwax.user")
			assert.Equal(t, facilities[0], users.CurrentFacility(), "no preference selects the first facility")

			srv.SetPreference("hotwax.user", omsbridge.PrefSelectedFacility, "STORE_2")
			users.LoadFacilityPreference(ctx, omsbridge.PrefSelectedFacility, "hotwax.user")
			assert.Equal(t, "STORE_2", users.CurrentFacility().FacilityID)

			srv.SetPreference("hotwax.user", omsbridge.PrefSelectedFacility, "GONE")
			users.LoadFacilityPreference(ctx, omsbridge.PrefSelectedFacility, "hotwax.user")
			assert.Equal(t, facilities[0], users.CurrentFacility(), "an unknown preference falls back to the first facility")

			users.SetFacilityPreference(ctx, facilities[1])
			assert.Equal(t, facilities[1], users.CurrentFacility())
			stored, _ := srv.Preference("hotwax.user", omsbridge.PrefSelectedFacility)
			assert.Equal(t, facilities[1].FacilityID, stored)
		})
	}
}

func TestUserStore_FailuresKeepState(t *testing.T) {
	ctx := context.Background()
	users, srv := newUserStore(t, omsbridge.LegacyBackend)
	facilities := users.LoadFacilities(ctx, "10001", "", false, nil)
	require.Len(t, facilities, 2)

	srv.SetFailStatus(http.StatusServiceUnavailable)
	assert.Equal(t, facilities, users.LoadFacilities(ctx, "10001", "", false, nil))
	assert.Equal(t, facilities, users.Facilities())

	users.SetFacilityPreference(ctx, facilities[1])
	assert.Equal(t, facilities[1], users.CurrentFacility(), "selected locally even when saving fails")
}

func TestUserStore_EComStores(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			users, srv := newUserStore(t, kind)

			all := users.LoadEComStores(ctx)
			require.Len(t, all, 2)

			stores := users.LoadEComStoresByFacility(ctx, "STORE_1")
			require.Len(t, stores, 1)
			assert.Equal(t, stores, users.EComStores())

			users.LoadEComStorePreference(ctx, omsbridge.PrefSelectedBrand, "hotwax.user")
			assert.Equal(t, "STORE", users.CurrentEComStore().ProductStoreID)

			users.SetEComStorePreference(ctx, all[1])
			assert.Equal(t, all[1], users.CurrentEComStore())
			stored, _ := srv.Preference("hotwax.user", omsbridge.PrefSelectedBrand)
			assert.Equal(t, all[1].ProductStoreID, stored)
		})
	}
}
