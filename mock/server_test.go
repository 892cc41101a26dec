package mock

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	omsbridge "github.com/opengovern/oms-bridge"
)

func get(t *testing.T, url, token string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}

func TestServer_OtherDialectIsUnmatched(t *testing.T) {
	tests := []struct {
		kind    omsbridge.BackendKind
		own     string
		foreign string
	}{
		{omsbridge.LegacyBackend, "getAvailableTimeZones", "admin/user/getAvailableTimeZones"},
		{omsbridge.ModernBackend, "admin/user/getAvailableTimeZones", "getAvailableTimeZones"},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			srv := New(tc.kind)
			defer srv.Close()

			assert.Equal(t, http.StatusOK, get(t, srv.BaseURL()+tc.own, ""))
			assert.Equal(t, http.StatusNotFound, get(t, srv.BaseURL()+tc.foreign, ""))

			unmatched := srv.Unmatched()
			require.Len(t, unmatched, 1)
			assert.Equal(t, tc.foreign, unmatched[0].Path)
			assert.Len(t, srv.Calls(), 2)
		})
	}
}

func TestServer_Token(t *testing.T) {
	srv := New(omsbridge.LegacyBackend, WithToken("tok"))
	defer srv.Close()

	assert.Equal(t, http.StatusUnauthorized, get(t, srv.BaseURL()+"user-profile", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, srv.BaseURL()+"user-profile", "other"))
	assert.Equal(t, http.StatusOK, get(t, srv.BaseURL()+"user-profile", "tok"))

	resp, err := http.Post(srv.BaseURL()+"app-bridge/login", "application/json", strings.NewReader(`{"shop":"x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "login needs no token")
}

func TestServer_FailStatus(t *testing.T) {
	srv := New(omsbridge.ModernBackend)
	defer srv.Close()

	srv.SetFailStatus(http.StatusBadGateway)
	assert.Equal(t, http.StatusBadGateway, get(t, srv.BaseURL()+"user-profile", ""))
	srv.SetFailStatus(0)
	assert.Equal(t, http.StatusOK, get(t, srv.BaseURL()+"user-profile", ""))
}

func TestTopicEnum(t *testing.T) {
	assert.Equal(t, "NEW_ORDER", topicEnum("demo-STORE_1-NEW_ORDER"))
	assert.Equal(t, "NEW_ORDER", topicEnum("NEW_ORDER"))
}
