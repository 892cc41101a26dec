// Package mock provides an in-process OMS speaking either backend dialect.
//
// The server only routes the dialect it was created for; a call to the other
// dialect's endpoints answers 404 and is recorded in Unmatched, which lets
// tests assert that no cross-backend call happened.
package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	omsbridge "github.com/opengovern/oms-bridge"
)

const restPrefix = "/rest/s1"

// Call is one request seen by the server. Path is relative to /rest/s1/.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

type FacilityRow struct {
	FacilityID     string
	FacilityName   string
	FacilityTypeID string
	SequenceNum    int
	PartyIDs       []string
	GroupIDs       []string
	ThruDate       string
}

type StoreRow struct {
	ProductStoreID          string
	StoreName               string
	ProductIdentifierEnumID string
	FacilityIDs             []string
	ThruDate                string // of the facility association
}

// Fixtures is the read-only data the server answers with.
type Fixtures struct {
	Profile    map[string]any
	TimeZones  []omsbridge.TimeZone
	Facilities []FacilityRow
	Stores     []StoreRow
	Enums      []omsbridge.Enumeration
}

// DefaultFixtures returns a small, consistent data set.
func DefaultFixtures() Fixtures {
	return Fixtures{
		Profile: map[string]any{
			"userId":          "hotwax.user",
			"userLoginId":     "hotwax.user",
			"partyId":         "10001",
			"partyName":       "Hot Wax",
			"email":           "user@hotwax.co",
			"userTimeZone":    "America/New_York",
			"locale":          "en-US",
			"omsInstanceName": "demo",
		},
		TimeZones: []omsbridge.TimeZone{
			{ID: "America/New_York", Label: "Eastern Time"},
			{ID: "Asia/Kolkata", Label: "India Standard Time"},
			{ID: "Not/AZone", Label: "Invalid"},
		},
		Facilities: []FacilityRow{
			{FacilityID: "STORE_1", FacilityName: "Brooklyn", FacilityTypeID: "RETAIL_STORE", SequenceNum: 2, PartyIDs: []string{"10001"}, GroupIDs: []string{"PICKUP"}},
			{FacilityID: "STORE_2", FacilityName: "Austin", FacilityTypeID: "RETAIL_STORE", SequenceNum: 1, PartyIDs: []string{"10001"}},
			{FacilityID: "WH_1", FacilityName: "Warehouse", FacilityTypeID: "WAREHOUSE", PartyIDs: []string{"20002"}, GroupIDs: []string{"PICKUP"}},
			{FacilityID: "OLD_1", FacilityName: "Closed", FacilityTypeID: "RETAIL_STORE", PartyIDs: []string{"10001"}, GroupIDs: []string{"PICKUP"}, ThruDate: "2020-01-01 00:00:00"},
		},
		Stores: []StoreRow{
			{ProductStoreID: "STORE", StoreName: "Demo Store", ProductIdentifierEnumID: "SHOPIFY_PRODUCT_SKU", FacilityIDs: []string{"STORE_1", "STORE_2"}},
			{ProductStoreID: "OUTLET", StoreName: "Outlet", FacilityIDs: []string{"STORE_1"}, ThruDate: "2021-06-01 00:00:00"},
		},
		Enums: []omsbridge.Enumeration{
			{EnumID: "NEW_ORDER", EnumTypeID: "NOTIF_APP_TOPIC", EnumName: "New order", Description: "New order received"},
			{EnumID: "READY_PICKUP", EnumTypeID: "NOTIF_APP_TOPIC", EnumName: "Ready for pickup", Description: "Order ready"},
		},
	}
}

type Option func(*Server)

func WithFixtures(f Fixtures) Option {
	return func(s *Server) { s.fixtures = f }
}

// WithToken makes every route except app-bridge/login require the bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

type Server struct {
	*httptest.Server

	kind     omsbridge.BackendKind
	fixtures Fixtures
	token    string

	mu          sync.Mutex
	failStatus  int
	calls       []Call
	unmatched   []Call
	preferences map[string]string // userId|prefTypeId
	settings    map[string]string // productStoreId
	regTokens   map[string]string // deviceId|applicationId
	topics      map[string]bool   // applicationId|topicName
	profile     map[string]any
}

// New starts a server speaking kind's dialect. Close it when done.
func New(kind omsbridge.BackendKind, opts ...Option) *Server {
	s := &Server{
		kind:        kind,
		fixtures:    DefaultFixtures(),
		preferences: map[string]string{},
		settings:    map[string]string{},
		regTokens:   map[string]string{},
		topics:      map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.profile = map[string]any{}
	for k, v := range s.fixtures.Profile {
		s.profile[k] = v
	}

	r := chi.NewRouter()
	r.Use(s.record, s.authorize)
	r.NotFound(s.unmatchedHandler)
	r.MethodNotAllowed(s.unmatchedHandler)
	r.Route(restPrefix, func(r chi.Router) {
		r.Get("/user-profile", s.getProfile)
		r.Get("/logout", s.ok)
		r.Post("/app-bridge/login", s.login)
		if kind == omsbridge.ModernBackend {
			s.moquiRoutes(r)
		} else {
			s.ofbizRoutes(r)
		}
	})
	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the REST root clients should be pointed at.
func (s *Server) BaseURL() string { return s.URL + restPrefix + "/" }

func (s *Server) Kind() omsbridge.BackendKind { return s.kind }

// SetFailStatus makes every routed call answer status. Zero restores normal
// behavior.
func (s *Server) SetFailStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Unmatched returns the calls no route of this dialect accepted.
func (s *Server) Unmatched() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.unmatched...)
}

// CallCount counts calls to method and path (relative to /rest/s1/).
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// SetPreference stores a raw preference value as the backend would.
func (s *Server) SetPreference(userID, prefTypeID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[userID+"|"+prefTypeID] = value
}

func (s *Server) Preference(userID, prefTypeID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.preferences[userID+"|"+prefTypeID]
	return v, ok
}

// SetSetting stores a product identification setting value.
func (s *Server) SetSetting(productStoreID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[productStoreID] = value
}

func (s *Server) Setting(productStoreID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[productStoreID]
	return v, ok
}

func (s *Server) RegistrationToken(deviceID, applicationID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.regTokens[deviceID+"|"+applicationID]
	return v, ok
}

func (s *Server) Subscribed(applicationID, topicName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics[applicationID+"|"+topicName]
}

// Profile returns a copy of the current user profile.
func (s *Server) Profile() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.profile))
	for k, v := range s.profile {
		out[k] = v
	}
	return out
}

func (s *Server) userID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.profile["userId"].(string)
	return id
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, restPrefix+"/"),
			Query:  r.URL.Query(),
			Body:   body,
			Header: r.Header.Clone(),
		})
		fail := s.failStatus
		s.mu.Unlock()

		if fail != 0 {
			writeJSON(w, fail, map[string]any{"error": http.StatusText(fail)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || strings.HasSuffix(r.URL.Path, "/app-bridge/login") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) unmatchedHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.unmatched = append(s.unmatched, Call{
		Method: r.Method,
		Path:   strings.TrimPrefix(r.URL.Path, restPrefix+"/"),
		Query:  r.URL.Query(),
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Profile())
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"successMessage": "ok"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": "shopify-session-token", "shop": payload["shop"]})
}

func (s *Server) updateProfile(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.profile[k] = v
	}
}

func decodeBody(r *http.Request) map[string]any {
	out := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&out)
	return out
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func facilityJSON(f FacilityRow) map[string]any {
	row := map[string]any{
		"facilityId":     f.FacilityID,
		"facilityName":   f.FacilityName,
		"facilityTypeId": f.FacilityTypeID,
		"sequenceNum":    f.SequenceNum,
	}
	if f.ThruDate != "" {
		row["thruDate"] = f.ThruDate
	}
	return row
}

func storeJSON(st StoreRow) map[string]any {
	return map[string]any{
		"productStoreId":          st.ProductStoreID,
		"storeName":               st.StoreName,
		"productIdentifierEnumId": st.ProductIdentifierEnumID,
	}
}

func splitKey(key string) (string, string) {
	a, b, _ := strings.Cut(key, "|")
	return a, b
}

// topicEnum recovers the enum id from an <oms>-<facility>-<enum> topic name;
// the backend records subscriptions by enum.
func topicEnum(topic string) string {
	if i := strings.LastIndex(topic, "-"); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
