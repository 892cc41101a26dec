// common.go
// ---------
// Helpers shared by the OFBiz and Moqui adapters: response probing with gjson,
// failure shaping, normalization of backend rows into omsbridge result types,
// and the few operations both dialects expose on identical endpoints.
//
// Every adapter failure leaves through fail(), so callers only ever see an
// *omsbridge.Error whose Cause is the transport error or a *ServerError
// holding the raw payload.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	omsbridge "github.com/opengovern/oms-bridge"
)

const (
	msgSomethingWrong = "Something went wrong"
	msgSettingMissing = "product store setting is missing"

	settingTypeProductIdentification = "PRDT_IDEN_PREF"
)

// NewBridge returns a dispatcher targeting kind with both dialects registered
// on the same transport.
func NewBridge(kind omsbridge.BackendKind, t omsbridge.Requester) *omsbridge.OMSBridge {
	bridge := omsbridge.NewOMSBridge(kind)
	bridge.RegisterBackend(omsbridge.LegacyBackend, NewOfbizAdapter(t))
	bridge.RegisterBackend(omsbridge.ModernBackend, NewMoquiAdapter(t))
	return bridge
}

func fail(message string, cause error) error {
	return omsbridge.NewError(message, cause)
}

func serverError(data []byte) error {
	return &omsbridge.ServerError{Data: data}
}

// hasError applies the legacy success rule: the body must be a JSON object or
// array and must not carry a truthy error field.
func hasError(data []byte) bool {
	if !gjson.ValidBytes(data) {
		return true
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() && !root.IsArray() {
		return true
	}
	if root.IsArray() {
		return false
	}
	for _, field := range []string{"_ERROR_MESSAGE_", "_ERROR_MESSAGE_LIST_", "error"} {
		if truthy(root.Get(field)) {
			return true
		}
	}
	return false
}

// truthy follows JavaScript truthiness for a JSON value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		return true
	}
	return false
}

// jsonParse unquotes a stored value that is a JSON string literal and returns
// anything else unchanged.
func jsonParse(value string) string {
	var s string
	if err := json.Unmarshal([]byte(value), &s); err == nil {
		return s
	}
	return value
}

// rows returns the elements of an array result, or nil.
func rows(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

// active drops rows with a thruDate set; the backends cannot filter on it.
func active(in []gjson.Result) []gjson.Result {
	out := make([]gjson.Result, 0, len(in))
	for _, row := range in {
		if truthy(row.Get("thruDate")) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func toFacility(r gjson.Result) omsbridge.Facility {
	return omsbridge.Facility{
		FacilityID:     r.Get("facilityId").String(),
		FacilityName:   r.Get("facilityName").String(),
		FacilityTypeID: r.Get("facilityTypeId").String(),
		SequenceNum:    int(r.Get("sequenceNum").Int()),
	}
}

func toFacilities(in []gjson.Result) []omsbridge.Facility {
	out := make([]omsbridge.Facility, 0, len(in))
	for _, row := range in {
		out = append(out, toFacility(row))
	}
	return out
}

func toStores(in []gjson.Result) []omsbridge.ProductStore {
	out := make([]omsbridge.ProductStore, 0, len(in))
	for _, row := range in {
		out = append(out, omsbridge.ProductStore{
			ProductStoreID:          row.Get("productStoreId").String(),
			StoreName:               row.Get("storeName").String(),
			ProductIdentifierEnumID: row.Get("productIdentifierEnumId").String(),
		})
	}
	return out
}

func toTimeZones(in []gjson.Result) []omsbridge.TimeZone {
	out := make([]omsbridge.TimeZone, 0, len(in))
	for _, row := range in {
		out = append(out, omsbridge.TimeZone{
			ID:    row.Get("id").String(),
			Label: row.Get("label").String(),
		})
	}
	return out
}

func toEnumerations(in []gjson.Result) []omsbridge.Enumeration {
	out := make([]omsbridge.Enumeration, 0, len(in))
	for _, row := range in {
		out = append(out, omsbridge.Enumeration{
			EnumID:      row.Get("enumId").String(),
			EnumTypeID:  row.Get("enumTypeId").String(),
			EnumName:    row.Get("enumName").String(),
			Description: row.Get("description").String(),
		})
	}
	return out
}

// firstOf returns the first non-empty string among paths.
func firstOf(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p).String(); v != "" {
			return v
		}
	}
	return ""
}

func toUser(data []byte) *omsbridge.User {
	r := gjson.ParseBytes(data)
	return &omsbridge.User{
		UserID:          firstOf(r, "userId", "userLoginId"),
		UserLoginID:     firstOf(r, "userLoginId", "username"),
		PartyID:         r.Get("partyId").String(),
		PartyName:       firstOf(r, "partyName", "userFullName"),
		Email:           firstOf(r, "email", "emailAddress"),
		TimeZone:        firstOf(r, "userTimeZone", "timeZone"),
		Locale:          firstOf(r, "locale", "userLocale"),
		OMSInstanceName: r.Get("omsInstanceName").String(),
		Stores:          toStores(rows(r.Get("stores"))),
		Facilities:      toFacilities(rows(r.Get("facilities"))),
	}
}

// parsePref reads a stored identification setting over the defaults. Keys
// missing from the blob keep their default; a blob that is not a JSON object
// returns the defaults together with an error.
func parsePref(settingValue string) (omsbridge.ProductIdentificationPref, error) {
	pref := omsbridge.DefaultProductIdentificationPref()
	if !gjson.Valid(settingValue) {
		return pref, fmt.Errorf("invalid product identification setting %q", settingValue)
	}
	v := gjson.Parse(settingValue)
	if !v.IsObject() {
		return pref, fmt.Errorf("product identification setting is not an object: %s", settingValue)
	}
	if id := v.Get("primaryId"); id.Exists() {
		pref.PrimaryID = id.String()
	}
	if id := v.Get("secondaryId"); id.Exists() {
		pref.SecondaryID = id.String()
	}
	return pref, nil
}

func encodePref(pref omsbridge.ProductIdentificationPref) string {
	b, _ := json.Marshal(pref)
	return string(b)
}

type callFunc func(ctx context.Context, req *omsbridge.Request) (*omsbridge.Response, error)

// send uses the raw entry point when the caller supplied both a token and a
// base URL, and the session-bound API otherwise.
func send(ctx context.Context, api, raw callFunc, token, baseURL string, req *omsbridge.Request) (*omsbridge.Response, error) {
	if token != "" && baseURL != "" {
		req.BaseURL = baseURL
		if req.Headers == nil {
			req.Headers = make(map[string]string, 2)
		}
		req.Headers["Authorization"] = "Bearer " + token
		req.Headers["Content-Type"] = "application/json"
		return raw(ctx, req)
	}
	return api(ctx, req)
}

// getProfile, logout and loginShopifyAppUser hit the same endpoints on both
// backends.

func getProfile(ctx context.Context, r omsbridge.Requester) (*omsbridge.User, error) {
	resp, err := r.API(ctx, &omsbridge.Request{Method: http.MethodGet, Endpoint: "user-profile"})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if resp.StatusCode != http.StatusOK || hasError(resp.Data) {
		return nil, fail("Failed to fetch user profile information", serverError(resp.Data))
	}
	return toUser(resp.Data), nil
}

func logout(ctx context.Context, r omsbridge.Requester) error {
	resp, err := r.API(ctx, &omsbridge.Request{Method: http.MethodGet, Endpoint: "logout"})
	if err != nil {
		return fail(msgSomethingWrong, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fail(msgSomethingWrong, serverError(resp.Data))
	}
	return nil
}

func loginShopifyAppUser(ctx context.Context, r omsbridge.Requester, baseURL string, payload map[string]any) (map[string]any, error) {
	resp, err := r.Client(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "app-bridge/login",
		BaseURL:  baseURL,
		Body:     payload,
	})
	if err != nil {
		return nil, fail("Failed to Login Shopify App User", err)
	}
	out := map[string]any{}
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &out); err != nil {
			return nil, fail("Failed to Login Shopify App User", fmt.Errorf("decode login response: %w", err))
		}
	}
	return out, nil
}
