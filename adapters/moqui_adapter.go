// moqui_adapter.go
// ----------------
// This adapter speaks the modern OMS dialect: resource-style REST endpoints
// that answer with plain JSON arrays and use HTTP status codes for failures.
//
// Approach:
//   - A transport error is the only failure signal for most operations.
//   - List endpoints cannot filter on thruDate, so rows with one are dropped
//     client side.
//   - User facilities are resolved in up to three steps: the party's
//     facilities, narrowed by the facility group, then fetched in full from
//     oms/facilities with facilityId_op=in.
//   - Explicit-credential calls use APIClient so a 401 raises the expiry signal.
package adapters

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	omsbridge "github.com/opengovern/oms-bridge"
)

const maxPageSize = 500

type MoquiAdapter struct {
	Requester omsbridge.Requester
	Log       logrus.FieldLogger
}

func NewMoquiAdapter(r omsbridge.Requester) *MoquiAdapter {
	return &MoquiAdapter{
		Requester: r,
		Log:       logrus.WithField("adapter", omsbridge.ModernBackend.String()),
	}
}

func (a *MoquiAdapter) Kind() omsbridge.BackendKind { return omsbridge.ModernBackend }

func (a *MoquiAdapter) send(ctx context.Context, token, baseURL string, req *omsbridge.Request) (*omsbridge.Response, error) {
	return send(ctx, a.Requester.API, a.Requester.APIClient, token, baseURL, req)
}

// call sends through the session and applies the shared body check, which
// arrays always pass.
func (a *MoquiAdapter) call(ctx context.Context, req *omsbridge.Request) ([]byte, error) {
	resp, err := a.Requester.API(ctx, req)
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return resp.Data, nil
}

func (a *MoquiAdapter) GetProfile(ctx context.Context) (*omsbridge.User, error) {
	return getProfile(ctx, a.Requester)
}

func (a *MoquiAdapter) Logout(ctx context.Context) error {
	return logout(ctx, a.Requester)
}

func (a *MoquiAdapter) LoginShopifyAppUser(ctx context.Context, baseURL string, payload map[string]any) (map[string]any, error) {
	return loginShopifyAppUser(ctx, a.Requester, baseURL, payload)
}

func (a *MoquiAdapter) GetAvailableTimeZones(ctx context.Context) ([]omsbridge.TimeZone, error) {
	resp, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "admin/user/getAvailableTimeZones",
		Cache:    true,
	})
	if err != nil {
		return nil, fail("Failed to fetch available timezones", err)
	}
	return toTimeZones(rows(gjson.GetBytes(resp.Data, "timeZones"))), nil
}

func (a *MoquiAdapter) SetUserTimeZone(ctx context.Context, userID, tzID string) error {
	_, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "admin/user/profile",
		Body:     map[string]any{"userId": userID, "tzId": tzID},
	})
	if err != nil {
		return fail("Failed to set user time zone", err)
	}
	return nil
}

func (a *MoquiAdapter) SetUserLocale(ctx context.Context, userID, locale string) error {
	_, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "admin/user/profile",
		Body:     map[string]any{"userId": userID, "locale": locale},
	})
	if err != nil {
		return fail("Failed to set user locale", err)
	}
	return nil
}

// FetchFacilitiesByParty lists the facilities associated with a party.
// Token and baseURL are optional.
func (a *MoquiAdapter) FetchFacilitiesByParty(ctx context.Context, partyID, baseURL, token string, filters map[string]any) ([]omsbridge.Facility, error) {
	params := merge(filters, map[string]any{"pageSize": maxPageSize})
	resp, err := a.send(ctx, token, baseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "inventory-cycle-count/user/" + url.PathEscape(partyID) + "/facilities",
		Params:   params,
	})
	if err != nil {
		return nil, fail("Failed to fetch user associated facilities", err)
	}
	return toFacilities(active(rows(gjson.ParseBytes(resp.Data)))), nil
}

// FetchFacilitiesByGroup lists the facilities of a facility group. Token and
// baseURL are optional.
func (a *MoquiAdapter) FetchFacilitiesByGroup(ctx context.Context, facilityGroupID, baseURL, token string, filters map[string]any) ([]omsbridge.Facility, error) {
	params := merge(map[string]any{"facilityGroupId": facilityGroupID, "pageSize": maxPageSize}, filters)
	resp, err := a.send(ctx, token, baseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "oms/groupFacilities",
		Params:   params,
	})
	if err != nil {
		return nil, fail("Failed to fetch facilities for group", err)
	}
	return toFacilities(active(rows(gjson.ParseBytes(resp.Data)))), nil
}

func (a *MoquiAdapter) GetUserFacilities(ctx context.Context, q omsbridge.FacilityQuery) ([]omsbridge.Facility, error) {
	var ids []string

	if q.PartyID != "" && !q.IsAdminUser {
		facilities, err := a.FetchFacilitiesByParty(ctx, q.PartyID, q.BaseURL, q.Token, nil)
		if err != nil {
			return nil, fail("Failed to fetch user facilities", err)
		}
		if ids = facilityIDs(facilities); len(ids) == 0 {
			return nil, fail("Failed to fetch user facilities", nil)
		}
	}

	if q.FacilityGroupID != "" {
		facilities, err := a.FetchFacilitiesByGroup(ctx, q.FacilityGroupID, q.BaseURL, q.Token, inFilter(ids))
		if err != nil {
			return nil, fail("Failed to fetch user facilities", err)
		}
		if ids = facilityIDs(facilities); len(ids) == 0 {
			return nil, fail("Failed to fetch user facilities", nil)
		}
	}

	params := merge(map[string]any{"pageSize": maxPageSize}, q.Filters, inFilter(ids))
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "oms/facilities",
		Params:   params,
	})
	if err != nil {
		return nil, fail("Failed to fetch facilities", err)
	}
	return toFacilities(rows(gjson.ParseBytes(resp.Data))), nil
}

func (a *MoquiAdapter) GetEComStores(ctx context.Context, q omsbridge.StoreQuery) ([]omsbridge.ProductStore, error) {
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "oms/productStores",
		Params:   map[string]any{"pageSize": viewSize(q.ViewSize)},
	})
	if err != nil {
		return nil, fail("Failed to fetch product stores", err)
	}
	return toStores(rows(gjson.ParseBytes(resp.Data))), nil
}

func (a *MoquiAdapter) GetEComStoresByFacility(ctx context.Context, q omsbridge.StoreQuery) ([]omsbridge.ProductStore, error) {
	if q.FacilityID == "" {
		return nil, fail("FacilityId is missing", nil)
	}
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "oms/facilities/" + url.PathEscape(q.FacilityID) + "/productStores",
		Params:   map[string]any{"pageSize": viewSize(q.ViewSize), "facilityId": q.FacilityID},
	})
	if err != nil {
		return nil, fail("Failed to fetch facility associated product stores", err)
	}
	stores := toStores(active(rows(gjson.ParseBytes(resp.Data))))
	if len(stores) == 0 {
		return stores, nil
	}

	// The facility association carries no store name.
	names := map[string]string{}
	all, err := a.GetEComStores(ctx, omsbridge.StoreQuery{Token: q.Token, BaseURL: q.BaseURL, ViewSize: 200})
	if err != nil {
		a.Log.WithError(err).Warn("could not look up product store names")
	}
	for _, s := range all {
		names[s.ProductStoreID] = s.StoreName
	}
	for i := range stores {
		stores[i].StoreName = names[stores[i].ProductStoreID]
	}
	return stores, nil
}

func (a *MoquiAdapter) GetUserPreference(ctx context.Context, q omsbridge.PreferenceQuery) (string, error) {
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "admin/user/preferences",
		Params: map[string]any{
			"pageSize":      1,
			"userId":        q.UserID,
			"preferenceKey": q.PrefTypeID,
		},
	})
	if err != nil {
		return "", fail("Failed to get user preference", err)
	}
	value := gjson.GetBytes(resp.Data, "0.preferenceValue")
	if !truthy(value) {
		return "", nil
	}
	return jsonParse(value.String()), nil
}

func (a *MoquiAdapter) SetUserPreference(ctx context.Context, pref omsbridge.UserPreference) error {
	_, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodPut,
		Endpoint: "admin/user/preferences",
		Body: map[string]any{
			"userId":          pref.UserID,
			"preferenceKey":   pref.PrefTypeID,
			"preferenceValue": pref.Value,
		},
	})
	if err != nil {
		return fail("Failed to update user preference", err)
	}
	return nil
}

func (a *MoquiAdapter) GetProductIdentificationPref(ctx context.Context, productStoreID string) (omsbridge.ProductIdentificationPref, error) {
	resp, err := a.Requester.API(ctx, a.settingsRequest(http.MethodGet, productStoreID, nil))
	if err != nil {
		return omsbridge.ProductIdentificationPref{}, fail("Failed to get product identification pref", err)
	}
	if setting := gjson.GetBytes(resp.Data, "0.settingValue"); truthy(setting) {
		pref, err := parsePref(setting.String())
		if err != nil {
			return omsbridge.ProductIdentificationPref{}, fail("Failed to get product identification pref", err)
		}
		return pref, nil
	}
	a.createProductIdentificationPref(ctx, productStoreID)
	return omsbridge.DefaultProductIdentificationPref(), nil
}

func (a *MoquiAdapter) createProductIdentificationPref(ctx context.Context, productStoreID string) {
	pref := omsbridge.DefaultProductIdentificationPref()
	if _, err := a.Requester.API(ctx, a.settingsRequest(http.MethodPost, productStoreID, &pref)); err != nil {
		a.Log.WithError(err).WithField("productStoreId", productStoreID).Warn("could not create product identification pref")
	}
}

func (a *MoquiAdapter) SetProductIdentificationPref(ctx context.Context, productStoreID string, pref omsbridge.ProductIdentificationPref) (omsbridge.ProductIdentificationPref, error) {
	resp, err := a.Requester.API(ctx, a.settingsRequest(http.MethodGet, productStoreID, nil))
	if err != nil {
		a.Log.WithError(err).WithField("productStoreId", productStoreID).Warn("could not check product identification pref")
		return omsbridge.ProductIdentificationPref{}, fail(msgSettingMissing, err)
	}
	if !truthy(gjson.GetBytes(resp.Data, "0.settingTypeEnumId")) {
		return omsbridge.ProductIdentificationPref{}, fail(msgSettingMissing, serverError(resp.Data))
	}

	if _, err := a.Requester.API(ctx, a.settingsRequest(http.MethodPost, productStoreID, &pref)); err != nil {
		return omsbridge.ProductIdentificationPref{}, fail("Failed to set product identification pref", err)
	}
	return pref, nil
}

// settingsRequest reads the identification setting, or writes pref when it
// is non-nil.
func (a *MoquiAdapter) settingsRequest(method, productStoreID string, pref *omsbridge.ProductIdentificationPref) *omsbridge.Request {
	req := &omsbridge.Request{
		Method:   method,
		Endpoint: "oms/productStores/" + url.PathEscape(productStoreID) + "/settings",
	}
	fields := map[string]any{
		"productStoreId":    productStoreID,
		"settingTypeEnumId": settingTypeProductIdentification,
	}
	if pref == nil {
		req.Params = fields
		return req
	}
	fields["settingValue"] = encodePref(*pref)
	req.Body = fields
	return req
}

func (a *MoquiAdapter) GetNotificationEnumIDs(ctx context.Context, enumTypeID string) ([]omsbridge.Enumeration, error) {
	data, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "admin/enums",
		Params:   map[string]any{"enumTypeId": enumTypeID, "pageSize": 200},
	})
	if err != nil {
		return nil, err
	}
	return toEnumerations(rows(gjson.ParseBytes(data))), nil
}

func (a *MoquiAdapter) GetNotificationUserPrefTypeIDs(ctx context.Context, applicationID, userID string, filters map[string]any) ([]omsbridge.NotificationTopicPref, error) {
	params := merge(map[string]any{
		"topicTypeId": applicationID,
		"userId":      userID,
		"pageSize":    200,
	}, filters)
	data, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "firebase/user/notificationtopic",
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	topics := rows(gjson.ParseBytes(data))
	prefs := make([]omsbridge.NotificationTopicPref, 0, len(topics))
	for _, t := range topics {
		prefs = append(prefs, omsbridge.NotificationTopicPref{
			UserPrefTypeID:      firstOf(t, "userPrefTypeId", "enumId"),
			UserPrefGroupTypeID: firstOf(t, "userPrefGroupTypeId", "topicTypeId"),
		})
	}
	return prefs, nil
}

func (a *MoquiAdapter) StoreClientRegistrationToken(ctx context.Context, registrationToken, deviceID, applicationID string) error {
	_, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "firebase/token",
		Body: map[string]any{
			"registrationToken": registrationToken,
			"deviceId":          deviceID,
			"applicationId":     applicationID,
		},
	})
	return err
}

func (a *MoquiAdapter) RemoveClientRegistrationToken(ctx context.Context, deviceID, applicationID string) error {
	_, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodDelete,
		Endpoint: "firebase/token",
		Params:   map[string]any{"deviceId": deviceID, "applicationId": applicationID},
	})
	return err
}

func (a *MoquiAdapter) SubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	_, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "firebase/topic",
		Body:     map[string]any{"topicName": topicName, "applicationId": applicationID},
	})
	return err
}

func (a *MoquiAdapter) UnsubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	_, err := a.call(ctx, &omsbridge.Request{
		Method:   http.MethodDelete,
		Endpoint: "firebase/topic",
		Body:     map[string]any{"topicName": topicName, "applicationId": applicationID},
	})
	return err
}

func facilityIDs(facilities []omsbridge.Facility) []string {
	ids := make([]string, 0, len(facilities))
	for _, f := range facilities {
		ids = append(ids, f.FacilityID)
	}
	return ids
}

// inFilter narrows a list endpoint to ids. No ids means no filter.
func inFilter(ids []string) map[string]any {
	if len(ids) == 0 {
		return nil
	}
	return map[string]any{
		"facilityId":    strings.Join(ids, ","),
		"facilityId_op": "in",
		"pageSize":      len(ids),
	}
}

// merge copies maps left to right; later keys win.
func merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var _ omsbridge.Backend = (*MoquiAdapter)(nil)
