// ofbiz_adapter.go
// ----------------
// This adapter speaks the legacy OMS dialect.
//
// Approach:
//   - Entity reads go through the generic performFind endpoint. Object-valued
//     params such as inputFields travel JSON-stringified and list params such
//     as fieldList as repeated keys; the transport handles both.
//   - Writes go to service/<name> endpoints with a JSON body.
//   - The backend answers 200 for most failures, so every response is run
//     through hasError before its payload is trusted.
//   - Reads of the product identification setting never fail: a missing record
//     is created with defaults and any other problem yields the defaults.
package adapters

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	omsbridge "github.com/opengovern/oms-bridge"
)

const defaultViewSize = 100

type OfbizAdapter struct {
	Requester omsbridge.Requester
	Log       logrus.FieldLogger
}

func NewOfbizAdapter(r omsbridge.Requester) *OfbizAdapter {
	return &OfbizAdapter{
		Requester: r,
		Log:       logrus.WithField("adapter", omsbridge.LegacyBackend.String()),
	}
}

func (a *OfbizAdapter) Kind() omsbridge.BackendKind { return omsbridge.LegacyBackend }

// send routes explicit-credential calls through the raw client.
func (a *OfbizAdapter) send(ctx context.Context, token, baseURL string, req *omsbridge.Request) (*omsbridge.Response, error) {
	return send(ctx, a.Requester.API, a.Requester.Client, token, baseURL, req)
}

// post calls a service endpoint and applies the legacy success rule.
func (a *OfbizAdapter) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	resp, err := a.Requester.API(ctx, &omsbridge.Request{Method: http.MethodPost, Endpoint: endpoint, Body: body})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return resp.Data, nil
}

// find runs a performFind through the session and returns its docs.
func (a *OfbizAdapter) find(ctx context.Context, params map[string]any) ([]gjson.Result, error) {
	resp, err := a.Requester.API(ctx, &omsbridge.Request{Method: http.MethodGet, Endpoint: "performFind", Params: params})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return rows(gjson.GetBytes(resp.Data, "docs")), nil
}

func (a *OfbizAdapter) GetProfile(ctx context.Context) (*omsbridge.User, error) {
	return getProfile(ctx, a.Requester)
}

func (a *OfbizAdapter) Logout(ctx context.Context) error {
	return logout(ctx, a.Requester)
}

func (a *OfbizAdapter) LoginShopifyAppUser(ctx context.Context, baseURL string, payload map[string]any) (map[string]any, error) {
	return loginShopifyAppUser(ctx, a.Requester, baseURL, payload)
}

func (a *OfbizAdapter) GetAvailableTimeZones(ctx context.Context) ([]omsbridge.TimeZone, error) {
	resp, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "getAvailableTimeZones",
		Cache:    true,
	})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return toTimeZones(rows(gjson.ParseBytes(resp.Data))), nil
}

func (a *OfbizAdapter) SetUserTimeZone(ctx context.Context, userID, tzID string) error {
	_, err := a.post(ctx, "setUserTimeZone", map[string]any{"userId": userID, "tzId": tzID})
	return err
}

func (a *OfbizAdapter) SetUserLocale(ctx context.Context, userID, locale string) error {
	_, err := a.post(ctx, "setUserLocale", map[string]any{"userId": userID, "newLocale": locale})
	return err
}

func (a *OfbizAdapter) GetUserFacilities(ctx context.Context, q omsbridge.FacilityQuery) ([]omsbridge.Facility, error) {
	inputFields := map[string]any{}
	params := map[string]any{
		"filterByDate":    "Y",
		"viewSize":        200,
		"distinct":        "Y",
		"noConditionFind": "Y",
	}
	if q.FacilityGroupID != "" {
		params["entityName"] = "FacilityGroupAndParty"
		params["fieldList"] = []string{"facilityId", "facilityName", "sequenceNum", "facilityTypeId"}
		params["fromDateName"] = "FGMFromDate"
		params["thruDateName"] = "FGMThruDate"
		params["orderBy"] = "sequenceNum ASC | facilityName ASC"
		inputFields["facilityGroupId"] = q.FacilityGroupID
	} else {
		params["entityName"] = "FacilityAndParty"
		params["fieldList"] = []string{"facilityId", "facilityName", "facilityTypeId"}
		params["orderBy"] = "facilityName ASC"
		inputFields["facilityParentTypeId"] = "VIRTUAL_FACILITY"
		inputFields["facilityParentTypeId_op"] = "notEqual"
	}
	if !q.IsAdminUser {
		inputFields["partyId"] = q.PartyID
	}
	params["inputFields"] = inputFields

	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{Method: http.MethodGet, Endpoint: "performFind", Params: params})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if resp.StatusCode != http.StatusOK || hasError(resp.Data) {
		return nil, fail("Failed to fetch user facilities", serverError(resp.Data))
	}
	return toFacilities(rows(gjson.GetBytes(resp.Data, "docs"))), nil
}

func (a *OfbizAdapter) GetEComStores(ctx context.Context, q omsbridge.StoreQuery) ([]omsbridge.ProductStore, error) {
	params := map[string]any{
		"viewSize":        viewSize(q.ViewSize),
		"fieldList":       []string{"productStoreId", "storeName", "productIdentifierEnumId"},
		"entityName":      "ProductStore",
		"distinct":        "Y",
		"noConditionFind": "Y",
	}
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{Method: http.MethodGet, Endpoint: "performFind", Params: params})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return toStores(rows(gjson.GetBytes(resp.Data, "docs"))), nil
}

func (a *OfbizAdapter) GetEComStoresByFacility(ctx context.Context, q omsbridge.StoreQuery) ([]omsbridge.ProductStore, error) {
	if q.FacilityID == "" {
		return nil, fail("FacilityId is missing", nil)
	}
	params := map[string]any{
		"inputFields": map[string]any{
			"storeName_op": "not-empty",
			"facilityId":   q.FacilityID,
		},
		"viewSize":        viewSize(q.ViewSize),
		"fieldList":       []string{"productStoreId", "storeName", "productIdentifierEnumId"},
		"entityName":      "ProductStoreFacilityDetail",
		"distinct":        "Y",
		"noConditionFind": "Y",
		"filterByDate":    "Y",
	}
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{Method: http.MethodGet, Endpoint: "performFind", Params: params})
	if err != nil {
		return nil, fail(msgSomethingWrong, err)
	}
	if resp.StatusCode != http.StatusOK || hasError(resp.Data) {
		return nil, fail(msgSomethingWrong, serverError(resp.Data))
	}
	return toStores(rows(gjson.GetBytes(resp.Data, "docs"))), nil
}

func (a *OfbizAdapter) GetUserPreference(ctx context.Context, q omsbridge.PreferenceQuery) (string, error) {
	resp, err := a.send(ctx, q.Token, q.BaseURL, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "service/getUserPreference",
		Body:     map[string]any{"userPrefTypeId": q.PrefTypeID},
	})
	if err != nil {
		return "", fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return "", fail(msgSomethingWrong, serverError(resp.Data))
	}
	value := gjson.GetBytes(resp.Data, "userPrefValue")
	if !value.Exists() {
		return "", nil
	}
	return jsonParse(value.String()), nil
}

func (a *OfbizAdapter) SetUserPreference(ctx context.Context, pref omsbridge.UserPreference) error {
	_, err := a.post(ctx, "service/setUserPreference", map[string]any{
		"userPrefTypeId": pref.PrefTypeID,
		"userPrefValue":  pref.Value,
	})
	return err
}

func (a *OfbizAdapter) GetProductIdentificationPref(ctx context.Context, productStoreID string) (omsbridge.ProductIdentificationPref, error) {
	pref := omsbridge.DefaultProductIdentificationPref()
	log := a.Log.WithField("productStoreId", productStoreID)

	resp, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "performFind",
		Params:   settingFind(productStoreID, "settingValue", "settingTypeEnumId"),
		Cache:    true,
	})
	if err != nil {
		log.WithError(err).Warn("could not read product identification pref, using defaults")
		return pref, nil
	}

	if setting := gjson.GetBytes(resp.Data, "docs.0.settingValue"); !hasError(resp.Data) && truthy(setting) {
		parsed, err := parsePref(setting.String())
		if err != nil {
			log.WithError(err).Warn("unreadable product identification pref, using defaults")
			return pref, nil
		}
		return parsed, nil
	}
	if gjson.GetBytes(resp.Data, "error").String() == "No record found" {
		a.createProductIdentificationPref(ctx, productStoreID)
	}
	return pref, nil
}

// createProductIdentificationPref stores the defaults. The outcome is not
// checked; callers use the defaults either way.
func (a *OfbizAdapter) createProductIdentificationPref(ctx context.Context, productStoreID string) {
	_, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "service/createProductStoreSetting",
		Body: map[string]any{
			"productStoreId":    productStoreID,
			"settingTypeEnumId": settingTypeProductIdentification,
			"settingValue":      encodePref(omsbridge.DefaultProductIdentificationPref()),
		},
	})
	if err != nil {
		a.Log.WithError(err).WithField("productStoreId", productStoreID).Warn("could not create product identification pref")
	}
}

func (a *OfbizAdapter) SetProductIdentificationPref(ctx context.Context, productStoreID string, pref omsbridge.ProductIdentificationPref) (omsbridge.ProductIdentificationPref, error) {
	resp, err := a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodGet,
		Endpoint: "performFind",
		Params:   settingFind(productStoreID, "productStoreId", "settingTypeEnumId"),
		Cache:    true,
	})
	exists := err == nil && !hasError(resp.Data) && len(rows(gjson.GetBytes(resp.Data, "docs"))) > 0
	if err != nil {
		a.Log.WithError(err).WithField("productStoreId", productStoreID).Warn("could not check product identification pref")
	}
	if !exists {
		return omsbridge.ProductIdentificationPref{}, fail(msgSettingMissing, nil)
	}

	resp, err = a.Requester.API(ctx, &omsbridge.Request{
		Method:   http.MethodPost,
		Endpoint: "service/updateProductStoreSetting",
		Body: map[string]any{
			"productStoreId":    productStoreID,
			"settingTypeEnumId": settingTypeProductIdentification,
			"settingValue":      encodePref(pref),
		},
	})
	if err != nil {
		return omsbridge.ProductIdentificationPref{}, fail(msgSomethingWrong, err)
	}
	if hasError(resp.Data) {
		return omsbridge.ProductIdentificationPref{}, fail("Failed to set product identification pref", serverError(resp.Data))
	}
	return pref, nil
}

func (a *OfbizAdapter) GetNotificationEnumIDs(ctx context.Context, enumTypeID string) ([]omsbridge.Enumeration, error) {
	docs, err := a.find(ctx, map[string]any{
		"inputFields": map[string]any{"enumTypeId": enumTypeID},
		"entityName":  "Enumeration",
		"fieldList":   []string{"description", "enumId", "enumTypeId", "enumName"},
		"viewSize":    200,
	})
	if err != nil {
		return nil, err
	}
	return toEnumerations(docs), nil
}

func (a *OfbizAdapter) GetNotificationUserPrefTypeIDs(ctx context.Context, applicationID, userID string, filters map[string]any) ([]omsbridge.NotificationTopicPref, error) {
	inputFields := map[string]any{
		"userPrefGroupTypeId": applicationID,
		"userLoginId":         userID,
	}
	for k, v := range filters {
		inputFields[k] = v
	}
	docs, err := a.find(ctx, map[string]any{
		"inputFields": inputFields,
		"entityName":  "UserPreference",
		"fieldList":   []string{"userPrefTypeId", "userPrefGroupTypeId"},
		"viewSize":    200,
	})
	if err != nil {
		return nil, err
	}
	prefs := make([]omsbridge.NotificationTopicPref, 0, len(docs))
	for _, doc := range docs {
		prefs = append(prefs, omsbridge.NotificationTopicPref{
			UserPrefTypeID:      doc.Get("userPrefTypeId").String(),
			UserPrefGroupTypeID: doc.Get("userPrefGroupTypeId").String(),
		})
	}
	return prefs, nil
}

func (a *OfbizAdapter) StoreClientRegistrationToken(ctx context.Context, registrationToken, deviceID, applicationID string) error {
	_, err := a.post(ctx, "service/storeClientRegistrationToken", map[string]any{
		"registrationToken": registrationToken,
		"deviceId":          deviceID,
		"applicationId":     applicationID,
	})
	return err
}

func (a *OfbizAdapter) RemoveClientRegistrationToken(ctx context.Context, deviceID, applicationID string) error {
	_, err := a.post(ctx, "service/removeClientRegistrationToken", map[string]any{
		"deviceId":      deviceID,
		"applicationId": applicationID,
	})
	return err
}

func (a *OfbizAdapter) SubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	_, err := a.post(ctx, "service/subscribeTopic", map[string]any{"topicName": topicName, "applicationId": applicationID})
	return err
}

func (a *OfbizAdapter) UnsubscribeTopic(ctx context.Context, topicName, applicationID string) error {
	_, err := a.post(ctx, "service/unsubscribeTopic", map[string]any{"topicName": topicName, "applicationId": applicationID})
	return err
}

func settingFind(productStoreID string, fields ...string) map[string]any {
	return map[string]any{
		"inputFields": map[string]any{
			"productStoreId":    productStoreID,
			"settingTypeEnumId": settingTypeProductIdentification,
		},
		"entityName": "ProductStoreSetting",
		"fieldList":  fields,
		"viewSize":   1,
	}
}

func viewSize(n int) int {
	if n <= 0 {
		return defaultViewSize
	}
	return n
}

var _ omsbridge.Backend = (*OfbizAdapter)(nil)
