package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	omsbridge "github.com/opengovern/oms-bridge"
)

func TestHasError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"plain object", `{"docs":[]}`, false},
		{"array", `[{"_ERROR_MESSAGE_":"inside rows is fine"}]`, false},
		{"empty array", `[]`, false},
		{"error message", `{"_ERROR_MESSAGE_":"boom"}`, true},
		{"error list", `{"_ERROR_MESSAGE_LIST_":["a"]}`, true},
		{"empty error list is truthy", `{"_ERROR_MESSAGE_LIST_":[]}`, true},
		{"error field", `{"error":"No record found"}`, true},
		{"empty error string", `{"error":""}`, false},
		{"false error", `{"error":false}`, false},
		{"zero error", `{"error":0}`, false},
		{"null error", `{"error":null}`, false},
		{"string body", `"ok"`, true},
		{"number body", `42`, true},
		{"not json", `<html>`, true},
		{"empty body", ``, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasError([]byte(tc.body)))
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		`null`:  false,
		`false`: false,
		`true`:  true,
		`0`:     false,
		`-1`:    true,
		`""`:    false,
		`"x"`:   true,
		`{}`:    true,
		`[]`:    true,
	}
	for raw, want := range tests {
		assert.Equal(t, want, truthy(gjson.Parse(raw)), raw)
	}
	assert.False(t, truthy(gjson.Get(`{}`, "missing")))
}

func TestJSONParse(t *testing.T) {
	assert.Equal(t, "STORE_1", jsonParse(`"STORE_1"`))
	assert.Equal(t, "STORE_1", jsonParse(`STORE_1`))
	assert.Equal(t, `{"a":1}`, jsonParse(`{"a":1}`))
	assert.Equal(t, "", jsonParse(`""`))
	assert.Equal(t, "", jsonParse(""))
}

func TestActive(t *testing.T) {
	in := rows(gjson.Parse(`[
		{"facilityId":"A"},
		{"facilityId":"B","thruDate":"2020-01-01"},
		{"facilityId":"C","thruDate":null},
		{"facilityId":"D","thruDate":""}
	]`))
	got := facilityIDs(toFacilities(active(in)))
	assert.Equal(t, []string{"A", "C", "D"}, got)
}

func TestToUser(t *testing.T) {
	u := toUser([]byte(`{
		"userLoginId": "jdoe",
		"partyId": "10001",
		"userFullName": "Jane Doe",
		"emailAddress": "jane@example.com",
		"timeZone": "Asia/Kolkata",
		"stores": [{"productStoreId":"STORE","storeName":"Demo"}],
		"facilities": [{"facilityId":"STORE_1","facilityName":"Brooklyn","sequenceNum":3}]
	}`))

	assert.Equal(t, "jdoe", u.UserID)
	assert.Equal(t, "jdoe", u.UserLoginID)
	assert.Equal(t, "Jane Doe", u.PartyName)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Asia/Kolkata", u.TimeZone)
	assert.Equal(t, []omsbridge.ProductStore{{ProductStoreID: "STORE", StoreName: "Demo"}}, u.Stores)
	assert.Equal(t, []omsbridge.Facility{{FacilityID: "STORE_1", FacilityName: "Brooklyn", SequenceNum: 3}}, u.Facilities)
}

func TestParsePref(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    omsbridge.ProductIdentificationPref
		wantErr bool
	}{
		{"both keys", `{"primaryId":"SKU","secondaryId":"UPCA"}`, omsbridge.ProductIdentificationPref{PrimaryID: "SKU", SecondaryID: "UPCA"}, false},
		{"secondary only", `{"secondaryId":"UPCA"}`, omsbridge.ProductIdentificationPref{PrimaryID: "productId", SecondaryID: "UPCA"}, false},
		{"primary only", `{"primaryId":"SKU"}`, omsbridge.ProductIdentificationPref{PrimaryID: "SKU"}, false},
		{"empty object", `{}`, omsbridge.DefaultProductIdentificationPref(), false},
		{"explicit empty primary", `{"primaryId":""}`, omsbridge.ProductIdentificationPref{}, false},
		{"not json", `not json`, omsbridge.DefaultProductIdentificationPref(), true},
		{"json array", `["SKU"]`, omsbridge.DefaultProductIdentificationPref(), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePref(tc.value)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodePref(t *testing.T) {
	assert.Equal(t, `{"primaryId":"productId","secondaryId":""}`, encodePref(omsbridge.DefaultProductIdentificationPref()))
}

func TestInFilterAndMerge(t *testing.T) {
	assert.Nil(t, inFilter(nil))
	assert.Equal(t, map[string]any{
		"facilityId":    "A,B",
		"facilityId_op": "in",
		"pageSize":      2,
	}, inFilter([]string{"A", "B"}))

	got := merge(map[string]any{"pageSize": 500, "x": 1}, nil, map[string]any{"pageSize": 2})
	assert.Equal(t, map[string]any{"pageSize": 2, "x": 1}, got)
}
