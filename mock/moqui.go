package mock

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Modern failures use HTTP status codes; list endpoints answer bare arrays.
func (s *Server) moquiRoutes(r chi.Router) {
	r.Get("/admin/user/getAvailableTimeZones", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"timeZones": s.fixtures.TimeZones})
	})
	r.Post("/admin/user/profile", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		update := map[string]any{}
		if tz := str(body, "tzId"); tz != "" {
			update["userTimeZone"] = tz
		}
		if locale := str(body, "locale"); locale != "" {
			update["locale"] = locale
		}
		s.updateProfile(update)
		s.ok(w, r)
	})

	r.Get("/admin/user/preferences", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		value, ok := s.Preference(s.userOr(q.Get("userId")), q.Get("preferenceKey"))
		if !ok {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		writeJSON(w, http.StatusOK, []any{map[string]any{
			"userId":          s.userOr(q.Get("userId")),
			"preferenceKey":   q.Get("preferenceKey"),
			"preferenceValue": value,
		}})
	})
	r.Put("/admin/user/preferences", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		if str(body, "preferenceKey") == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": "preferenceKey is required"})
			return
		}
		s.SetPreference(s.userOr(str(body, "userId")), str(body, "preferenceKey"), str(body, "preferenceValue"))
		s.ok(w, r)
	})

	r.Get("/inventory-cycle-count/user/{partyId}/facilities", func(w http.ResponseWriter, r *http.Request) {
		party := chi.URLParam(r, "partyId")
		rows := []map[string]any{}
		for _, f := range s.fixtures.Facilities {
			if contains(f.PartyIDs, party) {
				rows = append(rows, facilityJSON(f))
			}
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/oms/groupFacilities", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ids := inIDs(q.Get("facilityId"), q.Get("facilityId_op"))
		rows := []map[string]any{}
		for _, f := range s.fixtures.Facilities {
			if !contains(f.GroupIDs, q.Get("facilityGroupId")) {
				continue
			}
			if ids != nil && !contains(ids, f.FacilityID) {
				continue
			}
			rows = append(rows, facilityJSON(f))
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/oms/facilities", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ids := inIDs(q.Get("facilityId"), q.Get("facilityId_op"))
		rows := []map[string]any{}
		for _, f := range s.fixtures.Facilities {
			if f.ThruDate != "" {
				continue
			}
			if ids != nil && !contains(ids, f.FacilityID) {
				continue
			}
			row := facilityJSON(f)
			rows = append(rows, row)
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/oms/facilities/{facilityId}/productStores", func(w http.ResponseWriter, r *http.Request) {
		facility := chi.URLParam(r, "facilityId")
		rows := []map[string]any{}
		for _, st := range s.fixtures.Stores {
			if !contains(st.FacilityIDs, facility) {
				continue
			}
			// The association row has no storeName.
			row := map[string]any{"productStoreId": st.ProductStoreID, "facilityId": facility}
			if st.ThruDate != "" {
				row["thruDate"] = st.ThruDate
			}
			rows = append(rows, row)
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/oms/productStores", func(w http.ResponseWriter, _ *http.Request) {
		rows := []map[string]any{}
		for _, st := range s.fixtures.Stores {
			rows = append(rows, storeJSON(st))
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/oms/productStores/{productStoreId}/settings", func(w http.ResponseWriter, r *http.Request) {
		storeID := chi.URLParam(r, "productStoreId")
		value, ok := s.Setting(storeID)
		if !ok {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		writeJSON(w, http.StatusOK, []any{map[string]any{
			"productStoreId":    storeID,
			"settingTypeEnumId": r.URL.Query().Get("settingTypeEnumId"),
			"settingValue":      value,
		}})
	})
	r.Post("/oms/productStores/{productStoreId}/settings", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.SetSetting(chi.URLParam(r, "productStoreId"), str(body, "settingValue"))
		s.ok(w, r)
	})

	r.Get("/admin/enums", func(w http.ResponseWriter, r *http.Request) {
		rows := []map[string]any{}
		for _, e := range s.fixtures.Enums {
			if e.EnumTypeID == r.URL.Query().Get("enumTypeId") {
				rows = append(rows, map[string]any{
					"enumId":      e.EnumID,
					"enumTypeId":  e.EnumTypeID,
					"enumName":    e.EnumName,
					"description": e.Description,
				})
			}
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/firebase/user/notificationtopic", func(w http.ResponseWriter, r *http.Request) {
		app := r.URL.Query().Get("topicTypeId")
		rows := []map[string]any{}
		s.mu.Lock()
		for key := range s.topics {
			if topicApp, topic := splitKey(key); topicApp == app {
				rows = append(rows, map[string]any{"enumId": topicEnum(topic), "topicTypeId": app})
			}
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, rows)
	})
	r.Post("/firebase/token", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.mu.Lock()
		s.regTokens[str(body, "deviceId")+"|"+str(body, "applicationId")] = str(body, "registrationToken")
		s.mu.Unlock()
		s.ok(w, r)
	})
	r.Delete("/firebase/token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.mu.Lock()
		delete(s.regTokens, q.Get("deviceId")+"|"+q.Get("applicationId"))
		s.mu.Unlock()
		s.ok(w, r)
	})
	r.Post("/firebase/topic", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.mu.Lock()
		s.topics[str(body, "applicationId")+"|"+str(body, "topicName")] = true
		s.mu.Unlock()
		s.ok(w, r)
	})
	r.Delete("/firebase/topic", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.mu.Lock()
		delete(s.topics, str(body, "applicationId")+"|"+str(body, "topicName"))
		s.mu.Unlock()
		s.ok(w, r)
	})
}

func (s *Server) userOr(userID string) string {
	if userID != "" {
		return userID
	}
	return s.userID()
}

// inIDs parses a facilityId_op=in filter; nil means unfiltered.
func inIDs(value, op string) []string {
	if op != "in" || value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
