package mock

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Legacy failures come back as 200 with an error field, like the real thing.
func (s *Server) ofbizRoutes(r chi.Router) {
	r.Get("/getAvailableTimeZones", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.fixtures.TimeZones)
	})
	r.Post("/setUserTimeZone", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.updateProfile(map[string]any{"userTimeZone": str(body, "tzId")})
		s.ok(w, r)
	})
	r.Post("/setUserLocale", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		s.updateProfile(map[string]any{"locale": str(body, "newLocale")})
		s.ok(w, r)
	})
	r.Get("/performFind", s.performFind)
	r.Post("/service/{name}", s.service)
}

func (s *Server) performFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := map[string]any{}
	if raw := q.Get("inputFields"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"_ERROR_MESSAGE_": "inputFields is not valid JSON"})
			return
		}
	}

	var docs []map[string]any
	switch q.Get("entityName") {
	case "FacilityAndParty":
		for _, f := range s.fixtures.Facilities {
			if f.ThruDate != "" {
				continue
			}
			if party := str(input, "partyId"); party != "" && !contains(f.PartyIDs, party) {
				continue
			}
			docs = append(docs, facilityJSON(f))
		}
	case "FacilityGroupAndParty":
		group := str(input, "facilityGroupId")
		for _, f := range s.fixtures.Facilities {
			if f.ThruDate != "" || !contains(f.GroupIDs, group) {
				continue
			}
			if party := str(input, "partyId"); party != "" && !contains(f.PartyIDs, party) {
				continue
			}
			docs = append(docs, facilityJSON(f))
		}
	case "ProductStore":
		for _, st := range s.fixtures.Stores {
			docs = append(docs, storeJSON(st))
		}
	case "ProductStoreFacilityDetail":
		facility := str(input, "facilityId")
		for _, st := range s.fixtures.Stores {
			if st.ThruDate == "" && contains(st.FacilityIDs, facility) {
				docs = append(docs, storeJSON(st))
			}
		}
	case "ProductStoreSetting":
		storeID := str(input, "productStoreId")
		value, ok := s.Setting(storeID)
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"error": "No record found"})
			return
		}
		docs = append(docs, map[string]any{
			"productStoreId":    storeID,
			"settingTypeEnumId": str(input, "settingTypeEnumId"),
			"settingValue":      value,
		})
	case "Enumeration":
		for _, e := range s.fixtures.Enums {
			if e.EnumTypeID == str(input, "enumTypeId") {
				docs = append(docs, map[string]any{
					"enumId":      e.EnumID,
					"enumTypeId":  e.EnumTypeID,
					"enumName":    e.EnumName,
					"description": e.Description,
				})
			}
		}
	case "UserPreference":
		app := str(input, "userPrefGroupTypeId")
		s.mu.Lock()
		for key := range s.topics {
			if topicApp, topic := splitKey(key); topicApp == app {
				docs = append(docs, map[string]any{"userPrefTypeId": topicEnum(topic), "userPrefGroupTypeId": app})
			}
		}
		s.mu.Unlock()
	default:
		writeJSON(w, http.StatusOK, map[string]any{"_ERROR_MESSAGE_": "unknown entity " + q.Get("entityName")})
		return
	}

	if docs == nil {
		docs = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": docs, "count": len(docs)})
}

func (s *Server) service(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	user := s.userID()

	switch chi.URLParam(r, "name") {
	case "getUserPreference":
		value, ok := s.Preference(user, str(body, "userPrefTypeId"))
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"userPrefValue": value})
		return
	case "setUserPreference":
		s.SetPreference(user, str(body, "userPrefTypeId"), str(body, "userPrefValue"))
	case "createProductStoreSetting":
		storeID := str(body, "productStoreId")
		if _, ok := s.Setting(storeID); ok {
			writeJSON(w, http.StatusOK, map[string]any{"_ERROR_MESSAGE_": "setting already exists"})
			return
		}
		s.SetSetting(storeID, str(body, "settingValue"))
	case "updateProductStoreSetting":
		storeID := str(body, "productStoreId")
		if _, ok := s.Setting(storeID); !ok {
			writeJSON(w, http.StatusOK, map[string]any{"_ERROR_MESSAGE_": "setting does not exist"})
			return
		}
		s.SetSetting(storeID, str(body, "settingValue"))
	case "storeClientRegistrationToken":
		s.mu.Lock()
		s.regTokens[str(body, "deviceId")+"|"+str(body, "applicationId")] = str(body, "registrationToken")
		s.mu.Unlock()
	case "removeClientRegistrationToken":
		s.mu.Lock()
		delete(s.regTokens, str(body, "deviceId")+"|"+str(body, "applicationId"))
		s.mu.Unlock()
	case "subscribeTopic":
		s.mu.Lock()
		s.topics[str(body, "applicationId")+"|"+str(body, "topicName")] = true
		s.mu.Unlock()
	case "unsubscribeTopic":
		s.mu.Lock()
		delete(s.topics, str(body, "applicationId")+"|"+str(body, "topicName"))
		s.mu.Unlock()
	default:
		writeJSON(w, http.StatusOK, map[string]any{"_ERROR_MESSAGE_": "service not found"})
		return
	}
	s.ok(w, r)
}
