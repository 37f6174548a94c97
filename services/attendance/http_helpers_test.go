package attendance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondFailureStatusMapping(t *testing.T) {
	tests := []struct {
		kind         Kind
		distance     float64
		wantStatus   int
		wantDistance bool
	}{
		{kind: KindInvalidToken, distance: MissingLocationDistance, wantStatus: http.StatusUnauthorized},
		{kind: KindNotEnrolled, distance: MissingLocationDistance, wantStatus: http.StatusForbidden},
		{kind: KindOutOfRange, distance: 149.5, wantStatus: http.StatusBadRequest, wantDistance: true},
		{kind: KindLocationRequired, distance: MissingLocationDistance, wantStatus: http.StatusBadRequest, wantDistance: true},
		{kind: KindValidation, distance: MissingLocationDistance, wantStatus: http.StatusBadRequest},
		{kind: KindNotFound, distance: MissingLocationDistance, wantStatus: http.StatusNotFound},
		{kind: KindSyncConflict, distance: MissingLocationDistance, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondFailure(rec, checkInFailure(tt.kind, tt.distance, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["kind"] != string(tt.kind) {
				t.Fatalf("kind = %v, want %s", body["kind"], tt.kind)
			}
			if ok, _ := body["ok"].(bool); ok {
				t.Fatal("failure body reports ok=true")
			}
			_, hasDistance := body["distance_meters"]
			if hasDistance != tt.wantDistance {
				t.Fatalf("distance_meters present = %v, want %v", hasDistance, tt.wantDistance)
			}
		})
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/check-in",
		strings.NewReader(`{"student_id":"ST-001","token":"ABC123","bogus":true}`))

	var dest checkInRequest
	if err := decodeJSON(req, &dest); err == nil {
		t.Fatal("decodeJSON() accepted unknown field")
	}
}
