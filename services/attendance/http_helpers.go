package attendance

import (
	"encoding/json"
	"errors"
	"net/http"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondFailure renders a *CheckInError as a structured rejection. Range
// failures carry the computed distance so clients can show how far off the
// student was.
func respondFailure(w http.ResponseWriter, failure *CheckInError) {
	status := http.StatusBadRequest
	switch failure.Kind {
	case KindInvalidToken:
		status = http.StatusUnauthorized
	case KindNotEnrolled:
		status = http.StatusForbidden
	case KindNotFound:
		status = http.StatusNotFound
	case KindSyncConflict:
		status = http.StatusConflict
	}

	payload := map[string]any{
		"ok":    false,
		"kind":  string(failure.Kind),
		"error": failure.Error(),
	}
	if failure.Kind == KindOutOfRange || failure.Kind == KindLocationRequired {
		payload["distance_meters"] = failure.Distance
	}
	respondJSON(w, status, payload)
}
