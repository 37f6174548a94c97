package attendance

import (
	"errors"
	"net/http"
	"strings"
)

type checkInRequest struct {
	StudentID string   `json:"student_id"`
	Token     string   `json:"token"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (a *API) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		respondError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}
	token, err := NormalizeTokenValue(req.Token)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.processor.CheckIn(r.Context(), studentID, token, req.Latitude, req.Longitude)
	if err != nil {
		var failure *CheckInError
		if errors.As(err, &failure) {
			respondFailure(w, failure)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"session_id":      result.SessionID,
		"distance_meters": result.Distance,
	})
}

// handleLecturerLocation lets a client preview the fence center for the
// course a token belongs to before attempting a check-in.
func (a *API) handleLecturerLocation(w http.ResponseWriter, r *http.Request) {
	token, err := NormalizeTokenValue(r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	resolved, err := a.tokens.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrTokenExpired) {
			respondFailure(w, checkInFailure(KindInvalidToken, MissingLocationDistance, err))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	lat, lon, err := a.roster.LecturerLocation(r.Context(), resolved.CourseID)
	if err != nil {
		if errors.Is(err, ErrLecturerLocationUnset) || errors.Is(err, ErrCourseNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"latitude":  lat,
		"longitude": lon,
		"token":     resolved.Value,
	})
}
