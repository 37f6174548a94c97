package attendance

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type issueTokenRequest struct {
	CourseID  string   `json:"course_id"`
	Token     string   `json:"token"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// handleIssueToken creates the course's check-in token and records where
// the lecturer is, in one call, mirroring how a lecturer starts a class.
func (a *API) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	courseID, err := uuid.Parse(strings.TrimSpace(req.CourseID))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid course_id is required"))
		return
	}

	token, err := a.tokens.Issue(r.Context(), courseID, req.Token, time.Time{}, time.Time{})
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenTaken):
			respondError(w, http.StatusConflict, err)
		default:
			respondError(w, http.StatusBadRequest, err)
		}
		return
	}

	if req.Latitude != nil && req.Longitude != nil {
		if err := a.roster.UpdateLecturerLocation(r.Context(), courseID, *req.Latitude, *req.Longitude); err != nil {
			var failure *CheckInError
			switch {
			case errors.As(err, &failure):
				respondFailure(w, failure)
			case errors.Is(err, ErrCourseNotFound), errors.Is(err, ErrLecturerLocationUnset):
				respondError(w, http.StatusNotFound, err)
			default:
				respondError(w, http.StatusInternalServerError, err)
			}
			return
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"token":      token.Value,
		"course_id":  token.CourseID,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})
}

type endSessionRequest struct {
	CourseID string `json:"course_id"`
}

func (a *API) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	courseID, err := uuid.Parse(strings.TrimSpace(req.CourseID))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid course_id is required"))
		return
	}

	session, err := a.sessions.Close(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) || errors.Is(err, ErrCourseNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"session_id": session.ID,
		"ended_at":   session.EndedAt,
	})
}
