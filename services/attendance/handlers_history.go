package attendance

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleStudentHistory(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(chi.URLParam(r, "student_id"))
	if studentID == "" {
		respondError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}

	history, err := a.roster.StudentHistory(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"student_id": studentID,
		"courses":    history,
	})
}
