package attendance

import (
	"errors"
	"net/http"
)

type syncBatchRequest struct {
	Records []RawCheckIn `json:"records"`
}

func (a *API) handleSyncBatch(w http.ResponseWriter, r *http.Request) {
	var req syncBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("records are required"))
		return
	}

	result, err := a.reconciler.SyncBatch(r.Context(), req.Records)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleProcessPending(w http.ResponseWriter, r *http.Request) {
	result, err := a.reconciler.ProcessPending(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleListPending(w http.ResponseWriter, r *http.Request) {
	records, err := a.pending.Unsynced(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}
