package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobfeed/internal/model"
	"jobfeed/internal/store"
)

// JobsHandler serves the stored dataset.
type JobsHandler struct {
	Store JobStore
}

// List handles GET /jobs?company=&status=&limit=&offset=.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.ListOpts{Company: q.Get("company")}

	if s := q.Get("status"); s != "" {
		status, err := model.ParseStatus(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		opts.Status = status
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			return
		}
		opts.Offset = n
	}

	jobs, err := h.Store.ListJobs(r.Context(), opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if jobs == nil {
		jobs = []model.JobRecord{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatusByPath handles PATCH /jobs/{id}/status.
func (h JobsHandler) UpdateStatusByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/jobs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "status" {
		writeError(w, r, http.StatusNotFound, "not_found", "expected /jobs/{id}/status")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}

	var body statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "expected JSON body with a status field")
		return
	}
	status, err := model.ParseStatus(body.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	rec, err := h.Store.UpdateStatus(r.Context(), id, status)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "not_found", "no job with that id")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
