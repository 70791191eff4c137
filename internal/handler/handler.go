// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/confreg/tier-reporting/internal/model"
	"github.com/confreg/tier-reporting/internal/report"
	"github.com/confreg/tier-reporting/internal/repository"
	"github.com/confreg/tier-reporting/internal/service"
)

// ReportHandler holds all HTTP handlers for the tier reporting API.
type ReportHandler struct {
	svc *service.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func queryFromRequest(r *http.Request) report.Query {
	q := r.URL.Query()
	return report.Query{
		Category: model.Category(q.Get("category")),
		Label:    q.Get("label"),
		Code:     q.Get("code"),
		Text:     q.Get("q"),
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
// Creates a new event with its name and tier tables.
func (h *ReportHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns a JSON array of all events.
func (h *ReportHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
// Returns a single event by its UUID.
func (h *ReportHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// AddRegistrant handles POST /events/{id}/registrants
// Records a registration snapshot against the event.
func (h *ReportHandler) AddRegistrant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.AddRegistrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.AddRegistrant(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// ListRegistrants handles GET /events/{id}/registrants
// Returns all registration snapshots for an event.
func (h *ReportHandler) ListRegistrants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	regs, err := h.svc.ListRegistrants(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list registrants")
		return
	}

	if regs == nil {
		regs = []model.Registrant{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// TierReport handles GET /events/{id}/report
// Returns per-category tier counts and discount-code usage counts,
// recomputed from the current registrant snapshot.
func (h *ReportHandler) TierReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.svc.TierReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Lookup handles GET /events/{id}/lookup?category=&label=&code=&q=
// Returns the registrants behind one aggregated count.
func (h *ReportHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	regs, err := h.svc.Lookup(r.Context(), id, queryFromRequest(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if regs == nil {
		regs = []model.Registrant{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// Export handles GET /events/{id}/export?category=&label=&code=&q=
// Streams a CSV snapshot of the filtered result set.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.svc.Export(r.Context(), id, queryFromRequest(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snap.FileName+`"`)
	if err := snap.WriteCSV(w); err != nil {
		// Headers are gone at this point; nothing more to do than log.
		return
	}
}

// Promote handles POST /events/{id}/registrants/{regID}/promote
// Issues the waitlist-promotion command and returns the refreshed
// registrant snapshot.
func (h *ReportHandler) Promote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	regID := chi.URLParam(r, "regID")

	var req model.PromoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Activity == "" {
		writeError(w, http.StatusBadRequest, "activity is required")
		return
	}

	regs, err := h.svc.Promote(r.Context(), id, regID, req.Activity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "registrant not found")
		case errors.Is(err, service.ErrNotWaitlisted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, regs)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
