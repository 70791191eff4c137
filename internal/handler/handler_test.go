package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/confreg/tier-reporting/internal/model"
	"github.com/confreg/tier-reporting/internal/report"
	"github.com/confreg/tier-reporting/internal/repository"
	"github.com/confreg/tier-reporting/internal/service"
)

type memEventStore struct {
	events map[string]*model.Event
}

func (m *memEventStore) Create(_ context.Context, req model.CreateEventRequest) (*model.Event, error) {
	e := &model.Event{ID: "evt-new", Name: req.Name, RegistrationTiers: req.RegistrationTiers, CreatedAt: time.Now().UTC()}
	m.events[e.ID] = e
	return e, nil
}

func (m *memEventStore) List(_ context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memEventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

type memRegistrantStore struct {
	regs []model.Registrant
}

func (m *memRegistrantStore) Create(_ context.Context, eventID string, req model.AddRegistrantRequest) (*model.Registrant, error) {
	reg := model.Registrant{ID: "reg-new", EventID: eventID, Email: req.Email, CreatedAt: time.Now().UTC()}
	m.regs = append(m.regs, reg)
	return &reg, nil
}

func (m *memRegistrantStore) ListByEvent(_ context.Context, eventID string) ([]model.Registrant, error) {
	var out []model.Registrant
	for _, r := range m.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRegistrantStore) GetByID(_ context.Context, id string) (*model.Registrant, error) {
	for i := range m.regs {
		if m.regs[i].ID == id {
			return &m.regs[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type memPromoter struct{ err error }

func (m *memPromoter) Promote(context.Context, string, string) error { return m.err }

func newTestRouter(promoter service.Promoter) *chi.Mux {
	events := &memEventStore{events: map[string]*model.Event{
		"evt-1": {
			ID:   "evt-1",
			Name: "Annual Conference 2024",
			RegistrationTiers: []model.PricingTier{
				{Label: "Early", StartDate: "2024-01-01", EndDate: "2024-03-31"},
			},
		},
	}}
	regs := &memRegistrantStore{regs: []model.Registrant{
		{ID: "r1", EventID: "evt-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil",
			CreatedAt: time.Date(2024, 2, 1, 17, 0, 0, 0, time.UTC),
			WaitlistedActivities: []string{"city-tour"}},
	}}
	h := NewReportHandler(service.NewReportService(events, regs, promoter))

	r := chi.NewRouter()
	r.Get("/health", HealthCheck)
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Get("/{id}/report", h.TierReport)
		r.Get("/{id}/lookup", h.Lookup)
		r.Get("/{id}/export", h.Export)
		r.Post("/{id}/registrants/{regID}/promote", h.Promote)
	})
	return r
}

func TestTierReportEndpoint(t *testing.T) {
	r := newTestRouter(&memPromoter{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var s report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	require.Equal(t, report.TierCounts{"Early": 1}, s.Registration)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/missing/report", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupEndpoint(t *testing.T) {
	r := newTestRouter(&memPromoter{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/lookup?category=registration&label=Early&q=grace", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var regs []model.Registrant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
	require.Len(t, regs, 1)

	// Unknown category maps to a client error, not a server error.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/lookup?category=vip&label=Early", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// A miss is an empty array, never null.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/lookup?category=registration&label=Late", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestExportEndpoint(t *testing.T) {
	r := newTestRouter(&memPromoter{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/export?category=registration&label=Early", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "Annual_Conference_2024_registration_Early.csv")
	require.Contains(t, rec.Body.String(), "grace@navy.mil")
}

func TestPromoteEndpoint(t *testing.T) {
	r := newTestRouter(&memPromoter{})

	body := `{"activity":"city-tour"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/evt-1/registrants/r1/promote", jsonBody(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/evt-1/registrants/r1/promote", jsonBody(`{"activity":"gala"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/evt-1/registrants/r1/promote", jsonBody(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
