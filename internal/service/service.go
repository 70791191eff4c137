// Package service implements business logic, validation, and orchestration
// between HTTP handlers, the repository layer, and the reporting engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confreg/tier-reporting/internal/export"
	"github.com/confreg/tier-reporting/internal/model"
	"github.com/confreg/tier-reporting/internal/report"
	"github.com/confreg/tier-reporting/internal/repository"
)

// ErrNotWaitlisted is returned when promotion is requested for a
// registrant who is not on the named activity's waitlist.
var ErrNotWaitlisted = errors.New("registrant is not waitlisted for this activity")

// EventStore is the slice of the repository the service needs for events.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// RegistrantStore is the slice of the repository the service needs for
// registration snapshots.
type RegistrantStore interface {
	Create(ctx context.Context, eventID string, req model.AddRegistrantRequest) (*model.Registrant, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registrant, error)
	GetByID(ctx context.Context, id string) (*model.Registrant, error)
}

// Promoter issues the outbound waitlist-promotion command.
type Promoter interface {
	Promote(ctx context.Context, registrantID, activity string) error
}

// ReportService orchestrates event data access and the tier reporting
// engine. The engine itself holds no state; every report, lookup, and
// export recomputes from the snapshot read here.
type ReportService struct {
	events      EventStore
	registrants RegistrantStore
	promoter    Promoter
	now         func() time.Time
}

// NewReportService constructs a ReportService with its dependencies.
func NewReportService(events EventStore, registrants RegistrantStore, promoter Promoter) *ReportService {
	return &ReportService{
		events:      events,
		registrants: registrants,
		promoter:    promoter,
		now:         time.Now,
	}
}

// CreateEvent validates the request and delegates to the repository.
// Tier tables are stored as configured; overlapping or gapped ranges
// are legal and handled by the resolver at query time.
func (s *ReportService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	return s.events.Create(ctx, req)
}

// ListEvents returns all events.
func (s *ReportService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *ReportService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// AddRegistrant validates and records a registration snapshot.
func (s *ReportService) AddRegistrant(ctx context.Context, eventID string, req model.AddRegistrantRequest) (*model.Registrant, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("email is not a valid email address")
	}
	if req.DependentCount < 0 {
		return nil, fmt.Errorf("dependent_count cannot be negative")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, repository.ErrNotFound
	}
	return s.registrants.Create(ctx, eventID, req)
}

// ListRegistrants returns all registration snapshots for an event.
func (s *ReportService) ListRegistrants(ctx context.Context, eventID string) ([]model.Registrant, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, repository.ErrNotFound
	}
	return s.registrants.ListByEvent(ctx, eventID)
}

// TierReport aggregates the event's current registrant snapshot into
// per-category tier counts and discount-code usage counts.
func (s *ReportService) TierReport(ctx context.Context, eventID string) (*report.Summary, error) {
	event, regs, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return report.Aggregate(event, regs), nil
}

// Lookup returns the registrants behind one aggregated count.
func (s *ReportService) Lookup(ctx context.Context, eventID string, q report.Query) ([]model.Registrant, error) {
	if err := validateQuery(&q); err != nil {
		return nil, err
	}
	event, regs, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return report.Lookup(event, regs, q), nil
}

// Export renders the lookup result for q into a downloadable snapshot.
func (s *ReportService) Export(ctx context.Context, eventID string, q report.Query) (*export.Snapshot, error) {
	if err := validateQuery(&q); err != nil {
		return nil, err
	}
	event, regs, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows := report.Lookup(event, regs, q)
	label := q.Label
	if q.Code != "" {
		label = report.NormalizeCode(q.Code)
	}
	return export.BuildSnapshot(q.Category, label, event, rows, s.now()), nil
}

// Promote issues the waitlist-promotion command for one registrant and
// returns the refreshed registrant snapshot on success. A backend
// failure surfaces as-is; no aggregation state exists to corrupt.
func (s *ReportService) Promote(ctx context.Context, eventID, registrantID, activity string) ([]model.Registrant, error) {
	activity = strings.TrimSpace(activity)
	if activity == "" {
		return nil, fmt.Errorf("activity is required")
	}
	reg, err := s.registrants.GetByID(ctx, registrantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	if reg.EventID != eventID {
		return nil, repository.ErrNotFound
	}
	if !reg.WaitlistedFor(activity) {
		return nil, ErrNotWaitlisted
	}
	if err := s.promoter.Promote(ctx, registrantID, activity); err != nil {
		return nil, err
	}
	return s.registrants.ListByEvent(ctx, eventID)
}

// snapshot reads the immutable inputs for one computation pass.
func (s *ReportService) snapshot(ctx context.Context, eventID string) (*model.Event, []model.Registrant, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.registrants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list registrants: %w", err)
	}
	return event, regs, nil
}

func validateQuery(q *report.Query) error {
	if q.Code != "" {
		return nil
	}
	if q.Category == "" {
		return fmt.Errorf("category or code is required")
	}
	if !q.Category.Valid() {
		return fmt.Errorf("unknown category %q", q.Category)
	}
	if q.Label == "" {
		return fmt.Errorf("label is required")
	}
	return nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
