// Package repository implements all database queries for the tier
// reporting system. It uses pgx directly (no ORM) for transparency and
// performance. Tier tables are stored as JSONB columns on the event row
// so a malformed or overlapping configuration round-trips untouched;
// the resolver, not the database, decides what it means.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confreg/tier-reporting/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventRepository handles persistence for events and their tier tables.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:                uuid.New().String(),
		Name:              req.Name,
		RegistrationTiers: req.RegistrationTiers,
		CompanionTiers:    req.CompanionTiers,
		DependentTiers:    req.DependentTiers,
		CreatedAt:         time.Now().UTC(),
	}

	regTiers, compTiers, depTiers, err := marshalTiers(event)
	if err != nil {
		return nil, err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO events (id, name, registration_tiers, companion_tiers, dependent_tiers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Name, regTiers, compTiers, depTiers, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, registration_tiers, companion_tiers, dependent_tiers, created_at
		 FROM events
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, registration_tiers, companion_tiers, dependent_tiers, created_at
		 FROM events WHERE id = $1`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func marshalTiers(e *model.Event) (reg, comp, dep []byte, err error) {
	if reg, err = json.Marshal(tiersOrEmpty(e.RegistrationTiers)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal registration tiers: %w", err)
	}
	if comp, err = json.Marshal(tiersOrEmpty(e.CompanionTiers)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal companion tiers: %w", err)
	}
	if dep, err = json.Marshal(tiersOrEmpty(e.DependentTiers)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal dependent tiers: %w", err)
	}
	return reg, comp, dep, nil
}

func tiersOrEmpty(tiers []model.PricingTier) []model.PricingTier {
	if tiers == nil {
		return []model.PricingTier{}
	}
	return tiers
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var regTiers, compTiers, depTiers []byte
	if err := row.Scan(&e.ID, &e.Name, &regTiers, &compTiers, &depTiers, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(regTiers, &e.RegistrationTiers); err != nil {
		return nil, fmt.Errorf("decode registration tiers: %w", err)
	}
	if err := json.Unmarshal(compTiers, &e.CompanionTiers); err != nil {
		return nil, fmt.Errorf("decode companion tiers: %w", err)
	}
	if err := json.Unmarshal(depTiers, &e.DependentTiers); err != nil {
		return nil, fmt.Errorf("decode dependent tiers: %w", err)
	}
	return &e, nil
}

// RegistrantRepository handles persistence for registration snapshots.
type RegistrantRepository struct {
	db *pgxpool.Pool
}

// NewRegistrantRepository constructs a RegistrantRepository.
func NewRegistrantRepository(db *pgxpool.Pool) *RegistrantRepository {
	return &RegistrantRepository{db: db}
}

const registrantColumns = `id, event_id, badge_name, first_name, last_name, email, organization, mobile,
	has_companion, companion_first_name, companion_last_name, dependent_count,
	created_at, companion_added_at, dependent_added_at,
	registration_tier, companion_tier, dependent_tier,
	cancelled, discount_code, discount_amount, waitlisted_activities`

// Create inserts a registration snapshot and returns it with a
// generated UUID.
func (r *RegistrantRepository) Create(ctx context.Context, eventID string, req model.AddRegistrantRequest) (*model.Registrant, error) {
	reg := &model.Registrant{
		ID:                   uuid.New().String(),
		EventID:              eventID,
		BadgeName:            req.BadgeName,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Organization:         req.Organization,
		Mobile:               req.Mobile,
		HasCompanion:         req.HasCompanion,
		CompanionFirstName:   req.CompanionFirstName,
		CompanionLastName:    req.CompanionLastName,
		DependentCount:       req.DependentCount,
		CreatedAt:            time.Now().UTC(),
		CompanionAddedAt:     req.CompanionAddedAt,
		DependentAddedAt:     req.DependentAddedAt,
		RegistrationTier:     req.RegistrationTier,
		CompanionTier:        req.CompanionTier,
		DependentTier:        req.DependentTier,
		Cancelled:            req.Cancelled,
		DiscountCode:         req.DiscountCode,
		DiscountAmount:       req.DiscountAmount,
		WaitlistedActivities: req.WaitlistedActivities,
	}
	if reg.WaitlistedActivities == nil {
		reg.WaitlistedActivities = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO registrants (`+registrantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		reg.ID, reg.EventID, reg.BadgeName, reg.FirstName, reg.LastName, reg.Email, reg.Organization, reg.Mobile,
		reg.HasCompanion, reg.CompanionFirstName, reg.CompanionLastName, reg.DependentCount,
		reg.CreatedAt, reg.CompanionAddedAt, reg.DependentAddedAt,
		reg.RegistrationTier, reg.CompanionTier, reg.DependentTier,
		reg.Cancelled, reg.DiscountCode, reg.DiscountAmount, reg.WaitlistedActivities,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registrant: %w", err)
	}
	return reg, nil
}

// ListByEvent returns the full registrant snapshot for an event in
// creation order. This is the collection every aggregation and lookup
// pass runs over.
func (r *RegistrantRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrantColumns+`
		 FROM registrants
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var regs []model.Registrant
	for rows.Next() {
		reg, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// GetByID returns a single registrant or ErrNotFound.
func (r *RegistrantRepository) GetByID(ctx context.Context, id string) (*model.Registrant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+registrantColumns+` FROM registrants WHERE id = $1`,
		id,
	)
	reg, err := scanRegistrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	return reg, nil
}

func scanRegistrant(row pgx.Row) (*model.Registrant, error) {
	var reg model.Registrant
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.BadgeName, &reg.FirstName, &reg.LastName, &reg.Email, &reg.Organization, &reg.Mobile,
		&reg.HasCompanion, &reg.CompanionFirstName, &reg.CompanionLastName, &reg.DependentCount,
		&reg.CreatedAt, &reg.CompanionAddedAt, &reg.DependentAddedAt,
		&reg.RegistrationTier, &reg.CompanionTier, &reg.DependentTier,
		&reg.Cancelled, &reg.DiscountCode, &reg.DiscountAmount, &reg.WaitlistedActivities,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
