// Package model defines the core domain types for the tier reporting system.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierNA is the sentinel label for registrants that cannot be placed in
// any configured tier.
const TierNA = "N/A"

// Category identifies one of the three independent pricing categories.
type Category string

const (
	CategoryRegistration Category = "registration"
	CategoryCompanion    Category = "companion"
	CategoryDependent    Category = "dependent"
)

// Categories lists every pricing category in aggregation order.
var Categories = []Category{CategoryRegistration, CategoryCompanion, CategoryDependent}

// Valid reports whether c names a known pricing category.
func (c Category) Valid() bool {
	switch c {
	case CategoryRegistration, CategoryCompanion, CategoryDependent:
		return true
	}
	return false
}

// PricingTier is one labeled date range in a category's tier table.
// Boundaries are stored as civil date strings (YYYY-MM-DD, or a longer
// ISO string whose date part is used); a missing boundary leaves the
// range open on that side. Nothing here enforces ordering or
// non-overlap, the resolver tolerates both.
type PricingTier struct {
	Label     string          `json:"label,omitempty"`
	Price     decimal.Decimal `json:"price"`
	StartDate string          `json:"start_date,omitempty"`
	EndDate   string          `json:"end_date,omitempty"`
}

// Event represents one event with up to three independent tier tables.
type Event struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	RegistrationTiers []PricingTier `json:"registration_tiers,omitempty"`
	CompanionTiers    []PricingTier `json:"companion_tiers,omitempty"`
	DependentTiers    []PricingTier `json:"dependent_tiers,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Tiers returns the tier table for the given category.
func (e *Event) Tiers(c Category) []PricingTier {
	switch c {
	case CategoryCompanion:
		return e.CompanionTiers
	case CategoryDependent:
		return e.DependentTiers
	default:
		return e.RegistrationTiers
	}
}

// Registrant is a read-only snapshot of one registration record as
// supplied by the registration backend.
type Registrant struct {
	ID           string `json:"id"`
	EventID      string `json:"event_id"`
	BadgeName    string `json:"badge_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile,omitempty"`

	HasCompanion       bool   `json:"has_companion"`
	CompanionFirstName string `json:"companion_first_name,omitempty"`
	CompanionLastName  string `json:"companion_last_name,omitempty"`
	DependentCount     int    `json:"dependent_count"`

	CreatedAt        time.Time  `json:"created_at"`
	CompanionAddedAt *time.Time `json:"companion_added_at,omitempty"`
	DependentAddedAt *time.Time `json:"dependent_added_at,omitempty"`

	// Stored tier labels written by the pricing computation at
	// registration time. Authoritative when non-empty.
	RegistrationTier string `json:"registration_tier,omitempty"`
	CompanionTier    string `json:"companion_tier,omitempty"`
	DependentTier    string `json:"dependent_tier,omitempty"`

	Cancelled      bool            `json:"cancelled"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`

	WaitlistedActivities []string `json:"waitlisted_activities,omitempty"`
}

// EligibleFor reports whether the registrant participates in category c.
func (r *Registrant) EligibleFor(c Category) bool {
	switch c {
	case CategoryCompanion:
		return r.HasCompanion
	case CategoryDependent:
		return r.DependentCount > 0
	default:
		return true
	}
}

// StoredTier returns the label recorded for c at registration time, or
// "" when none was stored.
func (r *Registrant) StoredTier(c Category) string {
	switch c {
	case CategoryCompanion:
		return r.CompanionTier
	case CategoryDependent:
		return r.DependentTier
	default:
		return r.RegistrationTier
	}
}

// ReferenceTime returns the instant used to place the registrant in
// c's tier table: the add-on time when one was recorded, otherwise the
// registration creation time.
func (r *Registrant) ReferenceTime(c Category) time.Time {
	switch c {
	case CategoryCompanion:
		if r.CompanionAddedAt != nil {
			return *r.CompanionAddedAt
		}
	case CategoryDependent:
		if r.DependentAddedAt != nil {
			return *r.DependentAddedAt
		}
	}
	return r.CreatedAt
}

// WaitlistedFor reports whether the registrant is on the waitlist for
// the named activity.
func (r *Registrant) WaitlistedFor(activity string) bool {
	for _, a := range r.WaitlistedActivities {
		if a == activity {
			return true
		}
	}
	return false
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name              string        `json:"name"`
	RegistrationTiers []PricingTier `json:"registration_tiers,omitempty"`
	CompanionTiers    []PricingTier `json:"companion_tiers,omitempty"`
	DependentTiers    []PricingTier `json:"dependent_tiers,omitempty"`
}

// AddRegistrantRequest is the payload for recording a registration
// snapshot against an event.
type AddRegistrantRequest struct {
	BadgeName    string `json:"badge_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile,omitempty"`

	HasCompanion       bool   `json:"has_companion"`
	CompanionFirstName string `json:"companion_first_name,omitempty"`
	CompanionLastName  string `json:"companion_last_name,omitempty"`
	DependentCount     int    `json:"dependent_count"`

	CompanionAddedAt *time.Time `json:"companion_added_at,omitempty"`
	DependentAddedAt *time.Time `json:"dependent_added_at,omitempty"`

	RegistrationTier string `json:"registration_tier,omitempty"`
	CompanionTier    string `json:"companion_tier,omitempty"`
	DependentTier    string `json:"dependent_tier,omitempty"`

	Cancelled      bool            `json:"cancelled"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`

	WaitlistedActivities []string `json:"waitlisted_activities,omitempty"`
}

// PromoteRequest is the payload for promoting a registrant out of the
// waitlist for one activity.
type PromoteRequest struct {
	Activity string `json:"activity"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
