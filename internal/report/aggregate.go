// Package report builds aggregated tier counts and filtered registrant
// lookups from a snapshot of an event and its registrants. Everything
// here is a pure function of its inputs; the caller decides when to
// recompute by supplying a fresh snapshot.
package report

import (
	"strings"

	"github.com/confreg/tier-reporting/internal/model"
	"github.com/confreg/tier-reporting/internal/tier"
)

// TierCounts maps an effective tier label to the number of registrants
// attributed to it.
type TierCounts map[string]int

// Summary is one full aggregation pass over an event's registrants.
// Within each category every eligible registrant lands on exactly one
// label (the sentinel "N/A" included), so a category's counts always
// sum to its eligible registrant count.
type Summary struct {
	Registration TierCounts     `json:"registration"`
	Companion    TierCounts     `json:"companion"`
	Dependent    TierCounts     `json:"dependent"`
	Discounts    map[string]int `json:"discounts"`
}

// Counts returns the label counts for the given category.
func (s *Summary) Counts(c model.Category) TierCounts {
	switch c {
	case model.CategoryCompanion:
		return s.Companion
	case model.CategoryDependent:
		return s.Dependent
	default:
		return s.Registration
	}
}

// Aggregate recomputes the summary from scratch.
//
// Category counts cover eligible, non-cancelled registrants. Discount
// usage counts every non-empty code ever entered, cancelled
// registrations included, folded case-insensitively.
func Aggregate(event *model.Event, regs []model.Registrant) *Summary {
	s := &Summary{
		Registration: TierCounts{},
		Companion:    TierCounts{},
		Dependent:    TierCounts{},
		Discounts:    map[string]int{},
	}
	for i := range regs {
		reg := &regs[i]
		if !reg.Cancelled {
			for _, c := range model.Categories {
				if !reg.EligibleFor(c) {
					continue
				}
				att := tier.Attribute(reg, c, event.Tiers(c))
				s.Counts(c)[att.Label]++
			}
		}
		if code := NormalizeCode(reg.DiscountCode); code != "" {
			s.Discounts[code]++
		}
	}
	return s
}

// NormalizeCode folds a discount code for counting and comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
