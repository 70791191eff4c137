package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/confreg/tier-reporting/internal/model"
)

func noon(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 17, 0, 0, 0, time.UTC)
}

func testEvent() *model.Event {
	return &model.Event{
		ID:   "evt-1",
		Name: "Annual Conference 2024",
		RegistrationTiers: []model.PricingTier{
			{Label: "Early", StartDate: "2024-01-01", EndDate: "2024-03-31"},
			{Label: "Regular", StartDate: "2024-04-01", EndDate: "2024-06-30"},
		},
		CompanionTiers: []model.PricingTier{
			{Label: "Companion Early", StartDate: "2024-01-01", EndDate: "2024-03-31"},
			{Label: "Companion Regular", StartDate: "2024-04-01", EndDate: "2024-06-30"},
		},
		DependentTiers: []model.PricingTier{
			{Label: "Kids-Tier-A", StartDate: "2024-01-01", EndDate: "2024-06-30"},
		},
	}
}

func TestAggregateCounts(t *testing.T) {
	companionAt := noon(2024, 5, 2)
	regs := []model.Registrant{
		{ID: "1", LastName: "Ada", CreatedAt: noon(2024, 2, 1)},
		{ID: "2", LastName: "Bell", CreatedAt: noon(2024, 4, 10)},
		{ID: "3", LastName: "Cox", CreatedAt: noon(2024, 2, 20), HasCompanion: true},
		{ID: "4", LastName: "Day", CreatedAt: noon(2024, 2, 25), HasCompanion: true, CompanionAddedAt: &companionAt},
		{ID: "5", LastName: "Ely", CreatedAt: noon(2024, 3, 5), DependentCount: 2},
		{ID: "6", LastName: "Fox", CreatedAt: noon(2024, 2, 1), RegistrationTier: "Sponsor"},
	}

	s := Aggregate(testEvent(), regs)

	require.Equal(t, TierCounts{"Early": 4, "Regular": 1, "Sponsor": 1}, s.Registration)
	require.Equal(t, TierCounts{"Companion Early": 1, "Companion Regular": 1}, s.Companion)
	require.Equal(t, TierCounts{"Kids-Tier-A": 1}, s.Dependent)
}

func TestAggregateSumMatchesEligibleRegistrants(t *testing.T) {
	regs := []model.Registrant{
		{ID: "1", CreatedAt: noon(2024, 2, 1)},
		{ID: "2", CreatedAt: noon(2023, 1, 1)}, // clamps low
		{ID: "3", CreatedAt: noon(2025, 1, 1)}, // clamps high
		{ID: "4"},                              // no usable instant, sentinel
		{ID: "5", CreatedAt: noon(2024, 5, 1), HasCompanion: true},
	}
	s := Aggregate(testEvent(), regs)

	total := 0
	for _, n := range s.Registration {
		total += n
	}
	require.Equal(t, len(regs), total)

	companions := 0
	for _, n := range s.Companion {
		companions += n
	}
	require.Equal(t, 1, companions)
}

func TestAggregateSkipsCancelledForCategories(t *testing.T) {
	regs := []model.Registrant{
		{ID: "1", CreatedAt: noon(2024, 2, 1)},
		{ID: "2", CreatedAt: noon(2024, 2, 1), Cancelled: true},
	}
	s := Aggregate(testEvent(), regs)
	require.Equal(t, TierCounts{"Early": 1}, s.Registration)
}

func TestAggregateFoldsDiscountCodes(t *testing.T) {
	regs := []model.Registrant{
		{ID: "1", CreatedAt: noon(2024, 2, 1), DiscountCode: "save10 "},
		{ID: "2", CreatedAt: noon(2024, 2, 1), DiscountCode: "SAVE10"},
		{ID: "3", CreatedAt: noon(2024, 2, 1), DiscountCode: "  "},
		{ID: "4", CreatedAt: noon(2024, 2, 1), DiscountCode: "speaker", Cancelled: true},
	}
	s := Aggregate(testEvent(), regs)
	require.Equal(t, map[string]int{"SAVE10": 2, "SPEAKER": 1}, s.Discounts)
}
