package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confreg/tier-reporting/internal/model"
)

func lookupRegistrants() []model.Registrant {
	return []model.Registrant{
		{ID: "1", BadgeName: "GH", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil", Organization: "US Navy", CreatedAt: noon(2024, 2, 1)},
		{ID: "2", FirstName: "Alan", LastName: "Turing", Email: "alan@bletchley.uk", Organization: "GCHQ", CreatedAt: noon(2024, 2, 10)},
		{ID: "3", FirstName: "Ada", LastName: "Lovelace", Email: "ada@analytical.org", CreatedAt: noon(2024, 5, 1)},
		{ID: "4", FirstName: "Edsger", LastName: "Dijkstra", Email: "ewd@utexas.edu", CreatedAt: noon(2024, 2, 15), Cancelled: true, DiscountCode: "save10"},
		{ID: "5", FirstName: "Barbara", LastName: "Liskov", Email: "bl@mit.edu", CreatedAt: noon(2024, 2, 20), HasCompanion: true,
			CompanionFirstName: "Nathan", CompanionLastName: "Liskov", DiscountCode: "SAVE10 "},
	}
}

func TestLookupByLabel(t *testing.T) {
	got := Lookup(testEvent(), lookupRegistrants(), Query{
		Category: model.CategoryRegistration,
		Label:    "Early",
	})
	// Dijkstra is cancelled, Lovelace is Regular; the rest are Early,
	// ordered by last name.
	require.Len(t, got, 3)
	require.Equal(t, "Hopper", got[0].LastName)
	require.Equal(t, "Liskov", got[1].LastName)
	require.Equal(t, "Turing", got[2].LastName)
}

func TestLookupFreeTextNarrows(t *testing.T) {
	event := testEvent()
	regs := lookupRegistrants()
	base := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early"})

	queries := []string{"g", "gr", "gra", "grace"}
	prev := len(base)
	for _, q := range queries {
		got := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early", Text: q})
		require.LessOrEqual(t, len(got), prev, "query %q must not expand the result", q)
		prev = len(got)
	}
	final := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early", Text: "grace"})
	require.Len(t, final, 1)
	require.Equal(t, "Hopper", final[0].LastName)
}

func TestLookupMatchesAcrossIdentityFields(t *testing.T) {
	event := testEvent()
	regs := lookupRegistrants()

	byOrg := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early", Text: "navy"})
	require.Len(t, byOrg, 1)
	require.Equal(t, "1", byOrg[0].ID)

	byEmail := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early", Text: "bletchley"})
	require.Len(t, byEmail, 1)
	require.Equal(t, "2", byEmail[0].ID)
}

func TestLookupCompanionSearchesCompanionNames(t *testing.T) {
	event := testEvent()
	regs := lookupRegistrants()

	got := Lookup(event, regs, Query{Category: model.CategoryCompanion, Label: "Companion Early", Text: "nathan"})
	require.Len(t, got, 1)
	require.Equal(t, "5", got[0].ID)

	// Companion names are not searched for registration lookups.
	none := Lookup(event, regs, Query{Category: model.CategoryRegistration, Label: "Early", Text: "nathan"})
	require.Empty(t, none)
}

func TestLookupByDiscountCode(t *testing.T) {
	got := Lookup(testEvent(), lookupRegistrants(), Query{Code: " save10"})
	// Code lookups include cancelled registrants and fold case.
	require.Len(t, got, 2)
	require.Equal(t, "Dijkstra", got[0].LastName)
	require.Equal(t, "Liskov", got[1].LastName)
}

func TestLookupNoMatches(t *testing.T) {
	got := Lookup(testEvent(), lookupRegistrants(), Query{
		Category: model.CategoryDependent,
		Label:    "Kids-Tier-A",
	})
	require.Empty(t, got)
}
