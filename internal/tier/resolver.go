// Package tier maps registrant instants onto pricing-tier labels and
// derives the effective label used for aggregation and reporting.
package tier

import (
	"sort"
	"time"

	"github.com/confreg/tier-reporting/internal/civdate"
	"github.com/confreg/tier-reporting/internal/model"
)

// Open-ended boundaries widen to the extremes of the zero-padded date
// space so that a tier missing a start or end still matches.
const (
	openStart = "0000-01-01"
	openEnd   = "9999-12-31"
)

type span struct {
	label string
	start string
	end   string
}

// Resolve maps an instant onto the label of the applicable tier.
//
// Tiers are canonicalized (missing labels become "N/A", missing
// boundaries open the range) and sorted ascending by start date. The
// first tier whose inclusive range contains the civil date wins, which
// is the tie-break for overlapping configurations. An instant before
// every configured range clamps to the first tier, one after every
// range clamps to the last; registrants imported before tiers were
// configured, or arriving after the final tier closes, still land on a
// sensible boundary tier. A date inside a gap between tiers stays
// unclassified as "N/A".
func Resolve(tiers []model.PricingTier, instant time.Time) string {
	if len(tiers) == 0 {
		return model.TierNA
	}
	ymd := civdate.Civil(instant)
	if ymd == "" {
		return model.TierNA
	}

	spans := make([]span, 0, len(tiers))
	for _, t := range tiers {
		s := span{
			label: t.Label,
			start: civdate.Boundary(t.StartDate),
			end:   civdate.Boundary(t.EndDate),
		}
		if s.label == "" {
			s.label = model.TierNA
		}
		if s.start == "" {
			s.start = openStart
		}
		if s.end == "" {
			s.end = openEnd
		}
		spans = append(spans, s)
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	for _, s := range spans {
		if s.start <= ymd && ymd <= s.end {
			return s.label
		}
	}

	if ymd < spans[0].start {
		return spans[0].label
	}
	latest := spans[0].end
	for _, s := range spans[1:] {
		if s.end > latest {
			latest = s.end
		}
	}
	if ymd > latest {
		return spans[len(spans)-1].label
	}
	return model.TierNA
}
