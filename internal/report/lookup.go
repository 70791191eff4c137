package report

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/confreg/tier-reporting/internal/model"
	"github.com/confreg/tier-reporting/internal/tier"
)

// Query selects the registrants behind one aggregated count: either a
// (category, label) pair or, when Code is set, a discount code. Text
// optionally narrows the result by substring match over identity
// fields.
type Query struct {
	Category model.Category
	Label    string
	Code     string
	Text     string
}

// Lookup returns the registrants matching q, ordered by last name then
// first name, ties keeping their original collection order. A query
// that matches nothing returns an empty result, never an error.
func Lookup(event *model.Event, regs []model.Registrant, q Query) []model.Registrant {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	code := NormalizeCode(q.Code)

	var out []model.Registrant
	for i := range regs {
		reg := &regs[i]
		if code != "" {
			if NormalizeCode(reg.DiscountCode) != code {
				continue
			}
		} else {
			if reg.Cancelled || !reg.EligibleFor(q.Category) {
				continue
			}
			if tier.Attribute(reg, q.Category, event.Tiers(q.Category)).Label != q.Label {
				continue
			}
		}
		if text != "" && !matchesText(reg, q.Category, text) {
			continue
		}
		out = append(out, *reg)
	}
	sortByName(out)
	return out
}

// matchesText checks the lowercased identity fields for the query as a
// substring. Companion lookups also search the companion's name.
func matchesText(reg *model.Registrant, c model.Category, text string) bool {
	fields := []string{reg.BadgeName, reg.FirstName, reg.LastName, reg.Email, reg.Organization}
	if c == model.CategoryCompanion {
		fields = append(fields, reg.CompanionFirstName, reg.CompanionLastName)
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), text)
}

func sortByName(regs []model.Registrant) {
	// Collators carry an internal buffer, so build one per sort rather
	// than sharing across requests.
	col := collate.New(language.English)
	sort.SliceStable(regs, func(i, j int) bool {
		if c := col.CompareString(regs[i].LastName, regs[j].LastName); c != 0 {
			return c < 0
		}
		return col.CompareString(regs[i].FirstName, regs[j].FirstName) < 0
	})
}
