package tier

import "github.com/confreg/tier-reporting/internal/model"

// Source records which path produced an attribution, for auditing.
type Source string

const (
	SourceStored   Source = "stored"
	SourceInferred Source = "inferred"
)

// Attribution is the effective tier label for one registrant in one
// pricing category. It is derived on every pass and never persisted.
type Attribution struct {
	Label  string `json:"label"`
	Source Source `json:"source"`
}

// Attribute derives the effective label for reg in category c.
//
// A stored label always wins over live resolution: operators edit tier
// boundaries after registrants have been charged under the old
// schedule, and historical attribution must not drift for anyone whose
// label was written at registration time. Only registrants without a
// stored label are resolved against the current tier table.
func Attribute(reg *model.Registrant, c model.Category, tiers []model.PricingTier) Attribution {
	if stored := reg.StoredTier(c); stored != "" {
		return Attribution{Label: stored, Source: SourceStored}
	}
	label := Resolve(tiers, reg.ReferenceTime(c))
	if label == "" {
		label = model.TierNA
	}
	return Attribution{Label: label, Source: SourceInferred}
}
