// Package catalog holds the default hotel and resort channel catalog and the
// value operations used to edit a channel list.
package catalog

import "github.com/iwvelando/budget-optimizer/internal/config"

// Default plan values used by WritePlan.
const (
	DefaultTotalBudget       = 250000.0
	DefaultContentLiftPer10k = 0.05
)

// Defaults returns a fresh copy of the standard channel catalog for a hotel
// or resort property.
func Defaults() []config.Channel {
	return []config.Channel{
		{ID: "paid_search_nonbrand", Name: "Paid Search (Non-Brand)", BaseReturn: 4.0, SaturationSpend: 50000, MaxSpend: config.SpendLimit(999999), MaxPercent: 1, Incrementality: 0.9, ADRUplift: 0.9, OccUplift: 1.0, AwarenessScore: 0.6},
		{ID: "paid_search_brand", Name: "Paid Search (Brand)", BaseReturn: 7.0, SaturationSpend: 15000, MaxSpend: config.SpendLimit(30000), MaxPercent: 0.25, Incrementality: 0.4, ADRUplift: 0.7, OccUplift: 0.7, AwarenessScore: 0.2},
		{ID: "metasearch", Name: "Metasearch", BaseReturn: 6.0, SaturationSpend: 30000, MaxSpend: config.SpendLimit(80000), MinPercent: 0.05, MaxPercent: 0.35, Incrementality: 0.8, ADRUplift: 0.8, OccUplift: 0.9, AwarenessScore: 0.4},
		{ID: "paid_social", Name: "Paid Social", BaseReturn: 3.0, SaturationSpend: 40000, MaxSpend: config.SpendLimit(120000), MaxPercent: 0.5, Incrementality: 0.85, AffectedByContent: true, ADRUplift: 1.1, OccUplift: 1.0, AwarenessScore: 1.2},
		{ID: "ott_ctv", Name: "OTT / CTV", BaseReturn: 2.5, SaturationSpend: 80000, MaxSpend: config.SpendLimit(200000), MaxPercent: 0.6, Incrementality: 0.6, AffectedByContent: true, ADRUplift: 1.0, OccUplift: 0.9, AwarenessScore: 1.4},
		{ID: "programmatic", Name: "Programmatic Display/Video", BaseReturn: 2.2, SaturationSpend: 50000, MaxSpend: config.SpendLimit(150000), MaxPercent: 0.5, Incrementality: 0.7, AffectedByContent: true, ADRUplift: 1.0, OccUplift: 1.0, AwarenessScore: 1.0},
		{ID: "influencers", Name: "Influencers / UGC", BaseReturn: 2.0, SaturationSpend: 25000, MaxSpend: config.SpendLimit(60000), MaxPercent: 0.25, Incrementality: 0.6, AffectedByContent: true, ADRUplift: 1.1, OccUplift: 0.9, AwarenessScore: 1.3},
		{ID: "email_crm", Name: "Email / CRM", BaseReturn: 8.0, SaturationSpend: 10000, MaxSpend: config.SpendLimit(40000), MaxPercent: 0.2, Incrementality: 0.3, ADRUplift: 0.9, OccUplift: 0.8, AwarenessScore: 0.2},
		{ID: "content", Name: "Content Production (Assist)", BaseReturn: 0.8, SaturationSpend: 40000, MaxSpend: config.SpendLimit(100000), MaxPercent: 0.25, Incrementality: 0.2, ADRUplift: 1.0, OccUplift: 1.0, AwarenessScore: 1.2},
	}
}

// Template returns the calibration given to a newly added channel.
func Template(id, name string) config.Channel {
	return config.Channel{
		ID:              id,
		Name:            name,
		BaseReturn:      2.0,
		SaturationSpend: 30000,
		MaxSpend:        config.SpendLimit(100000),
		MaxPercent:      1,
		Incrementality:  0.7,
		ADRUplift:       1.0,
		OccUplift:       1.0,
		AwarenessScore:  1.0,
	}
}
