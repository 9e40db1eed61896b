package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Issue kinds reported by Lint.
const (
	IssueTierOverlap     = "tier_overlap"
	IssueTierGap         = "tier_gap"
	IssueTierUnanchored  = "tier_unanchored_per_kg"
	IssueTierBandInvalid = "tier_band_invalid"
	IssueLabelDuplicate  = "label_range_duplicate"
	IssueLabelBound      = "label_range_bound_invalid"
	IssueSettingsInvalid = "settings_invalid"
)

// Issue describes a catalog configuration problem found by Lint.
type Issue struct {
	Kind       string `json:"kind"`
	CategoryID string `json:"categoryId,omitempty"`
	Message    string `json:"message"`
}

// Lint checks the catalog invariants the pricing engine deliberately does
// not assume: tiers per category must form a contiguous non-overlapping
// partition of [0, max_total_kg], per-kg tiers must sit on top of a flat
// base, and label range bounds must be positive and distinct. The engine
// stays defensive either way; Lint exists so admins find the data problem
// before a customer does.
func Lint(snap Snapshot) []Issue {
	var issues []Issue

	for _, c := range snap.Categories {
		issues = append(issues, lintCategoryTiers(c, snap.TiersFor(c.ID), snap.Settings.MaxTotalKg)...)
	}

	seenBounds := map[int]bool{}
	for _, r := range snap.RangesAscending() {
		if r.UpperBound <= 0 {
			issues = append(issues, Issue{
				Kind:    IssueLabelBound,
				Message: fmt.Sprintf("label range %s has non-positive upper bound %d", r.ID, r.UpperBound),
			})
			continue
		}
		if seenBounds[r.UpperBound] {
			issues = append(issues, Issue{
				Kind:    IssueLabelDuplicate,
				Message: fmt.Sprintf("duplicate label range upper bound %d", r.UpperBound),
			})
		}
		seenBounds[r.UpperBound] = true
	}

	if snap.Settings.MaxTotalKg.Sign() <= 0 {
		issues = append(issues, Issue{
			Kind:    IssueSettingsInvalid,
			Message: "max_total_kg must be positive",
		})
	}
	if snap.Settings.LabelsMarkupMultiplier.Sign() <= 0 {
		issues = append(issues, Issue{
			Kind:    IssueSettingsInvalid,
			Message: "labels_markup_multiplier must be positive",
		})
	}

	return issues
}

func lintCategoryTiers(c Category, tiers []WeightTier, maxTotalKg decimal.Decimal) []Issue {
	if len(tiers) == 0 {
		return []Issue{{
			Kind:       IssueTierGap,
			CategoryID: c.ID,
			Message:    fmt.Sprintf("category %q has no weight tiers", c.Name),
		}}
	}

	sorted := make([]WeightTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinKg.Cmp(sorted[j].MinKg) < 0 })

	var issues []Issue
	for _, t := range sorted {
		if t.MaxKg.Cmp(t.MinKg) <= 0 {
			issues = append(issues, Issue{
				Kind:       IssueTierBandInvalid,
				CategoryID: c.ID,
				Message:    fmt.Sprintf("tier %s has empty band [%s, %s]", t.ID, t.MinKg, t.MaxKg),
			})
		}
		if t.PerKg && !hasFlatBase(sorted, t) {
			issues = append(issues, Issue{
				Kind:       IssueTierUnanchored,
				CategoryID: c.ID,
				Message:    fmt.Sprintf("per-kg tier %s has no flat tier ending at or below %s kg; its base price resolves to 0", t.ID, t.MinKg),
			})
		}
	}

	if sorted[0].MinKg.Sign() > 0 {
		issues = append(issues, Issue{
			Kind:       IssueTierGap,
			CategoryID: c.ID,
			Message:    fmt.Sprintf("weights below %s kg are not covered", sorted[0].MinKg),
		})
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		switch cmp := cur.MinKg.Cmp(prev.MaxKg); {
		case cmp < 0:
			issues = append(issues, Issue{
				Kind:       IssueTierOverlap,
				CategoryID: c.ID,
				Message:    fmt.Sprintf("tiers %s and %s overlap between %s and %s kg", prev.ID, cur.ID, cur.MinKg, prev.MaxKg),
			})
		case cmp > 0:
			issues = append(issues, Issue{
				Kind:       IssueTierGap,
				CategoryID: c.ID,
				Message:    fmt.Sprintf("weights between %s and %s kg are not covered", prev.MaxKg, cur.MinKg),
			})
		}
	}
	last := sorted[len(sorted)-1]
	if maxTotalKg.Sign() > 0 && last.MaxKg.Cmp(maxTotalKg) < 0 {
		issues = append(issues, Issue{
			Kind:       IssueTierGap,
			CategoryID: c.ID,
			Message:    fmt.Sprintf("weights between %s and %s kg (order cap) are not covered", last.MaxKg, maxTotalKg),
		})
	}
	return issues
}

func hasFlatBase(tiers []WeightTier, perKg WeightTier) bool {
	for _, t := range tiers {
		if t.PerKg || t.ID == perKg.ID {
			continue
		}
		if t.MaxKg.Cmp(perKg.MinKg) <= 0 {
			return true
		}
	}
	return false
}
