package catalog

import "sort"

// Snapshot is a read-only view of the catalog as of a single calculation
// call. Lookups never mutate it, so a snapshot may be shared across
// concurrent calculations.
type Snapshot struct {
	Categories  []Category        `json:"categories"`
	Packaging   []PackagingOption `json:"packaging"`
	Tiers       []WeightTier      `json:"tiers"`
	LabelRanges []LabelRange      `json:"labelRanges"`
	Settings    Settings          `json:"settings"`
}

// Category finds a category by id.
func (s Snapshot) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// PackagingOption finds a packaging option by id.
func (s Snapshot) PackagingOption(id string) (PackagingOption, bool) {
	for _, o := range s.Packaging {
		if o.ID == id {
			return o, true
		}
	}
	return PackagingOption{}, false
}

// TiersFor returns the weight tiers configured for the category.
func (s Snapshot) TiersFor(categoryID string) []WeightTier {
	var out []WeightTier
	for _, t := range s.Tiers {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// RangesAscending returns the label ranges sorted by ascending upper bound.
func (s Snapshot) RangesAscending() []LabelRange {
	out := make([]LabelRange, len(s.LabelRanges))
	copy(out, s.LabelRanges)
	sort.Slice(out, func(i, j int) bool { return out[i].UpperBound < out[j].UpperBound })
	return out
}
