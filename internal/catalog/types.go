package catalog

import "github.com/shopspring/decimal"

// Category identifies a product line (wedding candy, custom text, branded).
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PackagingOption represents a purchasable container/quantity unit.
type PackagingOption struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	Size               string          `json:"size"`
	CandyWeightG       int             `json:"candyWeightG"`
	AllowedCategoryIDs []string        `json:"allowedCategoryIds"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	MaxPackages        int             `json:"maxPackages"`
}

// AllowsCategory reports whether the option may be sold under the category.
func (o PackagingOption) AllowsCategory(categoryID string) bool {
	for _, id := range o.AllowedCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// WeightTier is a priced weight band for a category. A tier with PerKg set
// represents an incremental rate applied to the weight falling inside the
// band, on top of the preceding flat tier's price.
type WeightTier struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"categoryId"`
	MinKg      decimal.Decimal `json:"minKg"`
	MaxKg      decimal.Decimal `json:"maxKg"`
	Price      decimal.Decimal `json:"price"`
	PerKg      bool            `json:"perKg"`
	Notes      string          `json:"notes,omitempty"`
}

// LabelRange is a banded cost-per-label rule: the smallest UpperBound that is
// >= the requested label count selects the per-label cost.
type LabelRange struct {
	ID         string          `json:"id"`
	UpperBound int             `json:"upperBound"`
	RangeCost  decimal.Decimal `json:"rangeCost"`
}

// Settings holds the global pricing constants and order-wide caps. It is
// stored as a single row and passed to each calculation as an immutable value.
type Settings struct {
	MaxTotalKg             decimal.Decimal `json:"maxTotalKg"`
	LeadTimeDays           int             `json:"leadTimeDays"`
	UrgencyFee             decimal.Decimal `json:"urgencyFee"`
	TransactionFeePercent  decimal.Decimal `json:"transactionFeePercent"`
	JacketRainbow          decimal.Decimal `json:"jacketRainbow"`
	JacketTwoColour        decimal.Decimal `json:"jacketTwoColour"`
	JacketPinstripe        decimal.Decimal `json:"jacketPinstripe"`
	LabelsSupplierShipping decimal.Decimal `json:"labelsSupplierShipping"`
	LabelsMarkupMultiplier decimal.Decimal `json:"labelsMarkupMultiplier"`
	LabelsMaxBulk          int             `json:"labelsMaxBulk"`
}
