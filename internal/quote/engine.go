package quote

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gulali-id/backend-gulali/internal/catalog"
)

// Pricing failures. The first four are caller input errors; the last three
// indicate a catalog configuration gap and should reach operators, not just
// the customer.
var (
	ErrInvalidCategory         = errors.New("unknown category")
	ErrPackagingNotAllowed     = errors.New("packaging option not allowed for category")
	ErrQuantityOutOfRange      = errors.New("packaging quantity out of range")
	ErrWeightLimitExceeded     = errors.New("total weight exceeds order limit")
	ErrNoMatchingTier          = errors.New("no weight tier covers the order weight")
	ErrAmbiguousTier           = errors.New("multiple weight tiers cover the order weight")
	ErrLabelCountExceedsRanges = errors.New("no label range covers the requested count")
)

// Jacket is a closed set of candy jacket styles available as extras.
type Jacket string

const (
	JacketRainbow   Jacket = "rainbow"
	JacketTwoColour Jacket = "two_colour"
	JacketPinstripe Jacket = "pinstripe"
)

// PackagingSelection pairs a packaging option with the requested quantity.
type PackagingSelection struct {
	OptionID string `json:"optionId"`
	Quantity int    `json:"quantity"`
}

// Extra is one jacket-style surcharge line. An unrecognized style prices at
// zero rather than failing the quote.
type Extra struct {
	Jacket Jacket `json:"jacket"`
}

// Request is a single quote calculation input.
type Request struct {
	CategoryID  string               `json:"categoryId"`
	Packaging   []PackagingSelection `json:"packaging"`
	LabelsCount int                  `json:"labelsCount"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
	Extras      []Extra              `json:"extras,omitempty"`
}

// LineItem is one display row of the breakdown.
type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the full priced result of a quote calculation.
type Breakdown struct {
	BasePrice      decimal.Decimal `json:"basePrice"`
	PackagingPrice decimal.Decimal `json:"packagingPrice"`
	LabelsPrice    decimal.Decimal `json:"labelsPrice"`
	ExtrasPrice    decimal.Decimal `json:"extrasPrice"`
	UrgencyFee     decimal.Decimal `json:"urgencyFee"`
	TransactionFee decimal.Decimal `json:"transactionFee"`
	Total          decimal.Decimal `json:"total"`
	TotalWeightKg  decimal.Decimal `json:"totalWeightKg"`
	Items          []LineItem      `json:"items"`
}

// Calculate prices a request against a catalog snapshot. It is a pure
// function of (snap, req, now): same inputs, same breakdown. It fails fast on
// the first violated precondition and never returns a partial result.
func Calculate(snap catalog.Snapshot, req Request, now time.Time) (Breakdown, error) {
	category, ok := snap.Category(req.CategoryID)
	if !ok {
		return Breakdown{}, ErrInvalidCategory
	}

	selections := make([]selectedOption, 0, len(req.Packaging))
	for _, sel := range req.Packaging {
		opt, ok := snap.PackagingOption(sel.OptionID)
		if !ok || !opt.AllowsCategory(category.ID) {
			return Breakdown{}, ErrPackagingNotAllowed
		}
		if sel.Quantity < 0 || sel.Quantity > opt.MaxPackages {
			return Breakdown{}, ErrQuantityOutOfRange
		}
		selections = append(selections, selectedOption{opt: opt, qty: sel.Quantity})
	}

	totalWeightKg := aggregateWeightKg(selections)
	if totalWeightKg.GreaterThan(snap.Settings.MaxTotalKg) {
		return Breakdown{}, ErrWeightLimitExceeded
	}

	basePrice, err := resolveTierPrice(snap.TiersFor(category.ID), totalWeightKg)
	if err != nil {
		return Breakdown{}, err
	}

	packagingPrice := decimal.Zero
	for _, s := range selections {
		packagingPrice = packagingPrice.Add(s.opt.UnitPrice.Mul(decimal.NewFromInt(int64(s.qty))))
	}

	labelsPrice, err := priceLabels(snap, req.LabelsCount)
	if err != nil {
		return Breakdown{}, err
	}

	extrasPrice := priceExtras(snap.Settings, req.Extras)
	urgencyFee := priceUrgency(snap.Settings, req.DueDate, now)

	subtotal := basePrice.Add(packagingPrice).Add(labelsPrice).Add(extrasPrice).Add(urgencyFee)
	transactionFee := subtotal.Mul(snap.Settings.TransactionFeePercent).Div(decimal.NewFromInt(100))
	total := subtotal.Add(transactionFee)

	return Breakdown{
		BasePrice:      basePrice,
		PackagingPrice: packagingPrice,
		LabelsPrice:    labelsPrice,
		ExtrasPrice:    extrasPrice,
		UrgencyFee:     urgencyFee,
		TransactionFee: transactionFee,
		Total:          total,
		TotalWeightKg:  totalWeightKg,
		Items: []LineItem{
			{Label: "Base", Amount: basePrice},
			{Label: "Packaging", Amount: packagingPrice},
			{Label: "Labels", Amount: labelsPrice},
			{Label: "Extras", Amount: extrasPrice},
			{Label: "Urgency", Amount: urgencyFee},
			{Label: "Transaction fee", Amount: transactionFee},
		},
	}, nil
}

type selectedOption struct {
	opt catalog.PackagingOption
	qty int
}

func aggregateWeightKg(selections []selectedOption) decimal.Decimal {
	var grams int64
	for _, s := range selections {
		grams += int64(s.opt.CandyWeightG) * int64(s.qty)
	}
	return decimal.NewFromInt(grams).Div(decimal.NewFromInt(1000))
}

// tierMatches treats bands as half-open (min, max]: a boundary weight belongs
// to the lower tier, so a contiguous partition yields exactly one match. The
// zero-weight order falls into the tier that starts at zero.
func tierMatches(t catalog.WeightTier, w decimal.Decimal) bool {
	if w.IsZero() && t.MinKg.IsZero() {
		return true
	}
	return w.GreaterThan(t.MinKg) && w.LessThanOrEqual(t.MaxKg)
}

func resolveTierPrice(tiers []catalog.WeightTier, w decimal.Decimal) (decimal.Decimal, error) {
	var matched *catalog.WeightTier
	for i := range tiers {
		if !tierMatches(tiers[i], w) {
			continue
		}
		if matched != nil {
			return decimal.Zero, ErrAmbiguousTier
		}
		matched = &tiers[i]
	}
	if matched == nil {
		return decimal.Zero, ErrNoMatchingTier
	}
	if !matched.PerKg {
		return matched.Price, nil
	}

	// Incremental tier: the preceding flat tier's price covers the weight up
	// to this tier's lower bound, and the rate applies to the portion inside
	// the band. With no flat tier below, the base is zero.
	base := decimal.Zero
	found := false
	var bestMax decimal.Decimal
	for _, t := range tiers {
		if t.PerKg || t.MaxKg.GreaterThan(matched.MinKg) {
			continue
		}
		if !found || t.MaxKg.GreaterThan(bestMax) {
			base = t.Price
			bestMax = t.MaxKg
			found = true
		}
	}

	weightInTier := decimal.Min(w, matched.MaxKg).Sub(matched.MinKg)
	if weightInTier.IsNegative() {
		weightInTier = decimal.Zero
	}
	return base.Add(matched.Price.Mul(weightInTier)), nil
}

func priceLabels(snap catalog.Snapshot, count int) (decimal.Decimal, error) {
	if count <= 0 {
		return decimal.Zero, nil
	}
	if snap.Settings.LabelsMaxBulk > 0 && count > snap.Settings.LabelsMaxBulk {
		return decimal.Zero, ErrLabelCountExceedsRanges
	}
	for _, lr := range snap.RangesAscending() {
		if lr.UpperBound >= count {
			cost := decimal.NewFromInt(int64(count)).Mul(lr.RangeCost)
			return cost.Add(snap.Settings.LabelsSupplierShipping).Mul(snap.Settings.LabelsMarkupMultiplier), nil
		}
	}
	return decimal.Zero, ErrLabelCountExceedsRanges
}

func priceExtras(s catalog.Settings, extras []Extra) decimal.Decimal {
	total := decimal.Zero
	for _, e := range extras {
		switch e.Jacket {
		case JacketRainbow:
			total = total.Add(s.JacketRainbow)
		case JacketTwoColour:
			total = total.Add(s.JacketTwoColour)
		case JacketPinstripe:
			total = total.Add(s.JacketPinstripe)
		}
	}
	return total
}

func priceUrgency(s catalog.Settings, due *time.Time, now time.Time) decimal.Decimal {
	if due == nil {
		return decimal.Zero
	}
	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	if days <= s.LeadTimeDays {
		return s.UrgencyFee
	}
	return decimal.Zero
}
