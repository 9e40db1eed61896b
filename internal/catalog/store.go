package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrSettingsMissing is returned when the singleton settings row has not been
// seeded yet.
var ErrSettingsMissing = errors.New("catalog: pricing settings row missing")

// Store provides catalog persistence on top of Postgres. Numeric columns are
// shuttled through their text representation so amounts stay exact decimals
// end to end.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Snapshot loads the full catalog as of now.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	packaging, err := s.ListPackagingOptions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tiers, err := s.ListWeightTiers(ctx, "")
	if err != nil {
		return Snapshot{}, err
	}
	ranges, err := s.ListLabelRanges(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Categories:  categories,
		Packaging:   packaging,
		Tiers:       tiers,
		LabelRanges: ranges,
		Settings:    settings,
	}, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category and returns it.
func (s *Store) CreateCategory(ctx context.Context, name string) (Category, error) {
	var c Category
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id::text, name`,
		strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory renames a category.
func (s *Store) UpdateCategory(ctx context.Context, id, name string) (Category, error) {
	var c Category
	err := s.pool.QueryRow(ctx,
		`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1::uuid RETURNING id::text, name`,
		id, strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Referencing tiers or packaging links
// surface as a foreign key violation for the handler to translate.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListPackagingOptions returns all packaging options ordered by type then size.
func (s *Store) ListPackagingOptions(ctx context.Context) ([]PackagingOption, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, type, size, candy_weight_g, allowed_category_ids::text[],
		       unit_price::text, max_packages
		FROM packaging_options
		ORDER BY type, size`)
	if err != nil {
		return nil, fmt.Errorf("list packaging options: %w", err)
	}
	defer rows.Close()
	var out []PackagingOption
	for rows.Next() {
		opt, err := scanPackagingOption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}

// CreatePackagingOption inserts a packaging option and returns it.
func (s *Store) CreatePackagingOption(ctx context.Context, opt PackagingOption) (PackagingOption, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO packaging_options (type, size, candy_weight_g, allowed_category_ids, unit_price, max_packages)
		VALUES ($1, $2, $3, $4::uuid[], $5::numeric, $6)
		RETURNING id::text, type, size, candy_weight_g, allowed_category_ids::text[], unit_price::text, max_packages`,
		opt.Type, opt.Size, opt.CandyWeightG, opt.AllowedCategoryIDs, opt.UnitPrice.String(), opt.MaxPackages)
	created, err := scanPackagingOption(row)
	if err != nil {
		return PackagingOption{}, fmt.Errorf("create packaging option: %w", err)
	}
	return created, nil
}

// UpdatePackagingOption replaces a packaging option's fields.
func (s *Store) UpdatePackagingOption(ctx context.Context, opt PackagingOption) (PackagingOption, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE packaging_options
		SET type = $2, size = $3, candy_weight_g = $4, allowed_category_ids = $5::uuid[],
		    unit_price = $6::numeric, max_packages = $7, updated_at = now()
		WHERE id = $1::uuid
		RETURNING id::text, type, size, candy_weight_g, allowed_category_ids::text[], unit_price::text, max_packages`,
		opt.ID, opt.Type, opt.Size, opt.CandyWeightG, opt.AllowedCategoryIDs, opt.UnitPrice.String(), opt.MaxPackages)
	updated, err := scanPackagingOption(row)
	if err != nil {
		return PackagingOption{}, fmt.Errorf("update packaging option: %w", err)
	}
	return updated, nil
}

// DeletePackagingOption removes a packaging option.
func (s *Store) DeletePackagingOption(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM packaging_options WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete packaging option: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListWeightTiers returns tiers, optionally filtered by category.
func (s *Store) ListWeightTiers(ctx context.Context, categoryID string) ([]WeightTier, error) {
	query := `
		SELECT id::text, category_id::text, min_kg::text, max_kg::text, price::text, per_kg, COALESCE(notes, '')
		FROM weight_tiers`
	args := []any{}
	if strings.TrimSpace(categoryID) != "" {
		query += ` WHERE category_id = $1::uuid`
		args = append(args, categoryID)
	}
	query += ` ORDER BY category_id, min_kg`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list weight tiers: %w", err)
	}
	defer rows.Close()
	var out []WeightTier
	for rows.Next() {
		tier, err := scanWeightTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tier)
	}
	return out, rows.Err()
}

// CreateWeightTier inserts a tier and returns it.
func (s *Store) CreateWeightTier(ctx context.Context, t WeightTier) (WeightTier, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO weight_tiers (category_id, min_kg, max_kg, price, per_kg, notes)
		VALUES ($1::uuid, $2::numeric, $3::numeric, $4::numeric, $5, NULLIF($6, ''))
		RETURNING id::text, category_id::text, min_kg::text, max_kg::text, price::text, per_kg, COALESCE(notes, '')`,
		t.CategoryID, t.MinKg.String(), t.MaxKg.String(), t.Price.String(), t.PerKg, t.Notes)
	created, err := scanWeightTier(row)
	if err != nil {
		return WeightTier{}, fmt.Errorf("create weight tier: %w", err)
	}
	return created, nil
}

// UpdateWeightTier replaces a tier's band and price rule.
func (s *Store) UpdateWeightTier(ctx context.Context, t WeightTier) (WeightTier, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE weight_tiers
		SET category_id = $2::uuid, min_kg = $3::numeric, max_kg = $4::numeric,
		    price = $5::numeric, per_kg = $6, notes = NULLIF($7, ''), updated_at = now()
		WHERE id = $1::uuid
		RETURNING id::text, category_id::text, min_kg::text, max_kg::text, price::text, per_kg, COALESCE(notes, '')`,
		t.ID, t.CategoryID, t.MinKg.String(), t.MaxKg.String(), t.Price.String(), t.PerKg, t.Notes)
	updated, err := scanWeightTier(row)
	if err != nil {
		return WeightTier{}, fmt.Errorf("update weight tier: %w", err)
	}
	return updated, nil
}

// DeleteWeightTier removes a tier.
func (s *Store) DeleteWeightTier(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM weight_tiers WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete weight tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListLabelRanges returns all label ranges ordered by upper bound.
func (s *Store) ListLabelRanges(ctx context.Context) ([]LabelRange, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, upper_bound, range_cost::text FROM label_ranges ORDER BY upper_bound`)
	if err != nil {
		return nil, fmt.Errorf("list label ranges: %w", err)
	}
	defer rows.Close()
	var out []LabelRange
	for rows.Next() {
		lr, err := scanLabelRange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// CreateLabelRange inserts a label range and returns it.
func (s *Store) CreateLabelRange(ctx context.Context, lr LabelRange) (LabelRange, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO label_ranges (upper_bound, range_cost)
		VALUES ($1, $2::numeric)
		RETURNING id::text, upper_bound, range_cost::text`,
		lr.UpperBound, lr.RangeCost.String())
	created, err := scanLabelRange(row)
	if err != nil {
		return LabelRange{}, fmt.Errorf("create label range: %w", err)
	}
	return created, nil
}

// UpdateLabelRange replaces a label range.
func (s *Store) UpdateLabelRange(ctx context.Context, lr LabelRange) (LabelRange, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE label_ranges
		SET upper_bound = $2, range_cost = $3::numeric, updated_at = now()
		WHERE id = $1::uuid
		RETURNING id::text, upper_bound, range_cost::text`,
		lr.ID, lr.UpperBound, lr.RangeCost.String())
	updated, err := scanLabelRange(row)
	if err != nil {
		return LabelRange{}, fmt.Errorf("update label range: %w", err)
	}
	return updated, nil
}

// DeleteLabelRange removes a label range.
func (s *Store) DeleteLabelRange(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM label_ranges WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete label range: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetSettings loads the singleton pricing settings row.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var (
		out                           Settings
		maxKg, urgency, feePct        string
		rainbow, twoColour, pinstripe string
		shipping, markup              string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT max_total_kg::text, lead_time_days, urgency_fee::text, transaction_fee_percent::text,
		       jacket_rainbow::text, jacket_two_colour::text, jacket_pinstripe::text,
		       labels_supplier_shipping::text, labels_markup_multiplier::text, labels_max_bulk
		FROM pricing_settings WHERE id = 1`).Scan(
		&maxKg, &out.LeadTimeDays, &urgency, &feePct,
		&rainbow, &twoColour, &pinstripe,
		&shipping, &markup, &out.LabelsMaxBulk)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrSettingsMissing
		}
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&out.MaxTotalKg, maxKg},
		{&out.UrgencyFee, urgency},
		{&out.TransactionFeePercent, feePct},
		{&out.JacketRainbow, rainbow},
		{&out.JacketTwoColour, twoColour},
		{&out.JacketPinstripe, pinstripe},
		{&out.LabelsSupplierShipping, shipping},
		{&out.LabelsMarkupMultiplier, markup},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return Settings{}, fmt.Errorf("parse settings numeric %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return out, nil
}

// UpdateSettings replaces the singleton pricing settings row.
func (s *Store) UpdateSettings(ctx context.Context, in Settings) (Settings, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pricing_settings (
			id, max_total_kg, lead_time_days, urgency_fee, transaction_fee_percent,
			jacket_rainbow, jacket_two_colour, jacket_pinstripe,
			labels_supplier_shipping, labels_markup_multiplier, labels_max_bulk
		) VALUES (1, $1::numeric, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10)
		ON CONFLICT (id) DO UPDATE SET
			max_total_kg = EXCLUDED.max_total_kg,
			lead_time_days = EXCLUDED.lead_time_days,
			urgency_fee = EXCLUDED.urgency_fee,
			transaction_fee_percent = EXCLUDED.transaction_fee_percent,
			jacket_rainbow = EXCLUDED.jacket_rainbow,
			jacket_two_colour = EXCLUDED.jacket_two_colour,
			jacket_pinstripe = EXCLUDED.jacket_pinstripe,
			labels_supplier_shipping = EXCLUDED.labels_supplier_shipping,
			labels_markup_multiplier = EXCLUDED.labels_markup_multiplier,
			labels_max_bulk = EXCLUDED.labels_max_bulk,
			updated_at = now()`,
		in.MaxTotalKg.String(), in.LeadTimeDays, in.UrgencyFee.String(), in.TransactionFeePercent.String(),
		in.JacketRainbow.String(), in.JacketTwoColour.String(), in.JacketPinstripe.String(),
		in.LabelsSupplierShipping.String(), in.LabelsMarkupMultiplier.String(), in.LabelsMaxBulk)
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return s.GetSettings(ctx)
}

func scanPackagingOption(row pgx.Row) (PackagingOption, error) {
	var (
		opt   PackagingOption
		price string
	)
	if err := row.Scan(&opt.ID, &opt.Type, &opt.Size, &opt.CandyWeightG,
		&opt.AllowedCategoryIDs, &price, &opt.MaxPackages); err != nil {
		return PackagingOption{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return PackagingOption{}, fmt.Errorf("parse unit price %q: %w", price, err)
	}
	opt.UnitPrice = d
	return opt, nil
}

func scanWeightTier(row pgx.Row) (WeightTier, error) {
	var (
		t                  WeightTier
		minKg, maxKg, prce string
	)
	if err := row.Scan(&t.ID, &t.CategoryID, &minKg, &maxKg, &prce, &t.PerKg, &t.Notes); err != nil {
		return WeightTier{}, err
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&t.MinKg, minKg}, {&t.MaxKg, maxKg}, {&t.Price, prce}} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return WeightTier{}, fmt.Errorf("parse tier numeric %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return t, nil
}

func scanLabelRange(row pgx.Row) (LabelRange, error) {
	var (
		lr   LabelRange
		cost string
	)
	if err := row.Scan(&lr.ID, &lr.UpperBound, &cost); err != nil {
		return LabelRange{}, err
	}
	d, err := decimal.NewFromString(cost)
	if err != nil {
		return LabelRange{}, fmt.Errorf("parse range cost %q: %w", cost, err)
	}
	lr.RangeCost = d
	return lr, nil
}
