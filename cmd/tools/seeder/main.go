package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	catIDs := seedCategories(db)
	seedWeightTiers(db, catIDs)
	seedPackagingOptions(db, catIDs)
	seedLabelRanges(db)
	seedSettings(db)

	log.Println("Seeding completed successfully!")
}

func seedCategories(db *sql.DB) map[string]string {
	categories := []string{
		"Wedding Candy",
		"Custom Text Candy",
		"Branded Candy",
	}

	fmt.Println("Seeding Categories...")
	catIDs := make(map[string]string)
	for _, name := range categories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, name).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to upsert category %s: %v", name, err)
		}
		catIDs[name] = id
	}
	return catIDs
}

func seedWeightTiers(db *sql.DB, catIDs map[string]string) {
	tiers := []struct {
		Category string
		MinKg    string
		MaxKg    string
		Price    string
		PerKg    bool
		Notes    string
	}{
		{"Wedding Candy", "0", "5", "295", false, "starter batch"},
		{"Wedding Candy", "5", "10", "50", true, "per extra kg above 5"},
		{"Wedding Candy", "10", "40", "45", true, "bulk rate"},
		{"Custom Text Candy", "0", "8", "395", false, ""},
		{"Custom Text Candy", "8", "40", "48", true, "per extra kg above 8"},
		{"Branded Candy", "0", "10", "495", false, "includes artwork setup"},
		{"Branded Candy", "10", "40", "44", true, ""},
	}

	fmt.Println("Seeding Weight Tiers...")
	for _, t := range tiers {
		_, err := db.Exec(`
			INSERT INTO weight_tiers (category_id, min_kg, max_kg, price, per_kg, notes)
			VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5, NULLIF($6, ''))
			ON CONFLICT (category_id, min_kg, max_kg) DO UPDATE
			SET price = EXCLUDED.price, per_kg = EXCLUDED.per_kg, notes = EXCLUDED.notes;
		`, catIDs[t.Category], t.MinKg, t.MaxKg, t.Price, t.PerKg, t.Notes)
		if err != nil {
			log.Printf("Failed to upsert tier %s [%s-%s]: %v", t.Category, t.MinKg, t.MaxKg, err)
		}
	}
}

func seedPackagingOptions(db *sql.DB, catIDs map[string]string) {
	all := []string{catIDs["Wedding Candy"], catIDs["Custom Text Candy"], catIDs["Branded Candy"]}
	options := []struct {
		Type       string
		Size       string
		WeightG    int
		Categories []string
		UnitPrice  string
		MaxPkgs    int
	}{
		{"cello bag", "small", 100, all, "2.50", 400},
		{"cello bag", "large", 250, all, "4.00", 160},
		{"jar", "small", 500, all, "18.00", 40},
		{"jar", "large", 1000, all, "28.00", 40},
		{"tin", "gift", 750, []string{catIDs["Wedding Candy"], catIDs["Branded Candy"]}, "35.00", 20},
		{"bulk box", "catering", 5000, []string{catIDs["Branded Candy"]}, "60.00", 8},
	}

	fmt.Println("Seeding Packaging Options...")
	for _, o := range options {
		ids := "{" + o.Categories[0]
		for _, id := range o.Categories[1:] {
			ids += "," + id
		}
		ids += "}"
		_, err := db.Exec(`
			INSERT INTO packaging_options (type, size, candy_weight_g, allowed_category_ids, unit_price, max_packages)
			VALUES ($1, $2, $3, $4::uuid[], $5::numeric, $6)
			ON CONFLICT (type, size) DO UPDATE
			SET candy_weight_g = EXCLUDED.candy_weight_g,
			    allowed_category_ids = EXCLUDED.allowed_category_ids,
			    unit_price = EXCLUDED.unit_price,
			    max_packages = EXCLUDED.max_packages;
		`, o.Type, o.Size, o.WeightG, ids, o.UnitPrice, o.MaxPkgs)
		if err != nil {
			log.Printf("Failed to upsert packaging %s/%s: %v", o.Type, o.Size, err)
		}
	}
}

func seedLabelRanges(db *sql.DB) {
	ranges := []struct {
		UpperBound int
		RangeCost  string
	}{
		{50, "0.50"},
		{100, "0.40"},
		{250, "0.32"},
		{500, "0.26"},
		{1000, "0.22"},
	}

	fmt.Println("Seeding Label Ranges...")
	for _, r := range ranges {
		_, err := db.Exec(`
			INSERT INTO label_ranges (upper_bound, range_cost)
			VALUES ($1, $2::numeric)
			ON CONFLICT (upper_bound) DO UPDATE SET range_cost = EXCLUDED.range_cost;
		`, r.UpperBound, r.RangeCost)
		if err != nil {
			log.Printf("Failed to upsert label range %d: %v", r.UpperBound, err)
		}
	}
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding Pricing Settings...")
	_, err := db.Exec(`
		INSERT INTO pricing_settings (
			id, max_total_kg, lead_time_days, urgency_fee, transaction_fee_percent,
			jacket_rainbow, jacket_two_colour, jacket_pinstripe,
			labels_supplier_shipping, labels_markup_multiplier, labels_max_bulk
		) VALUES (1, 40, 10, 100, 2.9, 25, 20, 30, 15, 2, 1000)
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
			labels_max_bulk = EXCLUDED.labels_max_bulk;
	`)
	if err != nil {
		log.Fatalf("Failed to upsert settings: %v", err)
	}
}
