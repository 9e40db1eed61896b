package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gulali-id/backend-gulali/internal/catalog"
	"github.com/gulali-id/backend-gulali/internal/obs"
)

type fakeStore struct {
	snapshot    catalog.Snapshot
	snapshotErr error
	createdTier catalog.WeightTier
	tierErr     error
	deleteErr   error
	settings    catalog.Settings
	settingsErr error
}

func (f *fakeStore) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeStore) CreateCategory(ctx context.Context, name string) (catalog.Category, error) {
	return catalog.Category{ID: "33333333-3333-4333-8333-333333333333", Name: name}, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, id, name string) (catalog.Category, error) {
	return catalog.Category{ID: id, Name: name}, nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error { return f.deleteErr }

func (f *fakeStore) CreatePackagingOption(ctx context.Context, opt catalog.PackagingOption) (catalog.PackagingOption, error) {
	opt.ID = "44444444-4444-4444-8444-444444444444"
	return opt, nil
}

func (f *fakeStore) UpdatePackagingOption(ctx context.Context, opt catalog.PackagingOption) (catalog.PackagingOption, error) {
	return opt, nil
}

func (f *fakeStore) DeletePackagingOption(ctx context.Context, id string) error { return f.deleteErr }

func (f *fakeStore) ListWeightTiers(ctx context.Context, categoryID string) ([]catalog.WeightTier, error) {
	return f.snapshot.Tiers, nil
}

func (f *fakeStore) CreateWeightTier(ctx context.Context, t catalog.WeightTier) (catalog.WeightTier, error) {
	if f.tierErr != nil {
		return catalog.WeightTier{}, f.tierErr
	}
	t.ID = "55555555-5555-4555-8555-555555555555"
	f.createdTier = t
	return t, nil
}

func (f *fakeStore) UpdateWeightTier(ctx context.Context, t catalog.WeightTier) (catalog.WeightTier, error) {
	return t, f.tierErr
}

func (f *fakeStore) DeleteWeightTier(ctx context.Context, id string) error { return f.deleteErr }

func (f *fakeStore) CreateLabelRange(ctx context.Context, lr catalog.LabelRange) (catalog.LabelRange, error) {
	lr.ID = "66666666-6666-4666-8666-666666666666"
	return lr, nil
}

func (f *fakeStore) UpdateLabelRange(ctx context.Context, lr catalog.LabelRange) (catalog.LabelRange, error) {
	return lr, nil
}

func (f *fakeStore) DeleteLabelRange(ctx context.Context, id string) error { return f.deleteErr }

func (f *fakeStore) GetSettings(ctx context.Context) (catalog.Settings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeStore) UpdateSettings(ctx context.Context, in catalog.Settings) (catalog.Settings, error) {
	f.settings = in
	return in, nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return nil
}

func adminRouter(store *fakeStore, inv *fakeInvalidator) http.Handler {
	h := catalog.NewAdminHandlers(store, inv, zerolog.Nop())
	r := chi.NewRouter()
	r.Post("/weight-tiers", h.CreateWeightTier)
	r.Delete("/weight-tiers/{id}", h.DeleteWeightTier)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/lint", h.Lint)
	return r
}

func TestListPackagingOptionsFiltersByCategory(t *testing.T) {
	catA := "11111111-1111-4111-8111-111111111111"
	catB := "22222222-2222-4222-8222-222222222222"
	store := &fakeStore{snapshot: catalog.Snapshot{
		Packaging: []catalog.PackagingOption{
			{ID: "p1", Type: "jar", Size: "small", AllowedCategoryIDs: []string{catA}},
			{ID: "p2", Type: "bag", Size: "large", AllowedCategoryIDs: []string{catB}},
		},
	}}
	h := catalog.NewHandlers(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/packaging-options?categoryId="+catA, nil)
	rec := httptest.NewRecorder()
	h.ListPackagingOptions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []catalog.PackagingOption `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "p1", body.Data[0].ID)
}

func TestCreateWeightTierRejectsInvertedBand(t *testing.T) {
	store := &fakeStore{}
	router := adminRouter(store, &fakeInvalidator{})

	body := `{"categoryId":"11111111-1111-4111-8111-111111111111","minKg":"10","maxKg":"5","price":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/weight-tiers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "maxKg must be greater than minKg")
}

func TestCreateWeightTierInvalidatesCache(t *testing.T) {
	store := &fakeStore{}
	inv := &fakeInvalidator{}
	router := adminRouter(store, inv)

	body := `{"categoryId":"11111111-1111-4111-8111-111111111111","minKg":"0","maxKg":"5","price":"295"}`
	req := httptest.NewRequest(http.MethodPost, "/weight-tiers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, inv.calls)
	require.True(t, store.createdTier.Price.Equal(decimal.NewFromInt(295)))
}

func TestCreateWeightTierMapsUniqueViolation(t *testing.T) {
	store := &fakeStore{tierErr: &pgconn.PgError{Code: "23505"}}
	router := adminRouter(store, &fakeInvalidator{})

	body := `{"categoryId":"11111111-1111-4111-8111-111111111111","minKg":"0","maxKg":"5","price":"295"}`
	req := httptest.NewRequest(http.MethodPost, "/weight-tiers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "CONFLICT")
}

func TestDeleteWeightTierNotFound(t *testing.T) {
	store := &fakeStore{deleteErr: pgx.ErrNoRows}
	router := adminRouter(store, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodDelete, "/weight-tiers/55555555-5555-4555-8555-555555555555", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettingsRejectsBadMultiplier(t *testing.T) {
	store := &fakeStore{}
	router := adminRouter(store, &fakeInvalidator{})

	body := `{"maxTotalKg":"40","leadTimeDays":10,"urgencyFee":"100","transactionFeePercent":"2.9",` +
		`"jacketRainbow":"25","jacketTwoColour":"20","jacketPinstripe":"30",` +
		`"labelsSupplierShipping":"15","labelsMarkupMultiplier":"0.5","labelsMaxBulk":1000}`
	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "labelsMarkupMultiplier")
}

func TestLintEndpointReportsIssues(t *testing.T) {
	catA := "11111111-1111-4111-8111-111111111111"
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	store := &fakeStore{snapshot: catalog.Snapshot{
		Categories: []catalog.Category{{ID: catA, Name: "Lollipops"}},
		Tiers: []catalog.WeightTier{
			{ID: "t1", CategoryID: catA, MinKg: decimal.Zero, MaxKg: decimal.NewFromInt(5), Price: decimal.NewFromInt(295)},
			{ID: "t2", CategoryID: catA, MinKg: decimal.NewFromInt(7), MaxKg: decimal.NewFromInt(40), Price: decimal.NewFromInt(600)},
		},
		LabelRanges: []catalog.LabelRange{{ID: "l1", UpperBound: 50, RangeCost: decimal.NewFromInt(20)}},
		Settings: catalog.Settings{
			MaxTotalKg:             decimal.NewFromInt(40),
			LeadTimeDays:           10,
			TransactionFeePercent:  decimal.NewFromFloat(2.9),
			LabelsMarkupMultiplier: decimal.NewFromInt(2),
			LabelsMaxBulk:          1000,
		},
	}}
	router := adminRouter(store, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/lint", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Issues []catalog.Issue `json:"issues"`
			Clean  bool            `json:"clean"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Data.Clean)
	require.NotEmpty(t, body.Data.Issues)

	// The lint gauge tracks the issue count of the latest run.
	require.Equal(t, float64(len(body.Data.Issues)), testutil.ToFloat64(obs.CatalogLintIssues))
}
