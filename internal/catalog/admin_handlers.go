package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gulali-id/backend-gulali/internal/common"
	"github.com/gulali-id/backend-gulali/internal/obs"
)

// AdminStore is the write-side of the catalog used by admin handlers.
type AdminStore interface {
	Snapshot(ctx context.Context) (Snapshot, error)

	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, id, name string) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreatePackagingOption(ctx context.Context, opt PackagingOption) (PackagingOption, error)
	UpdatePackagingOption(ctx context.Context, opt PackagingOption) (PackagingOption, error)
	DeletePackagingOption(ctx context.Context, id string) error

	ListWeightTiers(ctx context.Context, categoryID string) ([]WeightTier, error)
	CreateWeightTier(ctx context.Context, t WeightTier) (WeightTier, error)
	UpdateWeightTier(ctx context.Context, t WeightTier) (WeightTier, error)
	DeleteWeightTier(ctx context.Context, id string) error

	CreateLabelRange(ctx context.Context, lr LabelRange) (LabelRange, error)
	UpdateLabelRange(ctx context.Context, lr LabelRange) (LabelRange, error)
	DeleteLabelRange(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, in Settings) (Settings, error)
}

// Invalidator drops any cached snapshot after a catalog mutation.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// AdminHandlers serves the staff-only catalog management endpoints.
type AdminHandlers struct {
	store    AdminStore
	cache    Invalidator
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAdminHandlers constructs AdminHandlers.
func NewAdminHandlers(store AdminStore, cache Invalidator, log zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		log:      log,
	}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type packagingOptionRequest struct {
	Type               string          `json:"type" validate:"required,min=1,max=60"`
	Size               string          `json:"size" validate:"required,min=1,max=60"`
	CandyWeightG       int             `json:"candyWeightG" validate:"required,gt=0"`
	AllowedCategoryIDs []string        `json:"allowedCategoryIds" validate:"dive,uuid4"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	MaxPackages        int             `json:"maxPackages" validate:"gte=0"`
}

type weightTierRequest struct {
	CategoryID string          `json:"categoryId" validate:"required,uuid4"`
	MinKg      decimal.Decimal `json:"minKg"`
	MaxKg      decimal.Decimal `json:"maxKg"`
	Price      decimal.Decimal `json:"price"`
	PerKg      bool            `json:"perKg"`
	Notes      string          `json:"notes" validate:"max=500"`
}

type labelRangeRequest struct {
	UpperBound int             `json:"upperBound" validate:"required,gt=0"`
	RangeCost  decimal.Decimal `json:"rangeCost"`
}

// CreateCategory handles POST /api/v1/admin/catalog/categories.
func (h *AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// UpdateCategory handles PUT /api/v1/admin/catalog/categories/{id}.
func (h *AdminHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.store.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeleteCategory handles DELETE /api/v1/admin/catalog/categories/{id}.
func (h *AdminHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CreatePackagingOption handles POST /api/v1/admin/catalog/packaging-options.
func (h *AdminHandlers) CreatePackagingOption(w http.ResponseWriter, r *http.Request) {
	var req packagingOptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.UnitPrice.IsNegative() {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "unitPrice must not be negative", nil)
		return
	}
	created, err := h.store.CreatePackagingOption(r.Context(), PackagingOption{
		Type:               req.Type,
		Size:               req.Size,
		CandyWeightG:       req.CandyWeightG,
		AllowedCategoryIDs: req.AllowedCategoryIDs,
		UnitPrice:          req.UnitPrice,
		MaxPackages:        req.MaxPackages,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// UpdatePackagingOption handles PUT /api/v1/admin/catalog/packaging-options/{id}.
func (h *AdminHandlers) UpdatePackagingOption(w http.ResponseWriter, r *http.Request) {
	var req packagingOptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.UnitPrice.IsNegative() {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "unitPrice must not be negative", nil)
		return
	}
	updated, err := h.store.UpdatePackagingOption(r.Context(), PackagingOption{
		ID:                 chi.URLParam(r, "id"),
		Type:               req.Type,
		Size:               req.Size,
		CandyWeightG:       req.CandyWeightG,
		AllowedCategoryIDs: req.AllowedCategoryIDs,
		UnitPrice:          req.UnitPrice,
		MaxPackages:        req.MaxPackages,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeletePackagingOption handles DELETE /api/v1/admin/catalog/packaging-options/{id}.
func (h *AdminHandlers) DeletePackagingOption(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePackagingOption(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ListWeightTiers handles GET /api/v1/admin/catalog/weight-tiers.
func (h *AdminHandlers) ListWeightTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.store.ListWeightTiers(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	if tiers == nil {
		tiers = []WeightTier{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": tiers})
}

// CreateWeightTier handles POST /api/v1/admin/catalog/weight-tiers.
func (h *AdminHandlers) CreateWeightTier(w http.ResponseWriter, r *http.Request) {
	var req weightTierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if msg, ok := validateTierBand(req); !ok {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", msg, nil)
		return
	}
	created, err := h.store.CreateWeightTier(r.Context(), WeightTier{
		CategoryID: req.CategoryID,
		MinKg:      req.MinKg,
		MaxKg:      req.MaxKg,
		Price:      req.Price,
		PerKg:      req.PerKg,
		Notes:      req.Notes,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// UpdateWeightTier handles PUT /api/v1/admin/catalog/weight-tiers/{id}.
func (h *AdminHandlers) UpdateWeightTier(w http.ResponseWriter, r *http.Request) {
	var req weightTierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if msg, ok := validateTierBand(req); !ok {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", msg, nil)
		return
	}
	updated, err := h.store.UpdateWeightTier(r.Context(), WeightTier{
		ID:         chi.URLParam(r, "id"),
		CategoryID: req.CategoryID,
		MinKg:      req.MinKg,
		MaxKg:      req.MaxKg,
		Price:      req.Price,
		PerKg:      req.PerKg,
		Notes:      req.Notes,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeleteWeightTier handles DELETE /api/v1/admin/catalog/weight-tiers/{id}.
func (h *AdminHandlers) DeleteWeightTier(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteWeightTier(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CreateLabelRange handles POST /api/v1/admin/catalog/label-ranges.
func (h *AdminHandlers) CreateLabelRange(w http.ResponseWriter, r *http.Request) {
	var req labelRangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RangeCost.IsNegative() {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "rangeCost must not be negative", nil)
		return
	}
	created, err := h.store.CreateLabelRange(r.Context(), LabelRange{
		UpperBound: req.UpperBound,
		RangeCost:  req.RangeCost,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// UpdateLabelRange handles PUT /api/v1/admin/catalog/label-ranges/{id}.
func (h *AdminHandlers) UpdateLabelRange(w http.ResponseWriter, r *http.Request) {
	var req labelRangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RangeCost.IsNegative() {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "rangeCost must not be negative", nil)
		return
	}
	updated, err := h.store.UpdateLabelRange(r.Context(), LabelRange{
		ID:         chi.URLParam(r, "id"),
		UpperBound: req.UpperBound,
		RangeCost:  req.RangeCost,
	})
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeleteLabelRange handles DELETE /api/v1/admin/catalog/label-ranges/{id}.
func (h *AdminHandlers) DeleteLabelRange(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteLabelRange(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /api/v1/admin/catalog/settings.
func (h *AdminHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": settings})
}

// UpdateSettings handles PUT /api/v1/admin/catalog/settings. The full settings
// document is replaced in one shot so partially applied values never price a
// quote.
func (h *AdminHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if msg, ok := validateSettings(req); !ok {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", msg, nil)
		return
	}
	updated, err := h.store.UpdateSettings(r.Context(), req)
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	h.invalidate(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Lint handles GET /api/v1/admin/catalog/lint. It reports tier overlaps and
// gaps, label range problems, and settings issues so staff can fix the catalog
// before customers hit an unpriceable configuration.
func (h *AdminHandlers) Lint(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.renderStoreError(w, r, err)
		return
	}
	issues := Lint(snap)
	if issues == nil {
		issues = []Issue{}
	}
	if obs.CatalogLintIssues != nil {
		obs.CatalogLintIssues.Set(float64(len(issues)))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"issues": issues,
		"clean":  len(issues) == 0,
	}})
}

func (h *AdminHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "request validation failed", validationDetails(err))
		return false
	}
	return true
}

func (h *AdminHandlers) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.Warn().Err(err).Msg("catalog snapshot invalidation failed")
	}
}

func (h *AdminHandlers) renderStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case isPgCode(err, "23505"):
		common.JSONError(w, http.StatusConflict, "CONFLICT", "a resource with these values already exists", nil)
	case isPgCode(err, "23503"):
		common.JSONError(w, http.StatusConflict, "CONFLICT", "resource is referenced by other catalog entries", nil)
	case errors.Is(err, ErrSettingsMissing):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "pricing settings have not been configured", nil)
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("catalog store error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return out
}

func validateTierBand(req weightTierRequest) (string, bool) {
	if req.MinKg.IsNegative() {
		return "minKg must not be negative", false
	}
	if req.MaxKg.LessThanOrEqual(req.MinKg) {
		return "maxKg must be greater than minKg", false
	}
	if req.Price.IsNegative() {
		return "price must not be negative", false
	}
	return "", true
}

func validateSettings(s Settings) (string, bool) {
	if !s.MaxTotalKg.IsPositive() {
		return "maxTotalKg must be positive", false
	}
	if s.LeadTimeDays < 0 {
		return "leadTimeDays must not be negative", false
	}
	if s.UrgencyFee.IsNegative() {
		return "urgencyFee must not be negative", false
	}
	if s.TransactionFeePercent.IsNegative() {
		return "transactionFeePercent must not be negative", false
	}
	if s.LabelsMarkupMultiplier.LessThan(decimal.NewFromInt(1)) {
		return "labelsMarkupMultiplier must be at least 1", false
	}
	if s.LabelsSupplierShipping.IsNegative() {
		return "labelsSupplierShipping must not be negative", false
	}
	if s.LabelsMaxBulk <= 0 {
		return "labelsMaxBulk must be positive", false
	}
	return "", true
}
