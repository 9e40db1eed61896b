package quote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gulali-id/backend-gulali/internal/alert"
	"github.com/gulali-id/backend-gulali/internal/catalog"
	"github.com/gulali-id/backend-gulali/internal/common"
	"github.com/gulali-id/backend-gulali/internal/obs"
)

// SnapshotCache is the read-through cache in front of the catalog store.
type SnapshotCache interface {
	Get(ctx context.Context) (catalog.Snapshot, bool, error)
	Set(ctx context.Context, snap catalog.Snapshot) error
}

// GapNotifier receives catalog configuration gap alerts.
type GapNotifier interface {
	CatalogGap(ctx context.Context, p alert.CatalogGapPayload)
}

// Service wraps the pricing engine with snapshot loading, error translation
// and operator alerting.
type Service struct {
	store    catalog.Reader
	cache    SnapshotCache
	notifier GapNotifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewService constructs a Service. cache and notifier may be nil.
func NewService(store catalog.Reader, cache SnapshotCache, notifier GapNotifier, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Quote loads a catalog snapshot and prices the request against it. Engine
// failures come back as AppErrors ready for the transport layer.
func (s *Service) Quote(ctx context.Context, req Request) (Breakdown, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		countRequest("snapshot_error")
		return Breakdown{}, common.NewAppError("CATALOG_UNAVAILABLE", "pricing is temporarily unavailable", http.StatusServiceUnavailable, err)
	}

	breakdown, err := Calculate(snap, req, s.now())
	if err != nil {
		return Breakdown{}, s.translate(ctx, req, err)
	}

	countRequest("ok")
	if obs.QuoteTotalValue != nil {
		v, _ := breakdown.Total.Float64()
		obs.QuoteTotalValue.Observe(v)
	}
	return breakdown, nil
}

func (s *Service) loadSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("snapshot cache read failed")
		}
		if ok {
			countSnapshotLoad("cache")
			return snap, nil
		}
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	countSnapshotLoad("store")

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			s.log.Warn().Err(err).Msg("snapshot cache write failed")
		}
	}
	return snap, nil
}

// translate maps engine errors onto AppErrors. Input errors keep a specific
// code and message; catalog gaps collapse to a generic "unable to price" for
// the customer while the specifics go to operators.
func (s *Service) translate(ctx context.Context, req Request, err error) error {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		countRequest("invalid_category")
		return common.NewAppError("INVALID_CATEGORY", "unknown product category", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrPackagingNotAllowed):
		countRequest("packaging_not_allowed")
		return common.NewAppError("PACKAGING_NOT_ALLOWED", "selected packaging is not available for this category", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrQuantityOutOfRange):
		countRequest("quantity_out_of_range")
		return common.NewAppError("QUANTITY_OUT_OF_RANGE", "packaging quantity is outside the allowed range", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrWeightLimitExceeded):
		countRequest("weight_limit_exceeded")
		return common.NewAppError("WEIGHT_LIMIT_EXCEEDED", "order weight exceeds the maximum we can produce", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNoMatchingTier):
		s.reportGap(ctx, req, "no_matching_tier", err)
		return unableToPrice(err)
	case errors.Is(err, ErrAmbiguousTier):
		s.reportGap(ctx, req, "ambiguous_tier", err)
		return unableToPrice(err)
	case errors.Is(err, ErrLabelCountExceedsRanges):
		s.reportGap(ctx, req, "label_count_exceeds_ranges", err)
		return unableToPrice(err)
	default:
		countRequest("error")
		return common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err)
	}
}

func (s *Service) reportGap(ctx context.Context, req Request, kind string, cause error) {
	countRequest("catalog_gap")
	if obs.CatalogGapTotal != nil {
		obs.CatalogGapTotal.WithLabelValues(kind).Inc()
	}
	s.log.Warn().
		Str("kind", kind).
		Str("category_id", req.CategoryID).
		Err(cause).
		Msg("quote hit a catalog configuration gap")
	if s.notifier != nil {
		s.notifier.CatalogGap(ctx, alert.CatalogGapPayload{
			Kind:       kind,
			CategoryID: req.CategoryID,
			Detail:     cause.Error(),
			OccurredAt: s.now().UTC(),
		})
	}
}

func unableToPrice(err error) error {
	return common.NewAppError("UNABLE_TO_PRICE", "we are unable to price this configuration right now", http.StatusUnprocessableEntity, err)
}

func countRequest(result string) {
	if obs.QuoteRequestsTotal != nil {
		obs.QuoteRequestsTotal.WithLabelValues(result).Inc()
	}
}

func countSnapshotLoad(source string) {
	if obs.SnapshotLoadTotal != nil {
		obs.SnapshotLoadTotal.WithLabelValues(source).Inc()
	}
}
