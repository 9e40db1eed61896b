package quote_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gulali-id/backend-gulali/internal/alert"
	"github.com/gulali-id/backend-gulali/internal/catalog"
	"github.com/gulali-id/backend-gulali/internal/common"
	"github.com/gulali-id/backend-gulali/internal/obs"
	"github.com/gulali-id/backend-gulali/internal/quote"
)

type stubReader struct {
	snap  catalog.Snapshot
	err   error
	calls int
}

func (s *stubReader) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

type memCache struct {
	snap catalog.Snapshot
	ok   bool
	sets int
}

func (m *memCache) Get(ctx context.Context) (catalog.Snapshot, bool, error) {
	return m.snap, m.ok, nil
}

func (m *memCache) Set(ctx context.Context, snap catalog.Snapshot) error {
	m.snap, m.ok = snap, true
	m.sets++
	return nil
}

type recordingNotifier struct {
	payloads []alert.CatalogGapPayload
}

func (r *recordingNotifier) CatalogGap(ctx context.Context, p alert.CatalogGapPayload) {
	r.payloads = append(r.payloads, p)
}

func validRequest() quote.Request {
	return quote.Request{
		CategoryID: catWedding,
		Packaging:  []quote.PackagingSelection{{OptionID: optJarID, Quantity: 5}},
	}
}

func TestServiceQuotePopulatesCache(t *testing.T) {
	store := &stubReader{snap: baseSnapshot()}
	cache := &memCache{}
	svc := quote.NewService(store, cache, nil, zerolog.Nop())

	got, err := svc.Quote(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, got.Total.Equal(dec("612.255")))
	require.Equal(t, 1, store.calls)
	require.Equal(t, 1, cache.sets)

	// Second quote is served from the cache.
	_, err = svc.Quote(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
}

func TestServiceQuoteCountsSnapshotLoads(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	storeBefore := testutil.ToFloat64(obs.SnapshotLoadTotal.WithLabelValues("store"))
	cacheBefore := testutil.ToFloat64(obs.SnapshotLoadTotal.WithLabelValues("cache"))

	store := &stubReader{snap: baseSnapshot()}
	svc := quote.NewService(store, &memCache{}, nil, zerolog.Nop())

	_, err := svc.Quote(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Quote(context.Background(), validRequest())
	require.NoError(t, err)

	require.Equal(t, storeBefore+1, testutil.ToFloat64(obs.SnapshotLoadTotal.WithLabelValues("store")))
	require.Equal(t, cacheBefore+1, testutil.ToFloat64(obs.SnapshotLoadTotal.WithLabelValues("cache")))
}

func TestServiceQuoteMapsInputErrors(t *testing.T) {
	svc := quote.NewService(&stubReader{snap: baseSnapshot()}, nil, nil, zerolog.Nop())

	req := validRequest()
	req.Packaging[0].Quantity = 99
	_, err := svc.Quote(context.Background(), req)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "QUANTITY_OUT_OF_RANGE", appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.ErrorIs(t, err, quote.ErrQuantityOutOfRange)
}

func TestServiceQuoteHidesCatalogGapsAndAlerts(t *testing.T) {
	snap := baseSnapshot()
	snap.Tiers = nil
	notifier := &recordingNotifier{}
	svc := quote.NewService(&stubReader{snap: snap}, nil, notifier, zerolog.Nop())

	_, err := svc.Quote(context.Background(), validRequest())

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNABLE_TO_PRICE", appErr.Code)
	require.NotContains(t, appErr.Message, "tier")

	require.Len(t, notifier.payloads, 1)
	require.Equal(t, "no_matching_tier", notifier.payloads[0].Kind)
	require.Equal(t, catWedding, notifier.payloads[0].CategoryID)
}

func TestServiceQuoteSnapshotFailure(t *testing.T) {
	svc := quote.NewService(&stubReader{err: errors.New("connection refused")}, nil, nil, zerolog.Nop())

	_, err := svc.Quote(context.Background(), validRequest())

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "CATALOG_UNAVAILABLE", appErr.Code)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
}
