package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/gulali-id/backend-gulali/internal/obs"
)

// TaskTypeCatalogGap is the asynq task type for catalog configuration gap
// alerts.
const TaskTypeCatalogGap = "alert:catalog_gap"

// CatalogGapPayload describes a quote that could not be priced because of
// catalog data, not customer input.
type CatalogGapPayload struct {
	Kind       string    `json:"kind"`
	CategoryID string    `json:"categoryId,omitempty"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewCatalogGapTask builds the asynq task for a catalog gap alert.
func NewCatalogGapTask(p CatalogGapPayload) (*asynq.Task, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog gap payload: %w", err)
	}
	return asynq.NewTask(TaskTypeCatalogGap, raw, asynq.MaxRetry(5)), nil
}

// Enqueuer pushes operator alerts onto the worker queue. Enqueue failures are
// logged and counted but never fail the request that triggered the alert.
type Enqueuer struct {
	client *asynq.Client
	queue  string
	log    zerolog.Logger
}

// NewEnqueuer constructs an Enqueuer targeting the given queue.
func NewEnqueuer(client *asynq.Client, queue string, log zerolog.Logger) *Enqueuer {
	if queue == "" {
		queue = "alerts"
	}
	return &Enqueuer{client: client, queue: queue, log: log}
}

// CatalogGap enqueues a catalog gap alert.
func (e *Enqueuer) CatalogGap(ctx context.Context, p CatalogGapPayload) {
	if e == nil || e.client == nil {
		return
	}
	task, err := NewCatalogGapTask(p)
	if err != nil {
		e.log.Error().Err(err).Msg("build catalog gap task")
		countEnqueue("error")
		return
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue)); err != nil {
		e.log.Error().Err(err).Str("kind", p.Kind).Msg("enqueue catalog gap alert")
		countEnqueue("error")
		return
	}
	countEnqueue("ok")
}

func countEnqueue(result string) {
	if obs.AlertEnqueueTotal != nil {
		obs.AlertEnqueueTotal.WithLabelValues(result).Inc()
	}
}
