package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/gulali-id/backend-gulali/internal/common"
)

// Worker consumes operator alert tasks. Alerts always land in the log; email
// delivery is optional and configured per deployment.
type Worker struct {
	log     zerolog.Logger
	email   common.EmailSender
	emailTo string
}

// NewWorker constructs a Worker. Pass a NopEmailSender (or nil) to disable
// email delivery.
func NewWorker(log zerolog.Logger, email common.EmailSender, emailTo string) *Worker {
	if email == nil {
		email = common.NopEmailSender{}
	}
	return &Worker{log: log, email: email, emailTo: emailTo}
}

// Register attaches the worker's handlers to the asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeCatalogGap, w.HandleCatalogGap)
}

// HandleCatalogGap processes one catalog gap alert.
func (w *Worker) HandleCatalogGap(ctx context.Context, task *asynq.Task) error {
	var p CatalogGapPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal catalog gap payload: %w", err)
	}

	w.log.Warn().
		Str("kind", p.Kind).
		Str("category_id", p.CategoryID).
		Str("detail", p.Detail).
		Time("occurred_at", p.OccurredAt).
		Msg("catalog configuration gap")

	if w.emailTo == "" {
		return nil
	}
	subject := fmt.Sprintf("[gulali] catalog gap: %s", p.Kind)
	body := fmt.Sprintf(
		"<p>A quote could not be priced because of catalog data.</p><p>Kind: %s<br>Category: %s<br>Detail: %s<br>At: %s</p>",
		html.EscapeString(p.Kind), html.EscapeString(p.CategoryID),
		html.EscapeString(p.Detail), p.OccurredAt.Format("2006-01-02 15:04:05 MST"))
	if err := w.email.Send(w.emailTo, subject, body); err != nil {
		return fmt.Errorf("send catalog gap email: %w", err)
	}
	return nil
}
