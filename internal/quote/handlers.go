package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gulali-id/backend-gulali/internal/common"
)

// Quoter prices a request. Satisfied by *Service.
type Quoter interface {
	Quote(ctx context.Context, req Request) (Breakdown, error)
}

// Handlers serves the public quote endpoint.
type Handlers struct {
	quoter   Quoter
	validate *validator.Validate
}

// NewHandlers constructs quote Handlers.
func NewHandlers(quoter Quoter) *Handlers {
	return &Handlers{quoter: quoter, validate: validator.New()}
}

type packagingDTO struct {
	OptionID string `json:"optionId" validate:"required"`
	Quantity int    `json:"quantity"`
}

type extraDTO struct {
	Jacket string `json:"jacket"`
}

type quoteRequest struct {
	CategoryID  string         `json:"categoryId" validate:"required"`
	Packaging   []packagingDTO `json:"packaging" validate:"dive"`
	LabelsCount int            `json:"labelsCount" validate:"gte=0"`
	DueDate     string         `json:"dueDate"`
	Extras      []extraDTO     `json:"extras"`
}

// Create handles POST /api/v1/quotes.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "request validation failed", validationDetails(err))
		return
	}

	req := Request{
		CategoryID:  body.CategoryID,
		LabelsCount: body.LabelsCount,
	}
	for _, p := range body.Packaging {
		req.Packaging = append(req.Packaging, PackagingSelection{OptionID: p.OptionID, Quantity: p.Quantity})
	}
	for _, e := range body.Extras {
		req.Extras = append(req.Extras, Extra{Jacket: Jacket(e.Jacket)})
	}
	if body.DueDate != "" {
		due, err := parseDueDate(body.DueDate)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "dueDate must be an ISO-8601 date", nil)
			return
		}
		req.DueDate = &due
	}

	breakdown, err := h.quoter.Quote(r.Context(), req)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": breakdown})
}

// parseDueDate accepts a bare date or a full RFC 3339 timestamp. A bare date
// means end of that day is fine; midnight UTC keeps the threshold stable.
func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("unrecognized date format")
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
