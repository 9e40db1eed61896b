package catalog

import (
	"context"
	"net/http"

	"github.com/gulali-id/backend-gulali/internal/common"
)

// Reader is the read-side of the catalog used by public handlers and the
// quote service.
type Reader interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Handlers serves the public, read-only catalog endpoints the storefront
// needs to render the quote form.
type Handlers struct {
	reader Reader
}

// NewHandlers constructs public catalog Handlers.
func NewHandlers(reader Reader) *Handlers {
	return &Handlers{reader: reader}
}

// ListCategories handles GET /api/v1/catalog/categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reader.Snapshot(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if snap.Categories == nil {
		snap.Categories = []Category{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap.Categories})
}

// ListPackagingOptions handles GET /api/v1/catalog/packaging-options. An
// optional categoryId query narrows the list to options that allow it.
func (h *Handlers) ListPackagingOptions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reader.Snapshot(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	categoryID := r.URL.Query().Get("categoryId")
	out := make([]PackagingOption, 0, len(snap.Packaging))
	for _, opt := range snap.Packaging {
		if categoryID != "" && !opt.AllowsCategory(categoryID) {
			continue
		}
		out = append(out, opt)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
