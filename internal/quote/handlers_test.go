package quote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gulali-id/backend-gulali/internal/quote"
)

func newQuoteServer(t *testing.T) http.Handler {
	t.Helper()
	svc := quote.NewService(&stubReader{snap: baseSnapshot()}, nil, nil, zerolog.Nop())
	h := quote.NewHandlers(svc)
	return http.HandlerFunc(h.Create)
}

func postQuote(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateQuoteSuccess(t *testing.T) {
	handler := newQuoteServer(t)

	body := `{
		"categoryId": "` + catWedding + `",
		"packaging": [{"optionId": "` + optJarID + `", "quantity": 5}]
	}`
	rec := postQuote(t, handler, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			BasePrice      string `json:"basePrice"`
			TransactionFee string `json:"transactionFee"`
			Total          string `json:"total"`
			TotalWeightKg  string `json:"totalWeightKg"`
			Items          []struct {
				Label  string `json:"label"`
				Amount string `json:"amount"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "395", resp.Data.BasePrice)
	require.Equal(t, "17.255", resp.Data.TransactionFee)
	require.Equal(t, "612.255", resp.Data.Total)
	require.Equal(t, "5", resp.Data.TotalWeightKg)
	require.Len(t, resp.Data.Items, 6)
	require.Equal(t, "Base", resp.Data.Items[0].Label)
}

func TestCreateQuoteWithDateOnlyDueDate(t *testing.T) {
	handler := newQuoteServer(t)

	body := `{
		"categoryId": "` + catWedding + `",
		"packaging": [{"optionId": "` + optJarID + `", "quantity": 5}],
		"dueDate": "2030-06-15"
	}`
	rec := postQuote(t, handler, body)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateQuoteRejectsBadDueDate(t *testing.T) {
	handler := newQuoteServer(t)

	body := `{
		"categoryId": "` + catWedding + `",
		"packaging": [{"optionId": "` + optJarID + `", "quantity": 5}],
		"dueDate": "next tuesday"
	}`
	rec := postQuote(t, handler, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ISO-8601")
}

func TestCreateQuoteRejectsMalformedJSON(t *testing.T) {
	handler := newQuoteServer(t)
	rec := postQuote(t, handler, `{"categoryId":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateQuoteValidationFailure(t *testing.T) {
	handler := newQuoteServer(t)
	rec := postQuote(t, handler, `{"packaging": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION")
}

func TestCreateQuoteSurfacesEngineError(t *testing.T) {
	handler := newQuoteServer(t)

	body := `{
		"categoryId": "` + catBranded + `",
		"packaging": [{"optionId": "` + optJarID + `", "quantity": 1}]
	}`
	rec := postQuote(t, handler, body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "PACKAGING_NOT_ALLOWED")
}

func TestCreateQuoteCatalogGapIsOpaque(t *testing.T) {
	snap := baseSnapshot()
	snap.Tiers = nil
	svc := quote.NewService(&stubReader{snap: snap}, nil, nil, zerolog.Nop())
	handler := http.HandlerFunc(quote.NewHandlers(svc).Create)

	body := `{
		"categoryId": "` + catWedding + `",
		"packaging": [{"optionId": "` + optJarID + `", "quantity": 5}]
	}`
	rec := postQuote(t, handler, body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "UNABLE_TO_PRICE")
	require.NotContains(t, rec.Body.String(), "tier")
}
