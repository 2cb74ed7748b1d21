package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// AnalysisHandler serves yield and valuation reports.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler with the provided service dependency.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

func analysisQuery(r *http.Request) (request.AnalysisQuery, error) {
	q := r.URL.Query()
	return request.ParseAnalysisQuery(q.Get("currency"), q.Get("now"), q.Get("tax"), q.Get("skip_dividends"))
}

// Portfolio handles GET requests to analyze every account plus the total.
//
// Endpoint: GET /api/analysis
// Query Parameters:
//   - currency: display currency, e.g. EUR (default: base currency)
//   - now: evaluation date YYYY-MM-DD (default: today)
//   - tax: dividend withholding rate in [0, 1)
//   - skip_dividends: true to ignore dividend history
//
// Response: 200 OK with PortfolioResponse
// Error: 400 Bad Request if a query parameter is invalid
// Error: 422 Unprocessable Entity if yields cannot be computed
// Error: 503 Service Unavailable if market data cannot be reached
func (h *AnalysisHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	q, err := analysisQuery(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	report, err := h.analysisService.AnalyzePortfolio(r.Context(), q)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToAnalyzePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.NewPortfolioResponse(report))
}

// Account handles GET requests to analyze a single account.
//
// Endpoint: GET /api/analysis/{accountId}
// Query Parameters: same as Portfolio
// Response: 200 OK with AccountAnalysisResponse
// Error: 404 Not Found if the account does not exist
// Error: 422 Unprocessable Entity if the account has no usable history
func (h *AnalysisHandler) Account(w http.ResponseWriter, r *http.Request) {
	q, err := analysisQuery(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	report, err := h.analysisService.AnalyzeAccount(r.Context(), chi.URLParam(r, "accountId"), q)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToAnalyzePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.NewAccountAnalysisResponse(report))
}
