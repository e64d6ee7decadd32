package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves the derived reports
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	snapshotService  *service.SnapshotService
}

// NewAnalyticsHandler creates a new AnalyticsHandler. snapshotService may be nil when
// no archive is configured.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, snapshotService *service.SnapshotService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		snapshotService:  snapshotService,
	}
}

// GetVariance handles GET /api/v1/analytics/variance
func (h *AnalyticsHandler) GetVariance(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	now := h.analyticsService.Now()

	periodType, errs := periodParam(c)
	year, verr := intParam(c, "year", now.Year())
	if verr != nil {
		errs = append(errs, *verr)
	}
	index, verr := intParam(c, "index", util.CurrentIndex(periodType, now))
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	summary, err := h.analyticsService.GetBudgetSummary(c.Request().Context(), workspaceID, periodType, year, index, c.QueryParam("company"))
	if err != nil {
		return respondError(c, err, workspaceID, "compute budget variance")
	}
	return c.JSON(http.StatusOK, toBudgetSummaryResponse(summary))
}

// GetVarianceYear handles GET /api/v1/analytics/variance/year
func (h *AnalyticsHandler) GetVarianceYear(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	periodType, errs := periodParam(c)
	year, verr := intParam(c, "year", h.analyticsService.Now().Year())
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	summaries, err := h.analyticsService.GetBudgetYear(c.Request().Context(), workspaceID, periodType, year, c.QueryParam("company"))
	if err != nil {
		return respondError(c, err, workspaceID, "compute budget variance")
	}

	resp := make([]BudgetSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = toBudgetSummaryResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetKPIs handles GET /api/v1/analytics/kpis
func (h *AnalyticsHandler) GetKPIs(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	withForecast := true
	if raw := c.QueryParam("forecast"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return NewValidationError(c, "Invalid query parameters", []ValidationError{
				{Field: "forecast", Message: "Must be true or false"},
			})
		}
		withForecast = v
	}

	dashboard, err := h.analyticsService.GetKPIDashboard(c.Request().Context(), workspaceID, withForecast)
	if err != nil {
		return respondError(c, err, workspaceID, "compute KPIs")
	}
	return c.JSON(http.StatusOK, toKPIDashboardResponse(dashboard))
}

// GetForecast handles GET /api/v1/analytics/forecast
func (h *AnalyticsHandler) GetForecast(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	months, verr := intParam(c, "months", 0)
	if verr != nil {
		return NewValidationError(c, "Invalid query parameters", []ValidationError{*verr})
	}

	forecast, err := h.analyticsService.GetForecast(c.Request().Context(), workspaceID, months)
	if err != nil {
		return respondError(c, err, workspaceID, "compute forecast")
	}
	return c.JSON(http.StatusOK, toForecastResponse(forecast))
}

// GetCategoryTotals handles GET /api/v1/analytics/categories
func (h *AnalyticsHandler) GetCategoryTotals(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	from, to, errs := dateRangeParams(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}
	txType := domain.TransactionType(c.QueryParam("type"))
	if txType == "" {
		txType = domain.TransactionTypeExpense
	}

	totals, err := h.analyticsService.GetCategoryTotals(c.Request().Context(), workspaceID, txType, from, to)
	if err != nil {
		return respondError(c, err, workspaceID, "compute category totals")
	}
	return c.JSON(http.StatusOK, toCategoryAmountResponses(totals))
}

// GetScopeTotals handles GET /api/v1/analytics/scopes
func (h *AnalyticsHandler) GetScopeTotals(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	from, to, errs := dateRangeParams(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}
	scope := domain.ScopeKey(c.QueryParam("scope"))
	if scope == "" {
		scope = domain.ScopeCompany
	}

	totals, err := h.analyticsService.GetScopeTotals(c.Request().Context(), workspaceID, scope, from, to)
	if err != nil {
		return respondError(c, err, workspaceID, "compute scope totals")
	}

	resp := make([]ScopeTotalResponse, len(totals))
	for i, t := range totals {
		resp[i] = ScopeTotalResponse{
			Scope:   t.Scope,
			Income:  t.Income.StringFixed(2),
			Expense: t.Expense.StringFixed(2),
			Net:     t.Net.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPeriods handles GET /api/v1/analytics/periods
func (h *AnalyticsHandler) GetPeriods(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	periodType, errs := periodParam(c)
	window, verr := intParam(c, "window", 6)
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	buckets, err := h.analyticsService.GetPeriodBuckets(c.Request().Context(), workspaceID, periodType, window)
	if err != nil {
		return respondError(c, err, workspaceID, "bucket transactions")
	}
	return c.JSON(http.StatusOK, toPeriodBucketResponses(buckets))
}

// GetCashFlow handles GET /api/v1/analytics/cashflow
func (h *AnalyticsHandler) GetCashFlow(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	from, to, errs := dateRangeParams(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	flows, err := h.analyticsService.GetCompanyCashFlow(c.Request().Context(), workspaceID, from, to)
	if err != nil {
		return respondError(c, err, workspaceID, "compute cash flow")
	}

	resp := make([]CompanyCashFlowResponse, len(flows))
	for i, f := range flows {
		resp[i] = CompanyCashFlowResponse{
			Company:      f.Company,
			Income:       f.Income.StringFixed(2),
			Expense:      f.Expense.StringFixed(2),
			TransfersIn:  f.TransfersIn.StringFixed(2),
			TransfersOut: f.TransfersOut.StringFixed(2),
			NetCashFlow:  f.NetCashFlow.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ArchiveSnapshot handles POST /api/v1/analytics/snapshots
func (h *AnalyticsHandler) ArchiveSnapshot(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if h.snapshotService == nil {
		return NewUnavailableError(c, "Snapshot archive is not configured")
	}

	archived, err := h.snapshotService.Archive(c.Request().Context(), workspaceID)
	if err != nil {
		return respondError(c, err, workspaceID, "archive snapshot")
	}
	return c.JSON(http.StatusCreated, archived)
}

// GetSnapshot handles GET /api/v1/analytics/snapshots?key=
func (h *AnalyticsHandler) GetSnapshot(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if h.snapshotService == nil {
		return NewUnavailableError(c, "Snapshot archive is not configured")
	}

	key := c.QueryParam("key")
	if key == "" {
		return NewValidationError(c, "Invalid query parameters", []ValidationError{
			{Field: "key", Message: "Is required"},
		})
	}

	snapshot, err := h.snapshotService.Get(c.Request().Context(), workspaceID, key)
	if err != nil {
		return respondError(c, err, workspaceID, "load snapshot")
	}
	return c.JSON(http.StatusOK, snapshot)
}

// periodParam reads the period query parameter, defaulting to monthly
func periodParam(c echo.Context) (domain.PeriodType, []ValidationError) {
	raw := c.QueryParam("period")
	if raw == "" {
		return domain.PeriodMonthly, nil
	}
	periodType, err := util.ParsePeriodType(raw)
	if err != nil {
		return "", []ValidationError{{Field: "period", Message: "Must be one of: monthly quarterly annual"}}
	}
	return periodType, nil
}
