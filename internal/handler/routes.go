package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Analytics   *AnalyticsHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers, rateLimiter *middleware.RateLimiter) {
	e.Validator = NewRequestValidator()

	e.GET("/health", Health)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1, every route is workspace scoped
	api := e.Group("/api/v1")
	api.Use(middleware.RequireWorkspace())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	transactions := api.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	budgets := api.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	analytics := api.Group("/analytics")
	analytics.GET("/variance", h.Analytics.GetVariance)
	analytics.GET("/variance/year", h.Analytics.GetVarianceYear)
	analytics.GET("/kpis", h.Analytics.GetKPIs)
	analytics.GET("/forecast", h.Analytics.GetForecast)
	analytics.GET("/categories", h.Analytics.GetCategoryTotals)
	analytics.GET("/scopes", h.Analytics.GetScopeTotals)
	analytics.GET("/periods", h.Analytics.GetPeriods)
	analytics.GET("/cashflow", h.Analytics.GetCashFlow)
	analytics.POST("/snapshots", h.Analytics.ArchiveSnapshot)
	analytics.GET("/snapshots", h.Analytics.GetSnapshot)
}

// Health handles GET /health
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
