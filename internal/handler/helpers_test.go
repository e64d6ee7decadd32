package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/dafibh/fortuna/fortuna-insights/internal/testutil"
	"github.com/labstack/echo/v4"
)

var fixedNow = time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	e            *echo.Echo
	transactions *testutil.MockTransactionRepository
	budgets      *testutil.MockBudgetRepository
	snapshots    *testutil.MockSnapshotRepository
	publisher    *testutil.MockEventPublisher
}

func newTestServer() *testServer {
	ts := &testServer{
		e:            echo.New(),
		transactions: testutil.NewMockTransactionRepository(),
		budgets:      testutil.NewMockBudgetRepository(),
		snapshots:    testutil.NewMockSnapshotRepository(),
		publisher:    testutil.NewMockEventPublisher(),
	}

	analytics := service.NewAnalyticsService(ts.transactions, ts.budgets, service.AnalyticsOptions{})
	analytics.SetClock(func() time.Time { return fixedNow })

	RegisterRoutes(ts.e, Handlers{
		Transaction: NewTransactionHandler(service.NewTransactionService(ts.transactions, ts.publisher)),
		Budget:      NewBudgetHandler(service.NewBudgetService(ts.budgets, ts.publisher)),
		Analytics:   NewAnalyticsHandler(analytics, service.NewSnapshotService(analytics, ts.snapshots, ts.publisher)),
	}, nil)
	return ts
}

// do sends a request for workspace 1 through the router
func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(middleware.WorkspaceHeader, "1")
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body %s)", err, rec.Body.String())
	}
}
