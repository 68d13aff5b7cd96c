package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_CountsByRoute(t *testing.T) {
	p := NewProvider(Config{})
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/patients/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "x") })

	for _, path := range []string{"/patients/1", "/patients/2", "/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/patients/:id", "200")); got != 2 {
		t.Errorf("expected 2 requests on route pattern, got %v", got)
	}
	if got := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/boom", "409")); got != 1 {
		t.Errorf("expected HTTPError status to be recorded, got %v", got)
	}
	if got := testutil.ToFloat64(p.activeRequests); got != 0 {
		t.Errorf("expected no request in flight, got %v", got)
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	p := NewProvider(Config{MetricsEnabled: BoolPtr(false)})
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := testutil.CollectAndCount(p.requests); got != 0 {
		t.Errorf("expected no series when disabled, got %d", got)
	}
}

func TestBusinessCounters(t *testing.T) {
	p := NewProvider(Config{})
	p.TabOpened("dossiers", false)
	p.TabOpened("dossiers", true)
	p.TabOpened("dossiers", true)
	p.SearchPerformed(map[string]int{"patients": 2, "todos": 1})
	p.AttendeesImported(3, 1)
	p.ConsultationReaped()
	p.CacheInvalidated("patients")

	if got := testutil.ToFloat64(p.tabs.WithLabelValues("dossiers", "focused")); got != 2 {
		t.Errorf("expected 2 focused, got %v", got)
	}
	if got := testutil.ToFloat64(p.searchHits.WithLabelValues("patients")); got != 2 {
		t.Errorf("expected 2 patient hits, got %v", got)
	}
	if got := testutil.ToFloat64(p.imports.WithLabelValues("unmatched")); got != 1 {
		t.Errorf("expected 1 unmatched, got %v", got)
	}
	if got := testutil.ToFloat64(p.reaped); got != 1 {
		t.Errorf("expected 1 reaped, got %v", got)
	}
}

func TestNilProvider_IsNoop(t *testing.T) {
	var p *Provider
	p.TabOpened("todos", false)
	p.SearchPerformed(nil)
	p.AttendeesImported(1, 1)
	p.ConsultationReaped()
	p.CacheInvalidated("todos")
	p.SetDBPool(1, 1)

	e := echo.New()
	e.Use(p.MetricsMiddleware())
	called := false
	e.GET("/x", func(c echo.Context) error { called = true; return errors.New("fail") })
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called {
		t.Error("handler not called through nil provider middleware")
	}
}

func TestHandler_Exposition(t *testing.T) {
	p := NewProvider(Config{ServiceName: "test"})
	p.ConsultationReaped()
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := p.Handler()(e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)); err != nil {
		t.Fatal(err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `consultations_reaped_total{service="test"} 1`) {
		t.Errorf("missing reaped counter in exposition:\n%s", body)
	}
}
