package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver_ObserveDispatch(t *testing.T) {
	o, err := NewObserver()
	if err != nil {
		t.Fatalf("observer: %v", err)
	}

	o.ObserveDispatch("farmers", 200, "", 20*time.Millisecond)
	o.ObserveDispatch("farmers", 200, "", 30*time.Millisecond)
	o.ObserveDispatch("farmers", 400, "Form submission error", time.Millisecond)

	if got := testutil.ToFloat64(o.requests.WithLabelValues("farmers", "200", "")); got != 2 {
		t.Fatalf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(o.requests.WithLabelValues("farmers", "400", "Form submission error")); got != 1 {
		t.Fatalf("expected 1 rejected request, got %v", got)
	}
	if got := testutil.CollectAndCount(o.duration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestObserver_Handler(t *testing.T) {
	o, err := NewObserver()
	if err != nil {
		t.Fatalf("observer: %v", err)
	}
	o.ObserveDispatch("farmers", 500, "Workflow processing error", time.Millisecond)

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `formintake_requests_total{error_type="Workflow processing error",service="farmers",status="500"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", rec.Body.String())
	}
}
