package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.HTTPRequests.WithLabelValues("/pools", "200"))
	RecordHTTPRequest("/pools", 200, 0.01)
	if got := testutil.ToFloat64(DefaultMetrics.HTTPRequests.WithLabelValues("/pools", "200")); got != before+1 {
		t.Fatalf("requests counter = %v, want %v", got, before+1)
	}

	errBefore := testutil.ToFloat64(DefaultMetrics.UpstreamErrors.WithLabelValues("pools"))
	RecordUpstream("pools", 0.2, nil)
	RecordUpstream("pools", 0.2, errors.New("boom"))
	if got := testutil.ToFloat64(DefaultMetrics.UpstreamErrors.WithLabelValues("pools")); got != errBefore+1 {
		t.Fatalf("upstream errors = %v, want %v", got, errBefore+1)
	}

	RecordCacheLookup(true)
	RecordCacheLookup(false)

	RecordSyncRun("success", 1.5, 3, 1, 1700000000)
	if got := testutil.ToFloat64(DefaultMetrics.LastSuccessfulSync); got != 1700000000 {
		t.Fatalf("last sync gauge = %v", got)
	}
	RecordSyncRun("error", 0.5, 0, 0, 1800000000)
	if got := testutil.ToFloat64(DefaultMetrics.LastSuccessfulSync); got != 1700000000 {
		t.Fatalf("failed run must not move the gauge, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordCacheLookup(true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "yieldscope_cache_lookups_total") {
		t.Fatalf("metrics output missing cache counter")
	}
}
