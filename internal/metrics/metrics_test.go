package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(nil)

	m.RecordLogin("demo")
	m.RecordLogin("demo")
	m.RecordLogin("live")
	m.RecordLiveFallback()
	m.RecordNavigation("down")
	m.RecordNavigation("up")
	m.RecordNavigation("down")
	m.RecordUpload("completed")
	m.RecordUpload("rejected")
	m.SetUploadInFlight(true)
	m.SetListingEntries(6)

	if got := testutil.ToFloat64(m.loginsTotal.WithLabelValues("demo")); got != 2 {
		t.Errorf("demo logins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.liveFallbacks); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.navigationsTotal.WithLabelValues("down")); got != 2 {
		t.Errorf("down navigations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected uploads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.uploadInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.listingEntries); got != 6 {
		t.Errorf("listing entries = %v, want 6", got)
	}

	m.SetUploadInFlight(false)
	if got := testutil.ToFloat64(m.uploadInFlight); got != 0 {
		t.Errorf("in flight after reset = %v, want 0", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordLogin("demo")
	m.RecordLiveFallback()
	m.RecordNavigation("up")
	m.RecordUpload("failed")
	m.SetUploadInFlight(true)
	m.SetListingEntries(1)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.RecordLogin("demo")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `orbit_logins_total{mode="demo"} 1`) {
		t.Errorf("metrics output missing login counter:\n%s", body)
	}
}
