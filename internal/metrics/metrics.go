// Package metrics provides Prometheus metrics for the client core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one Engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loginsTotal      *prometheus.CounterVec
	liveFallbacks    prometheus.Counter
	navigationsTotal *prometheus.CounterVec
	uploadsTotal     *prometheus.CounterVec
	uploadInFlight   prometheus.Gauge
	listingEntries   prometheus.Gauge
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbit_logins_total",
				Help: "Total successful logins by session mode",
			},
			[]string{"mode"},
		),
		liveFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orbit_live_fallbacks_total",
				Help: "Live login attempts that fell back to demo mode",
			},
		),
		navigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbit_navigations_total",
				Help: "Folder navigations by direction",
			},
			[]string{"direction"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbit_uploads_total",
				Help: "Finished upload transactions by result",
			},
			[]string{"result"},
		),
		uploadInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orbit_upload_in_flight",
				Help: "1 while an upload transaction holds the slot",
			},
		),
		listingEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orbit_listing_entries",
				Help: "Number of entries in the active listing",
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLogin counts a successful login in mode ("demo" or "live").
func (m *Metrics) RecordLogin(mode string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(mode).Inc()
}

// RecordLiveFallback counts a live login that ended in demo mode.
func (m *Metrics) RecordLiveFallback() {
	if m == nil {
		return
	}
	m.liveFallbacks.Inc()
}

// RecordNavigation counts a descend ("down") or ascend ("up").
func (m *Metrics) RecordNavigation(direction string) {
	if m == nil {
		return
	}
	m.navigationsTotal.WithLabelValues(direction).Inc()
}

// RecordUpload counts a finished upload by result ("completed", "failed", "cancelled", "rejected").
func (m *Metrics) RecordUpload(result string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(result).Inc()
}

// SetUploadInFlight updates the in-flight gauge.
func (m *Metrics) SetUploadInFlight(inFlight bool) {
	if m == nil {
		return
	}
	if inFlight {
		m.uploadInFlight.Set(1)
	} else {
		m.uploadInFlight.Set(0)
	}
}

// SetListingEntries records the size of the active listing.
func (m *Metrics) SetListingEntries(n int) {
	if m == nil {
		return
	}
	m.listingEntries.Set(float64(n))
}
