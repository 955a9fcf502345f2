package pptxjson

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports conversion telemetry to Prometheus. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	slidesConverted  prometheus.Counter
	slideDuration    prometheus.Histogram
	imagesLoaded     prometheus.Counter
	imageCacheHits   prometheus.Counter
	elementFailures  *prometheus.CounterVec
	conversionErrors prometheus.Counter
}

// NewMetrics registers the conversion metrics under namespace on reg
// (prometheus.DefaultRegisterer when nil). Collectors that are already
// registered are reused, so calling it twice with the same registry is safe.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "pptxjson"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{}
	var err error
	if m.slidesConverted, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slides_converted_total",
		Help:      "Slides converted to resolved records.",
	})); err != nil {
		return nil, err
	}
	if m.slideDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "slide_duration_seconds",
		Help:      "Time spent resolving a single slide.",
		Buckets:   prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if m.imagesLoaded, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_loaded_total",
		Help:      "Media entries read from the package and inlined.",
	})); err != nil {
		return nil, err
	}
	if m.imageCacheHits, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cache_hits_total",
		Help:      "Media requests served from the per-conversion cache.",
	})); err != nil {
		return nil, err
	}
	if m.elementFailures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "element_failures_total",
		Help:      "Elements degraded because an archive entry could not be read.",
	}, []string{"scope"})); err != nil {
		return nil, err
	}
	if m.conversionErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversion_errors_total",
		Help:      "Packages that failed to convert.",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register conversion metric: %w", err)
	}
	return c, nil
}

func (m *Metrics) recordSlide(d time.Duration) {
	if m == nil {
		return
	}
	m.slidesConverted.Inc()
	m.slideDuration.Observe(d.Seconds())
}

func (m *Metrics) recordImageLoad() {
	if m == nil {
		return
	}
	m.imagesLoaded.Inc()
}

func (m *Metrics) recordImageCacheHit() {
	if m == nil {
		return
	}
	m.imageCacheHits.Inc()
}

func (m *Metrics) recordElementFailure(scope Scope) {
	if m == nil {
		return
	}
	m.elementFailures.WithLabelValues(string(scope)).Inc()
}

func (m *Metrics) recordConversionError() {
	if m == nil {
		return
	}
	m.conversionErrors.Inc()
}
