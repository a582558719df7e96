// Package metrics exposes the integrity model to Prometheus.
//
// The per-pillar counters are read from the debounced cache at scrape time, so a
// scrape never costs more than the cache allows. Operation counters and durations are
// recorded by the integrity service.
package metrics

import (
	"context"
	"time"

	"integrity-service/core/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "integrity"

// Source serves the current per-pillar counters of every collection.
type Source interface {
	AllMetrics(ctx context.Context) ([]model.PillarCollectionMetrics, error)
}

// PillarCollector is a prometheus.Collector over a Source.
type PillarCollector struct {
	source  Source
	timeout time.Duration
	log     *zap.Logger

	files          *prometheus.Desc
	missing        *prometheus.Desc
	checksumErrors *prometheus.Desc
	scrapeOK       *prometheus.Desc
}

// NewPillarCollector creates a collector reading source with the given scrape timeout.
func NewPillarCollector(source Source, timeout time.Duration, log *zap.Logger) *PillarCollector {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	labels := []string{"collection", "pillar"}
	return &PillarCollector{
		source:         source,
		timeout:        timeout,
		log:            log,
		files:          prometheus.NewDesc(namespace+"_pillar_files", "Files EXISTING at the pillar.", labels, nil),
		missing:        prometheus.NewDesc(namespace+"_pillar_missing_files", "Files MISSING at the pillar.", labels, nil),
		checksumErrors: prometheus.NewDesc(namespace+"_pillar_checksum_errors", "Files with checksum ERROR at the pillar.", labels, nil),
		scrapeOK:       prometheus.NewDesc(namespace+"_pillar_scrape_success", "1 if the last scrape of the pillar counters succeeded.", nil, nil),
	}
}

func (c *PillarCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.files
	ch <- c.missing
	ch <- c.checksumErrors
	ch <- c.scrapeOK
}

func (c *PillarCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	all, err := c.source.AllMetrics(ctx)
	if err != nil {
		c.log.Warn("Failed to read pillar metrics", zap.Error(err))
		ch <- prometheus.MustNewConstMetric(c.scrapeOK, prometheus.GaugeValue, 0)
		return
	}
	for _, m := range all {
		ch <- prometheus.MustNewConstMetric(c.files, prometheus.GaugeValue, float64(m.Files), m.CollectionID, m.PillarID)
		ch <- prometheus.MustNewConstMetric(c.missing, prometheus.GaugeValue, float64(m.MissingFiles), m.CollectionID, m.PillarID)
		ch <- prometheus.MustNewConstMetric(c.checksumErrors, prometheus.GaugeValue, float64(m.ChecksumErrors), m.CollectionID, m.PillarID)
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeOK, prometheus.GaugeValue, 1)
}

// Recorder counts and times integrity operations.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	ingested   *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers it with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Integrity operations by name and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of integrity operations.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"operation"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_items_total",
			Help:      "Report items ingested by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.operations, r.duration, r.ingested)
	return r
}

// Observe records one operation. A nil recorder ignores the call.
func (r *Recorder) Observe(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Ingested counts n ingested items of kind. A nil recorder ignores the call.
func (r *Recorder) Ingested(kind string, n int) {
	if r == nil {
		return
	}
	r.ingested.WithLabelValues(kind).Add(float64(n))
}

// NewRegistry returns a registry with the Go and process collectors and cs.
func NewRegistry(cs ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(cs...)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
