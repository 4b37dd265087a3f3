package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/internal/messaging"
)

// ConsumerStatsSource reports the rating event consumer's position.
type ConsumerStatsSource interface {
	ConsumerStats() messaging.ConsumerStats
}

// Metrics are the recommendation engine's Prometheus collectors.
type Metrics struct {
	factory promauto.Factory

	rebuildDuration prometheus.Histogram
	rebuildsTotal   *prometheus.CounterVec
	snapshotSize    *prometheus.GaugeVec
	snapshotVersion prometheus.Gauge
	scoringLatency  *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec
	ratingsIngested prometheus.Counter
	consumerLag     prometheus.GaugeFunc
	consumerOffset  prometheus.GaugeFunc
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		factory: factory,
		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "movierec_rebuild_duration_seconds",
			Help:    "Time to load data and rebuild the recommendation matrices",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movierec_rebuilds_total",
			Help: "Matrix rebuilds by outcome",
		}, []string{"status"}),
		snapshotSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "movierec_snapshot_size",
			Help: "Entities in the serving snapshot",
		}, []string{"entity"}),
		snapshotVersion: factory.NewGauge(prometheus.GaugeOpts{
			Name: "movierec_snapshot_version",
			Help: "Version of the serving snapshot",
		}),
		scoringLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "movierec_scoring_duration_seconds",
			Help:    "Recommendation scoring latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movierec_cache_requests_total",
			Help: "Response cache lookups by result",
		}, []string{"result"}),
		ratingsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "movierec_ratings_ingested_total",
			Help: "Ratings accepted through the API",
		}),
	}
}

func (m *Metrics) RecordRebuild(duration time.Duration, err error) {
	m.rebuildDuration.Observe(duration.Seconds())
	if err != nil {
		m.rebuildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.rebuildsTotal.WithLabelValues("success").Inc()
}

func (m *Metrics) RecordSnapshot(snap *engine.Snapshot) {
	status := snap.Status()
	m.snapshotVersion.Set(float64(status.Version))
	m.snapshotSize.WithLabelValues("users").Set(float64(status.Users))
	m.snapshotSize.WithLabelValues("movies").Set(float64(status.Movies))
	m.snapshotSize.WithLabelValues("ratings").Set(float64(status.Ratings))
}

func (m *Metrics) ObserveScoring(method string, start time.Time) {
	m.scoringLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *Metrics) RecordRating() {
	m.ratingsIngested.Inc()
}

// WatchConsumer exports the event consumer's lag and committed offset,
// sampled at scrape time. Call it at most once.
func (m *Metrics) WatchConsumer(src ConsumerStatsSource) {
	m.consumerLag = m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "movierec_consumer_lag",
		Help: "Rating events not yet read by the rebuild consumer",
	}, func() float64 { return float64(src.ConsumerStats().Lag) })
	m.consumerOffset = m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "movierec_consumer_offset",
		Help: "Last offset read by the rebuild consumer",
	}, func() float64 { return float64(src.ConsumerStats().Offset) })
}
