// Package metrics exposes Prometheus collectors for the feed service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	feedCyclesTotal         *prometheus.CounterVec
	feedCycleDurationSecs   prometheus.Histogram
	feedPagesFetchedTotal   *prometheus.CounterVec
	feedLiveArticles        prometheus.Gauge
	feedLiveTrendingParts   prometheus.Gauge
	feedSourceArticlesTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		feedCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsfeed_cycles_total",
				Help: "Total number of refresh cycles, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		feedCycleDurationSecs = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsfeed_cycle_duration_seconds",
				Help:    "Histogram of full pipeline cycle durations.",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		)

		feedPagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsfeed_pages_fetched_total",
				Help: "Total pages fetched, labeled by site and result.",
			},
			[]string{"site", "result"},
		)

		feedLiveArticles = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsfeed_live_articles",
				Help: "Number of articles in the live snapshot.",
			},
		)

		feedLiveTrendingParts = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsfeed_live_trending_articles",
				Help: "Number of trending articles in the live snapshot.",
			},
		)

		feedSourceArticlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsfeed_source_articles_total",
				Help: "Articles produced per source across all cycles.",
			},
			[]string{"source"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname label from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCycle records one completed (or failed) cycle.
func ObserveCycle(outcome string, dur time.Duration) {
	feedCyclesTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		feedCycleDurationSecs.Observe(dur.Seconds())
	}
}

// ObservePageFetch records one page fetch attempt.
func ObservePageFetch(site string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	feedPagesFetchedTotal.WithLabelValues(SanitizeSite(site), result).Inc()
}

// ObserveSourceArticles records the article count one source contributed.
func ObserveSourceArticles(sourceKey string, count int) {
	feedSourceArticlesTotal.WithLabelValues(sourceKey).Add(float64(count))
}

// SetLiveCounts updates the live snapshot gauges after a publish.
func SetLiveCounts(total, trending int) {
	feedLiveArticles.Set(float64(total))
	feedLiveTrendingParts.Set(float64(trending))
}
