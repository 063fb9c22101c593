package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "epicentre_refreshes_total",
	Help: "The number of refresh attempts by outcome",
}, []string{"outcome"})

var refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "epicentre_refresh_duration_seconds",
	Help:    "The duration of a full delete-fetch-parse-save refresh",
	Buckets: prometheus.DefBuckets,
})

var featuresStored = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "epicentre_features_stored",
	Help: "The number of features in the store after the last refresh",
})
