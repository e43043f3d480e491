package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iform",
		Subsystem: "coach",
		Name:      "analyses_total",
		Help:      "Coaching analyses by outcome.",
	}, []string{"outcome"})

	stravaFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iform",
		Subsystem: "strava",
		Name:      "fetches_total",
		Help:      "Strava activity fetches by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(analysesTotal, stravaFetchesTotal)
}
