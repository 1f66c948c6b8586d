package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Resolutions *prometheus.CounterVec
	CacheHits   prometheus.Counter
	CacheErrors prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regionalgeo",
			Name:      "resolutions_total",
			Help:      "Resolutions served, by status code.",
		}, []string{"status"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regionalgeo",
			Name:      "cache_hits_total",
			Help:      "Lookups answered from the persisted cache.",
		}),
		CacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regionalgeo",
			Name:      "cache_errors_total",
			Help:      "Cache reads or writes that failed.",
		}),
	}
	reg.MustRegister(m.Resolutions, m.CacheHits, m.CacheErrors)
	return m
}
