// Package metrics holds the Prometheus collectors exported on the metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_cache_lookups_total",
		Help: "Stats cache lookups by result",
	}, []string{"result"}) // result: hit, miss, bypass

	CacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_cache_errors_total",
		Help: "Stats cache backend failures that fell through to direct computation",
	}, []string{"op"}) // op: get, set, decode

	StatsQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_queries_total",
		Help: "Stats computations against the trace store",
	}, []string{"endpoint", "status"}) // status: ok, error

	TracesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traces_recorded_total",
		Help: "Ingested hits by outcome",
	}, []string{"outcome"}) // outcome: created, continued

	BotHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traces_bot_hits_total",
		Help: "Ingested hits classified as bots",
	})

	SeededTracesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seeded_traces_total",
		Help: "Synthetic traces written by the seeder",
	})
)
