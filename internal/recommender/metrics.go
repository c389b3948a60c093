package recommender

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommender_orders_ingested_total",
		Help: "Orders copied into the purchase history store",
	})
	ingestFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommender_ingest_failures_total",
		Help: "Orders that failed to ingest",
	})
	setsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommender_sets_emitted_total",
		Help: "Recommendation sets published to the bus",
	})
	generationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommender_generation_failures_total",
		Help: "Users for whom recommendation generation failed",
	})
	fallbackServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommender_fallback_served_total",
		Help: "Recommendation sets served from the hardcoded fallback tier",
	})
)
