package relationship

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// danglingEdgesTotal 悬空关系边（IntegrityWarning），按边类型统计
	danglingEdgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "familytree_dangling_edges_total",
		Help: "Relationship edges referencing a person missing from the family snapshot",
	}, []string{"edge"})

	deriveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "familytree_derive_duration_seconds",
		Help:    "Time to derive one member's relationships",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	labelQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "familytree_label_queries_total",
		Help: "Relationship label computations",
	})
)
