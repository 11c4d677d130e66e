// Package obsmetrics is the engine's Prometheus instrumentation, adapted
// from cuemby-warren's pkg/metrics: a package-level var block of
// prometheus collectors registered in init(), plus a Collector that
// implements bptree.MetricsSink by writing into them.
package obsmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bptree_cache_hits_total",
			Help: "Total number of node cache hits",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bptree_cache_misses_total",
			Help: "Total number of node cache misses",
		},
	)

	CommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bptree_commits_total",
			Help: "Total number of committed transactions",
		},
	)

	RollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bptree_rollbacks_total",
			Help: "Total number of rolled-back transactions",
		},
	)

	NodesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bptree_nodes_written_total",
			Help: "Total number of nodes flushed on commit, by operation",
		},
		[]string{"op"},
	)

	LeavesScannedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bptree_leaves_scanned_total",
			Help: "Total number of leaf nodes visited while executing queries",
		},
	)
)

func init() {
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CommitsTotal)
	prometheus.MustRegister(RollbacksTotal)
	prometheus.MustRegister(NodesWrittenTotal)
	prometheus.MustRegister(LeavesScannedTotal)
}

// Collector implements bptree.MetricsSink against the package-level
// Prometheus collectors above.
type Collector struct{}

func (Collector) CacheHit()  { CacheHitsTotal.Inc() }
func (Collector) CacheMiss() { CacheMissesTotal.Inc() }

func (Collector) Committed(created, updated, deleted int) {
	CommitsTotal.Inc()
	NodesWrittenTotal.WithLabelValues("create").Add(float64(created))
	NodesWrittenTotal.WithLabelValues("update").Add(float64(updated))
	NodesWrittenTotal.WithLabelValues("delete").Add(float64(deleted))
}

func (Collector) RolledBack() { RollbacksTotal.Inc() }
func (Collector) ScannedLeaf() { LeavesScannedTotal.Inc() }
