// Package metrics exposes a store's statistics as Prometheus metrics.
// The collector is pull-based: counters are read from Stats() at scrape
// time, so attaching it adds nothing to the operation hot path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/decimalbell/keystore"
)

type StoreCollector struct {
	store *keystore.Store

	keys       *prometheus.Desc
	buckets    *prometheus.Desc
	maxChain   *prometheus.Desc
	operations *prometheus.Desc
	writes     *prometheus.Desc
	poolBlocks *prometheus.Desc
	poolHeap   *prometheus.Desc
}

// NewStoreCollector wraps store in a prometheus.Collector. Register it
// with a registry; it does not register itself.
func NewStoreCollector(store *keystore.Store) *StoreCollector {
	return &StoreCollector{
		store: store,
		keys: prometheus.NewDesc(
			"keystore_keys",
			"Number of live keys in the store",
			nil, nil,
		),
		buckets: prometheus.NewDesc(
			"keystore_buckets",
			"Bucket counts by state",
			[]string{"state"}, nil,
		),
		maxChain: prometheus.NewDesc(
			"keystore_bucket_max_keys",
			"Largest number of keys held by a single bucket",
			nil, nil,
		),
		operations: prometheus.NewDesc(
			"keystore_operations_total",
			"Operations processed, by operation and result",
			[]string{"op", "result"}, nil,
		),
		writes: prometheus.NewDesc(
			"keystore_writes_total",
			"Successful writes, split into inserts and in-place updates",
			[]string{"kind"}, nil,
		),
		poolBlocks: prometheus.NewDesc(
			"keystore_pool_blocks",
			"Block pool occupancy",
			[]string{"pool", "kind"}, nil,
		),
		poolHeap: prometheus.NewDesc(
			"keystore_pool_heap_total",
			"Blocks that bypassed the pool slab, by direction",
			[]string{"pool", "direction"}, nil,
		),
	}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.buckets
	ch <- c.maxChain
	ch <- c.operations
	ch <- c.writes
	ch <- c.poolBlocks
	ch <- c.poolHeap
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.Stats()

	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue,
		float64(st.Distribution.TotalKeys))

	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue,
		float64(st.Distribution.InitializedBuckets), "initialized")
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue,
		float64(st.Distribution.NonemptyBuckets), "nonempty")
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue,
		float64(st.Distribution.EmptyBuckets), "empty")
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue,
		float64(st.Distribution.CollisionBuckets), "collision")

	ch <- prometheus.MustNewConstMetric(c.maxChain, prometheus.GaugeValue,
		float64(st.Distribution.MaxKeysInBucket))

	ops := st.Ops
	c.collectOp(ch, "set", ops.SetTotal, ops.SetFailed)
	c.collectOp(ch, "get", ops.GetTotal, ops.GetFailed)
	c.collectOp(ch, "delete", ops.DeleteTotal, ops.DeleteFailed)

	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue,
		float64(ops.Inserts), "insert")
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue,
		float64(ops.Updates), "update")

	c.collectPool(ch, "chain", st.ChainPool)
	c.collectPool(ch, "tree", st.TreePool)
}

func (c *StoreCollector) collectOp(ch chan<- prometheus.Metric, op string, total, failed uint64) {
	ch <- prometheus.MustNewConstMetric(c.operations, prometheus.CounterValue,
		float64(total-failed), op, "ok")
	ch <- prometheus.MustNewConstMetric(c.operations, prometheus.CounterValue,
		float64(failed), op, "failed")
}

func (c *StoreCollector) collectPool(ch chan<- prometheus.Metric, pool string, st keystore.PoolStats) {
	ch <- prometheus.MustNewConstMetric(c.poolBlocks, prometheus.GaugeValue,
		float64(st.Capacity), pool, "capacity")
	ch <- prometheus.MustNewConstMetric(c.poolBlocks, prometheus.GaugeValue,
		float64(st.SlabUsed), pool, "slab_used")
	ch <- prometheus.MustNewConstMetric(c.poolBlocks, prometheus.GaugeValue,
		float64(st.FreeBlocks), pool, "free")
	ch <- prometheus.MustNewConstMetric(c.poolHeap, prometheus.CounterValue,
		float64(st.HeapAllocs), pool, "alloc")
	ch <- prometheus.MustNewConstMetric(c.poolHeap, prometheus.CounterValue,
		float64(st.HeapFrees), pool, "free")
}
