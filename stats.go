package keystore

import (
	"math"
	"sort"
	"sync/atomic"
)

// counters accumulate per-operation totals. Plain atomic increments; no
// locks, nothing on the hot path beyond the add itself.
type counters struct {
	setTotal     atomic.Uint64
	setFailed    atomic.Uint64
	getTotal     atomic.Uint64
	getFailed    atomic.Uint64
	deleteTotal  atomic.Uint64
	deleteFailed atomic.Uint64
	inserts      atomic.Uint64
	updates      atomic.Uint64
}

func (c *counters) observeSet(inserted bool, err error) {
	c.setTotal.Add(1)
	if err != nil {
		c.setFailed.Add(1)
		return
	}
	if inserted {
		c.inserts.Add(1)
	} else {
		c.updates.Add(1)
	}
}

func (c *counters) observeGet(err error) {
	c.getTotal.Add(1)
	if err != nil {
		c.getFailed.Add(1)
	}
}

func (c *counters) observeDelete(err error) {
	c.deleteTotal.Add(1)
	if err != nil {
		c.deleteFailed.Add(1)
	}
}

func (c *counters) snapshot() OpCounts {
	return OpCounts{
		SetTotal:     c.setTotal.Load(),
		SetFailed:    c.setFailed.Load(),
		GetTotal:     c.getTotal.Load(),
		GetFailed:    c.getFailed.Load(),
		DeleteTotal:  c.deleteTotal.Load(),
		DeleteFailed: c.deleteFailed.Load(),
		Inserts:      c.inserts.Load(),
		Updates:      c.updates.Load(),
	}
}

// OpCounts is a point-in-time copy of the operation counters.
type OpCounts struct {
	SetTotal     uint64
	SetFailed    uint64
	GetTotal     uint64
	GetFailed    uint64
	DeleteTotal  uint64
	DeleteFailed uint64
	Inserts      uint64
	Updates      uint64
}

// DistributionStats describes how keys spread across buckets.
type DistributionStats struct {
	TotalKeys          int
	InitializedBuckets int
	NonemptyBuckets    int
	EmptyBuckets       int
	EmptyBucketPercent float64

	MaxKeysInBucket     int
	MinKeysInBucket     int
	MeanKeysPerBucket   float64 // over nonempty buckets
	MedianKeysPerBucket float64
	StddevKeysPerBucket float64

	CollisionBuckets         int // buckets holding more than one key
	HighestCollisionInBucket int
	MeanCollisionsPerBucket  float64 // over collision buckets
}

// PoolStats is a point-in-time copy of one block pool's state.
type PoolStats struct {
	Capacity   int
	SlabUsed   int // bump-pointer progress; only grows
	FreeBlocks int
	HeapAllocs uint64
	HeapFrees  uint64
}

// Stats bundles every statistic the store exposes.
type Stats struct {
	Ops          OpCounts
	Distribution DistributionStats
	ChainPool    PoolStats
	TreePool     PoolStats
}

// distribution walks the bucket array under read locks and computes the
// key-spread statistics in one pass over the collected counts.
func (ix *index) distribution() DistributionStats {
	var d DistributionStats

	counts := make([]int, 0, len(ix.buckets))
	for i := range ix.buckets {
		b := &ix.buckets[i]
		if !b.initialized {
			continue
		}
		if ix.concurrent {
			b.mu.RLock()
		}
		c := b.count
		if ix.concurrent {
			b.mu.RUnlock()
		}
		d.InitializedBuckets++
		if c > 0 {
			counts = append(counts, c)
		}
	}

	d.NonemptyBuckets = len(counts)
	d.EmptyBuckets = d.InitializedBuckets - d.NonemptyBuckets
	if d.InitializedBuckets > 0 {
		d.EmptyBucketPercent = float64(d.EmptyBuckets) / float64(d.InitializedBuckets) * 100.0
	}
	if len(counts) == 0 {
		return d
	}

	sort.Ints(counts)
	d.MinKeysInBucket = counts[0]
	d.MaxKeysInBucket = counts[len(counts)-1]
	totalCollisions := 0
	for _, c := range counts {
		d.TotalKeys += c
		if c > 1 {
			d.CollisionBuckets++
			totalCollisions += c - 1
			if c-1 > d.HighestCollisionInBucket {
				d.HighestCollisionInBucket = c - 1
			}
		}
	}
	d.MeanKeysPerBucket = float64(d.TotalKeys) / float64(d.NonemptyBuckets)
	if d.CollisionBuckets > 0 {
		d.MeanCollisionsPerBucket = float64(totalCollisions) / float64(d.CollisionBuckets)
	}

	if n := len(counts); n%2 == 0 {
		d.MedianKeysPerBucket = float64(counts[n/2-1]+counts[n/2]) / 2.0
	} else {
		d.MedianKeysPerBucket = float64(counts[n/2])
	}

	var sumSquared float64
	for _, c := range counts {
		diff := float64(c) - d.MeanKeysPerBucket
		sumSquared += diff * diff
	}
	d.StddevKeysPerBucket = math.Sqrt(sumSquared / float64(d.NonemptyBuckets))

	return d
}
