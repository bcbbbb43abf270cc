package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/decimalbell/keystore"
)

func main() {
	buckets := flag.Int("buckets", 1024, "bucket count (power of two)")
	workers := flag.Int("workers", 1000, "concurrent workers")
	ops := flag.Int("ops", 1000, "set-then-get pairs per worker")
	prealloc := flag.Float64("prealloc", 1.0, "chain-node pool prealloc factor in [0,1]")
	deletes := flag.Bool("deletes", false, "delete every key after verification")
	flag.Parse()

	store, err := keystore.New(*buckets, keystore.WithPreallocFactor(*prealloc))
	if err != nil {
		log.Fatalf("keystress: %v", err)
	}

	log.Printf("keystress: %d workers x %d ops over %d buckets (prealloc %.2f)",
		*workers, *ops, *buckets, *prealloc)

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < *workers; w++ {
		base := w * *ops
		g.Go(func() error {
			// Disjoint key space per worker; collisions happen only at
			// the bucket level.
			for i := 0; i < *ops; i++ {
				key := fmt.Sprintf("K%d", base+i)
				value := []byte(key)
				if err := store.Set(key, value); err != nil {
					return fmt.Errorf("set %s: %w", key, err)
				}
				got, err := store.Get(key)
				if err != nil {
					return fmt.Errorf("get %s after set: %w", key, err)
				}
				if !bytes.Equal(got, value) {
					return fmt.Errorf("get %s: got %q, want %q", key, got, value)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("keystress: worker failed: %v", err)
	}
	elapsed := time.Since(start)

	// Post-join sweep over the whole key space.
	total := *workers * *ops
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("K%d", i)
		got, err := store.Get(key)
		if err != nil {
			log.Fatalf("keystress: verify %s: %v", key, err)
		}
		if !bytes.Equal(got, []byte(key)) {
			log.Fatalf("keystress: verify %s: got %q", key, got)
		}
	}

	st := store.Stats()
	log.Printf("keystress: %d pairs in %v (%.0f ops/s)",
		total, elapsed, float64(2*total)/elapsed.Seconds())
	log.Printf("keystress: keys=%d nonempty-buckets=%d max-chain=%d mean=%.2f stddev=%.2f",
		st.Distribution.TotalKeys, st.Distribution.NonemptyBuckets,
		st.Distribution.MaxKeysInBucket, st.Distribution.MeanKeysPerBucket,
		st.Distribution.StddevKeysPerBucket)
	log.Printf("keystress: chain pool capacity=%d slab-used=%d heap-allocs=%d",
		st.ChainPool.Capacity, st.ChainPool.SlabUsed, st.ChainPool.HeapAllocs)

	if *deletes {
		for i := 0; i < total; i++ {
			key := fmt.Sprintf("K%d", i)
			if err := store.Delete(key); err != nil {
				log.Fatalf("keystress: delete %s: %v", key, err)
			}
		}
		if n := store.Len(); n != 0 {
			log.Fatalf("keystress: %d keys left after full delete", n)
		}
		log.Printf("keystress: deleted all %d keys", total)
	}

	if err := store.Close(); err != nil {
		log.Fatalf("keystress: close: %v", err)
	}
}
