// Package keystore is an embedded, in-process key-value store: binary
// values keyed by non-empty strings, held in a fixed-size array of hash
// buckets with per-bucket collision chains.
package keystore

import (
	"fmt"
	"sync/atomic"
	"time"
)

type Store struct {
	options Options
	seed    uint32

	index    *index
	counters counters
	closed   atomic.Bool
}

// New creates a store with bucketCount buckets. bucketCount must be a
// power of two; the bucket index is derived from the key hash by masking.
//
// In concurrent mode (the default) every bucket is initialized eagerly;
// in single-threaded mode buckets are created on first write.
func New(bucketCount int, opts ...Option) (*Store, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if bucketCount <= 0 {
		return nil, fmt.Errorf("%w: bucket count %d", ErrInvalidArgument, bucketCount)
	}
	if !isPowerOfTwo(bucketCount) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConfig, bucketCount)
	}
	if options.preallocFactor < 0 || options.preallocFactor > 1 {
		return nil, fmt.Errorf("%w: prealloc factor %v not in [0, 1]", ErrInvalidArgument, options.preallocFactor)
	}

	seed := options.hashSeed
	if !options.seedSet {
		// Clock seeding is adequate: the store is not exposed to
		// adversarial key sets.
		seed = uint32(time.Now().UnixNano())
	}

	return &Store{
		options: options,
		seed:    seed,
		index:   newIndex(bucketCount, options.preallocFactor, options.concurrent),
	}, nil
}

// Set inserts key with a copy of value, or updates the existing entry in
// place. An empty value is rejected for a new key but accepted as an
// update, which drops the stored buffer and leaves the key present with
// a nil value.
func (s *Store) Set(key string, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		err := fmt.Errorf("%w: empty key", ErrInvalidArgument)
		s.counters.observeSet(false, err)
		return err
	}

	hash := murmur32(key, s.seed)
	inserted, err := s.index.upsert(bucketIndex(hash, len(s.index.buckets)), key, hash, value)
	s.counters.observeSet(inserted, err)
	return err
}

// Get returns a copy of the value stored under key; the caller owns the
// returned slice. A key whose value was dropped by a zero-length update
// reads as (nil, nil). A missing key reads as ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if key == "" {
		err := fmt.Errorf("%w: empty key", ErrInvalidArgument)
		s.counters.observeGet(err)
		return nil, err
	}

	hash := murmur32(key, s.seed)
	value, err := s.index.lookup(bucketIndex(hash, len(s.index.buckets)), key, hash)
	s.counters.observeGet(err)
	return value, err
}

// Delete removes key and its entry. Returns ErrNotFound when absent.
func (s *Store) Delete(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		err := fmt.Errorf("%w: empty key", ErrInvalidArgument)
		s.counters.observeDelete(err)
		return err
	}

	hash := murmur32(key, s.seed)
	err := s.index.remove(bucketIndex(hash, len(s.index.buckets)), key, hash)
	s.counters.observeDelete(err)
	return err
}

// Len reports the number of live keys.
func (s *Store) Len() int {
	if s.closed.Load() {
		return 0
	}
	return s.index.len()
}

// Stats snapshots the operation counters, the key distribution across
// buckets and both pools. Safe to call concurrently with operations.
func (s *Store) Stats() Stats {
	return Stats{
		Ops:          s.counters.snapshot(),
		Distribution: s.index.distribution(),
		ChainPool:    s.index.chainPool.stats(),
		TreePool:     s.index.treePool.stats(),
	}
}

// Close tears down every bucket and returns their chain nodes to the
// pool. Idempotent; operations after Close return ErrClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.index.destroy()
	return nil
}
