package keystore

import (
	"sync"

	"github.com/decimalbell/keystore/entry"
)

type bucketVariant uint8

const (
	chainVariant bucketVariant = iota + 1
	treeVariant // reserved
)

// chainNode links one entry into a bucket's collision chain. The stored
// hash duplicates the entry's hash so traversal can skip the key compare
// on a mismatch.
type chainNode struct {
	hash  uint32
	entry *entry.Entry
	next  *chainNode
}

// treeNode is the node shape of the reserved ordered container. Nothing
// constructs it yet; it exists to dimension the tree pool's block size.
type treeNode struct {
	hash  uint32
	entry *entry.Entry
	left  *treeNode
	right *treeNode
}

type bucket struct {
	mu          sync.RWMutex
	variant     bucketVariant
	head        *chainNode
	count       int
	initialized bool
}

func (b *bucket) init() {
	b.variant = chainVariant
	b.head = nil
	b.count = 0
	b.initialized = true
}

// findNode scans the chain. Hash first, key bytes only on a hash match.
func (b *bucket) findNode(key string, hash uint32) *chainNode {
	for n := b.head; n != nil; n = n.next {
		if n.hash == hash && n.entry.Key() == key {
			return n
		}
	}
	return nil
}

// removeNode unlinks and returns the first match, or nil.
func (b *bucket) removeNode(key string, hash uint32) *chainNode {
	var prev *chainNode
	for n := b.head; n != nil; n = n.next {
		if n.hash == hash && n.entry.Key() == key {
			if prev == nil {
				b.head = n.next
			} else {
				prev.next = n.next
			}
			n.next = nil
			return n
		}
		prev = n
	}
	return nil
}

// index owns the bucket array and the node pools.
//
// Locking is two-level and strictly ordered: the bucket rwlock protects
// chain structure (head, next, count), the per-entry mutex protects value
// bytes, and the entry mutex is only ever taken inside the bucket critical
// section. No path acquires a second bucket's lock while holding one.
type index struct {
	buckets    []bucket
	concurrent bool

	chainPool *pool[chainNode]
	treePool  *pool[treeNode]
}

func newIndex(bucketCount int, preallocFactor float64, concurrent bool) *index {
	ix := &index{
		buckets:    make([]bucket, bucketCount),
		concurrent: concurrent,
		chainPool:  newPool[chainNode](poolCapacity(bucketCount, preallocFactor)),
		treePool:   newPool[treeNode](0),
	}
	if concurrent {
		// Eager init: lazy creation under load would race on first touch.
		for i := range ix.buckets {
			ix.buckets[i].init()
		}
	}
	return ix
}

// upsert inserts or updates in one critical section. Reports whether a new
// entry was inserted.
func (ix *index) upsert(idx uint32, key string, hash uint32, value []byte) (bool, error) {
	b := &ix.buckets[idx]
	if !b.initialized {
		if ix.concurrent {
			return false, ErrBucketUninitialized
		}
		b.init()
	}

	if ix.concurrent {
		b.mu.Lock()
		defer b.mu.Unlock()
	}

	if b.variant != chainVariant {
		return false, ErrUnsupportedVariant
	}

	if n := b.findNode(key, hash); n != nil {
		n.entry.Update(value)
		return false, nil
	}

	// Empty values are rejected on the insert path only; an update above
	// may legally drop an existing value to zero length.
	if len(value) == 0 {
		return false, ErrInvalidArgument
	}

	e := entry.New(key, hash, value, ix.concurrent)
	node := ix.chainPool.alloc()
	node.hash = hash
	node.entry = e
	node.next = b.head
	b.head = node
	b.count++
	return true, nil
}

// lookup copies out the value for key, or returns ErrNotFound.
func (ix *index) lookup(idx uint32, key string, hash uint32) ([]byte, error) {
	b := &ix.buckets[idx]
	if !b.initialized {
		return nil, ErrNotFound
	}

	if ix.concurrent {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}

	if b.variant != chainVariant {
		return nil, ErrUnsupportedVariant
	}

	n := b.findNode(key, hash)
	if n == nil {
		return nil, ErrNotFound
	}
	return n.entry.Read(), nil
}

// remove unlinks the entry for key, returns its node to the pool and
// decrements the bucket count.
func (ix *index) remove(idx uint32, key string, hash uint32) error {
	b := &ix.buckets[idx]
	if !b.initialized {
		return ErrNotFound
	}

	if ix.concurrent {
		b.mu.Lock()
		defer b.mu.Unlock()
	}

	if b.variant != chainVariant {
		return ErrUnsupportedVariant
	}

	node := b.removeNode(key, hash)
	if node == nil {
		return ErrNotFound
	}
	b.count--
	ix.chainPool.release(node)
	return nil
}

func (ix *index) len() int {
	total := 0
	for i := range ix.buckets {
		b := &ix.buckets[i]
		if !b.initialized {
			continue
		}
		if ix.concurrent {
			b.mu.RLock()
		}
		total += b.count
		if ix.concurrent {
			b.mu.RUnlock()
		}
	}
	return total
}

// destroy tears down every bucket, returning chain nodes to the pool.
// Buckets transition back to uninitialized.
func (ix *index) destroy() {
	for i := range ix.buckets {
		b := &ix.buckets[i]
		if ix.concurrent {
			b.mu.Lock()
		}
		if b.initialized {
			n := b.head
			for n != nil {
				next := n.next
				ix.chainPool.release(n)
				n = next
			}
			b.head = nil
			b.count = 0
			b.variant = 0
			b.initialized = false
		}
		if ix.concurrent {
			b.mu.Unlock()
		}
	}
}
