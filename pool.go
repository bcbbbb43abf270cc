package keystore

import (
	"math"
	"sync"
	"unsafe"
)

// pool is a fixed-capacity slab allocator for blocks of a single type.
//
// alloc prefers the LIFO free list, then the slab bump pointer, then the
// heap. release returns a block to the free list only when it originated
// from the slab and the free list has room; anything else is left to the
// garbage collector. All pool operations happen inside a bucket critical
// section, so the internal mutex is the last lock in the ordering
// {bucket rwlock -> entry mutex -> pool mutex}.
type pool[T any] struct {
	mu   sync.Mutex
	slab []T
	next int  // bump index into slab; only advances
	free []*T // LIFO stack of returned slab blocks

	heapAllocs uint64
	heapFrees  uint64
}

// newPool carves a slab of capacity blocks. A capacity of zero disables
// pre-allocation: every alloc falls through to the heap.
func newPool[T any](capacity int) *pool[T] {
	p := &pool[T]{}
	if capacity > 0 {
		p.slab = make([]T, capacity)
		p.free = make([]*T, 0, capacity)
	}
	return p
}

func poolCapacity(bucketCount int, preallocFactor float64) int {
	return int(math.Ceil(float64(bucketCount) * preallocFactor))
}

func (p *pool[T]) alloc() *T {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return b
	}
	if p.next < len(p.slab) {
		b := &p.slab[p.next]
		p.next++
		p.mu.Unlock()
		return b
	}
	p.heapAllocs++
	p.mu.Unlock()
	return new(T)
}

// release zeroes the block and, when it came from the slab, pushes it onto
// the free list for LIFO reuse. Heap blocks and overflow are dropped for
// the garbage collector to reclaim.
func (p *pool[T]) release(b *T) {
	if b == nil {
		return
	}
	var zero T
	*b = zero

	p.mu.Lock()
	if p.fromSlab(b) && len(p.free) < cap(p.free) {
		p.free = append(p.free, b)
		p.mu.Unlock()
		return
	}
	p.heapFrees++
	p.mu.Unlock()
}

// fromSlab reports whether b points into the slab on a block boundary.
// Address-range plus alignment check, constant time. Callers hold p.mu.
func (p *pool[T]) fromSlab(b *T) bool {
	if len(p.slab) == 0 {
		return false
	}
	size := unsafe.Sizeof(p.slab[0])
	start := uintptr(unsafe.Pointer(&p.slab[0]))
	end := start + size*uintptr(len(p.slab))
	addr := uintptr(unsafe.Pointer(b))
	if addr < start || addr >= end {
		return false
	}
	return (addr-start)%size == 0
}

func (p *pool[T]) stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Capacity:   len(p.slab),
		SlabUsed:   p.next,
		FreeBlocks: len(p.free),
		HeapAllocs: p.heapAllocs,
		HeapFrees:  p.heapFrees,
	}
}
