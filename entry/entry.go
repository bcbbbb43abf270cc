// Package entry implements the owning record for a single key: the
// immutable key and its stored hash, a value buffer of exact length, and
// an optional mutex guarding the value bytes.
package entry

import "sync"

type Entry struct {
	key   string
	hash  uint32
	value []byte

	// mu guards value. It exists only when the store runs concurrently,
	// and is always acquired inside the owning bucket's critical section.
	mu *sync.Mutex
}

// New copies value into a fresh buffer of exact length. The key and hash
// never change after construction, which permits lock-free comparison
// during chain traversal.
func New(key string, hash uint32, value []byte, concurrent bool) *Entry {
	e := &Entry{
		key:  key,
		hash: hash,
	}
	if len(value) > 0 {
		e.value = make([]byte, len(value))
		copy(e.value, value)
	}
	if concurrent {
		e.mu = new(sync.Mutex)
	}
	return e
}

func (e *Entry) Key() string {
	return e.key
}

func (e *Entry) Hash() uint32 {
	return e.hash
}

// Update replaces the value bytes. An empty value drops the buffer, a
// same-length value is overwritten in place, any other length gets a
// fresh buffer of exact size.
func (e *Entry) Update(value []byte) {
	if e.mu != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	switch {
	case len(value) == 0:
		e.value = nil
	case len(value) == len(e.value):
		copy(e.value, value)
	default:
		buf := make([]byte, len(value))
		copy(buf, value)
		e.value = buf
	}
}

// Read copies the current value into a buffer owned by the caller. A
// zero-length value reads as nil.
func (e *Entry) Read() []byte {
	if e.mu != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	if len(e.value) == 0 {
		return nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out
}

// ValueLen reports the current value length without copying.
func (e *Entry) ValueLen() int {
	if e.mu != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	return len(e.value)
}
