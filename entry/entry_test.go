package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewCopiesValue(t *testing.T) {
	value := []byte("world")
	e := New("hello", 0xdeadbeef, value, false)

	assert.Equal(t, "hello", e.Key())
	assert.EqualValues(t, 0xdeadbeef, e.Hash())
	assert.Equal(t, []byte("world"), e.Read())

	// Mutating the caller's slice must not reach the stored buffer.
	value[0] = 'X'
	assert.Equal(t, []byte("world"), e.Read())
}

func TestNewEmptyValue(t *testing.T) {
	e := New("k", 1, nil, false)
	assert.Nil(t, e.Read())
	assert.Equal(t, 0, e.ValueLen())
}

func TestUpdateSameLength(t *testing.T) {
	e := New("k", 1, []byte("aaaa"), false)
	e.Update([]byte("bbbb"))
	assert.Equal(t, []byte("bbbb"), e.Read())
	assert.Equal(t, 4, e.ValueLen())
}

func TestUpdateDifferentLength(t *testing.T) {
	e := New("k", 1, []byte("short"), false)

	e.Update([]byte("muchlongerdata"))
	assert.Equal(t, []byte("muchlongerdata"), e.Read())

	e.Update([]byte("s"))
	assert.Equal(t, []byte("s"), e.Read())
	assert.Equal(t, 1, e.ValueLen())
}

func TestUpdateZeroLength(t *testing.T) {
	e := New("k", 1, []byte("value"), false)

	e.Update(nil)
	assert.Nil(t, e.Read())
	assert.Equal(t, 0, e.ValueLen())

	// And back up from empty.
	e.Update([]byte("again"))
	assert.Equal(t, []byte("again"), e.Read())
}

func TestReadReturnsCopy(t *testing.T) {
	e := New("k", 1, []byte("value"), false)

	out := e.Read()
	out[0] = 'X'
	assert.Equal(t, []byte("value"), e.Read())
}

func TestUpdateDoesNotAliasCaller(t *testing.T) {
	src := []byte("fresh")
	e := New("k", 1, []byte("value"), false)
	e.Update(src)
	src[0] = 'X'
	assert.Equal(t, []byte("fresh"), e.Read())
}

func TestConcurrentReadUpdate(t *testing.T) {
	e := New("k", 1, []byte("0000"), true)

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < 10000; i++ {
			e.Update([]byte("aaaa"))
			e.Update([]byte("bb"))
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < 10000; i++ {
			out := e.Read()
			// Length and bytes must always be consistent; a torn read
			// would mix lengths.
			switch len(out) {
			case 4:
				if string(out) != "aaaa" && string(out) != "0000" {
					return assert.AnError
				}
			case 2:
				if string(out) != "bb" {
					return assert.AnError
				}
			default:
				return assert.AnError
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())
}
