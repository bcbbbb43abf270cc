package keystore

import "math/bits"

// MurmurHash3, 32-bit variant.
const (
	murmurC1 uint32 = 0xcc9e2d51
	murmurC2 uint32 = 0x1b873593
	murmurC3 uint32 = 0xe6546b64

	murmurFMix1 uint32 = 0x85ebca6b
	murmurFMix2 uint32 = 0xc2b2ae35
)

func murmur32(key string, seed uint32) uint32 {
	h := seed

	// Body: 4-byte little-endian blocks.
	data := key
	for len(data) >= 4 {
		k := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		h ^= mixBlock(k)
		h = bits.RotateLeft32(h, 13)
		h = h*5 + murmurC3
		data = data[4:]
	}

	// Tail: up to 3 trailing bytes.
	var k uint32
	switch len(data) {
	case 3:
		k ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(data[0])
		h ^= mixBlock(k)
	}

	// Finalization over the key length in bytes.
	h ^= uint32(len(key))
	h ^= h >> 16
	h *= murmurFMix1
	h ^= h >> 13
	h *= murmurFMix2
	h ^= h >> 16
	return h
}

func mixBlock(k uint32) uint32 {
	k *= murmurC1
	k = bits.RotateLeft32(k, 15)
	k *= murmurC2
	return k
}

// bucketIndex maps a hash onto [0, bucketCount). bucketCount is a power of
// two, so the index is a mask.
func bucketIndex(hash uint32, bucketCount int) uint32 {
	return hash & uint32(bucketCount-1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
