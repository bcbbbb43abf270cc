package keystore

import "errors"

var (
	// ErrNotFound is returned by Get and Delete when the key is not present.
	ErrNotFound = errors.New("keystore: key not found")

	// ErrInvalidArgument is returned for an empty key, an empty value on
	// insert, a non-positive bucket count, or a prealloc factor outside [0, 1].
	ErrInvalidArgument = errors.New("keystore: invalid argument")

	// ErrInvalidConfig is returned when the bucket count is not a power of two.
	ErrInvalidConfig = errors.New("keystore: bucket count must be a power of two")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("keystore: store is closed")

	// ErrBucketUninitialized is returned when an operation reaches a bucket
	// that has not been initialized and may not be initialized by that
	// operation.
	ErrBucketUninitialized = errors.New("keystore: bucket uninitialized")

	// ErrUnsupportedVariant is returned when a bucket carries an unknown
	// container variant.
	ErrUnsupportedVariant = errors.New("keystore: unsupported bucket variant")
)
