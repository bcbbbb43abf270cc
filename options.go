package keystore

const (
	defaultPreallocFactor = 1.0
	defaultConcurrent     = true
)

var (
	defaultOptions = Options{
		preallocFactor: defaultPreallocFactor,
		concurrent:     defaultConcurrent,
	}
)

type Option func(*Options)

type Options struct {
	preallocFactor float64
	concurrent     bool
	hashSeed       uint32
	seedSet        bool
}

// WithPreallocFactor sets the fraction of the bucket count pre-allocated
// as chain-node pool capacity, in [0, 1]. Zero disables the slab.
func WithPreallocFactor(factor float64) Option {
	return func(opts *Options) {
		opts.preallocFactor = factor
	}
}

// WithConcurrency toggles the per-bucket rwlocks and per-entry mutexes.
// Disabling it selects single-threaded mode with lazy bucket creation;
// the store must then only ever be used from one goroutine.
func WithConcurrency(concurrent bool) Option {
	return func(opts *Options) {
		opts.concurrent = concurrent
	}
}

// WithHashSeed fixes the hash seed instead of sampling the clock.
// Useful for reproducing a bucket layout.
func WithHashSeed(seed uint32) Option {
	return func(opts *Options) {
		opts.hashSeed = seed
		opts.seedSet = true
	}
}
