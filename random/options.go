package random

import (
	"math/rand/v2"

	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

const (
	// DefaultRange is the half-width of the interval numbers are drawn from
	// when a schema declares neither bound.
	DefaultRange = 500
	// DefaultLengthSpread is how far beyond minLength a string or binary
	// length may reach when maxLength is not declared.
	DefaultLengthSpread = 20
	// DefaultItemSpread is how far beyond minItems an array length may reach
	// when maxItems is not declared.
	DefaultItemSpread = 5
	// DefaultMaxDepth bounds recursion through nested schemas.
	DefaultMaxDepth = 32
)

// Option is a function that configures a Generator.
type Option func(*config) error

type config struct {
	rng          *rand.Rand
	rangeWidth   float64
	lengthSpread int
	itemSpread   int
	maxDepth     int
	logger       logging.Logger
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		rangeWidth:   DefaultRange,
		lengthSpread: DefaultLengthSpread,
		itemSpread:   DefaultItemSpread,
		maxDepth:     DefaultMaxDepth,
		logger:       logging.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return cfg, nil
}

// WithSeed makes the generator deterministic: two generators with the same
// seed produce the same sequence of values for the same schemas.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.rng = rand.New(rand.NewPCG(seed, seed))
		return nil
	}
}

// WithRand supplies the random source directly.
func WithRand(r *rand.Rand) Option {
	return func(cfg *config) error {
		if r == nil {
			return &oaserrors.ConfigError{Option: "rand", Message: "must not be nil"}
		}
		cfg.rng = r
		return nil
	}
}

// WithDefaultRange sets the half-width of the interval used for unbounded
// numbers. A schema with one bound draws from a window twice this wide.
// Default: DefaultRange
func WithDefaultRange(n float64) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "defaultRange", Value: n, Message: "must be positive"}
		}
		cfg.rangeWidth = n
		return nil
	}
}

// WithLengthSpread sets how far beyond minLength and minItems a generated
// length may reach when no maximum is declared. The item spread for arrays
// is capped at DefaultItemSpread unless n is smaller.
// Default: DefaultLengthSpread
func WithLengthSpread(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "lengthSpread", Value: n, Message: "must not be negative"}
		}
		cfg.lengthSpread = n
		cfg.itemSpread = min(n, DefaultItemSpread)
		return nil
	}
}

// WithMaxDepth bounds how deeply nested schemas are followed. Beyond it
// composite values are left out.
// Default: DefaultMaxDepth
func WithMaxDepth(depth int) Option {
	return func(cfg *config) error {
		if depth <= 0 {
			return &oaserrors.ConfigError{Option: "maxDepth", Value: depth, Message: "must be positive"}
		}
		cfg.maxDepth = depth
		return nil
	}
}

// WithLogger sets the structured logger for debug output.
// Default: logging.NopLogger
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logging.OrNop(l)
		return nil
	}
}
