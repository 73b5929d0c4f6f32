package enforcer

import (
	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

// config holds the settings shared by Validate and New.
type config struct {
	strict   bool
	seed     *uint64
	maxDepth int
	logger   logging.Logger
}

// Option configures Validate and New.
type Option func(*config) error

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{logger: logging.NopLogger{}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithStrictMode makes Request reject query parameters the operation does not
// declare. Without it they are reported as warnings.
func WithStrictMode(strict bool) Option {
	return func(cfg *config) error {
		cfg.strict = strict
		return nil
	}
}

// WithRandomSeed makes Random reproducible.
func WithRandomSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = &seed
		return nil
	}
}

// WithMaxDepth limits how deeply the document may nest. Zero keeps the
// normalizer's default.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) error {
		if depth < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxDepth", Value: depth, Message: "must not be negative"}
		}
		cfg.maxDepth = depth
		return nil
	}
}

// WithLogger sets the logger passed down to every component.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logging.OrNop(l)
		return nil
	}
}
