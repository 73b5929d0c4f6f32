package normalizer

import (
	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

// DefaultMaxDepth is the nesting depth beyond which a value is rejected.
const DefaultMaxDepth = 256

// Option is a function that configures a normalization pass.
type Option func(*config) error

type config struct {
	version       Version
	maxDepth      int
	logger        logging.Logger
	errorHeader   string
	warningHeader string
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		version:       Version{Major: 3},
		maxDepth:      DefaultMaxDepth,
		logger:        logging.NopLogger{},
		errorHeader:   "One or more errors exist in the definition",
		warningHeader: "One or more warnings exist in the definition",
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithVersion sets the specification version context functions see.
// Default: 3.0.0. Ignored by NormalizeDocument, which reads the version from
// the document.
func WithVersion(version string) Option {
	return func(cfg *config) error {
		v, err := ParseVersion(version)
		if err != nil {
			return err
		}
		cfg.version = v
		return nil
	}
}

// WithMaxDepth bounds how deeply nested a value may be.
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

// WithHeaders sets the header sentences of the error and warning trees.
func WithHeaders(errorHeader, warningHeader string) Option {
	return func(cfg *config) error {
		cfg.errorHeader = errorHeader
		cfg.warningHeader = warningHeader
		return nil
	}
}
