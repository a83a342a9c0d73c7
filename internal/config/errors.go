package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeedURL is returned when no starting URL is provided.
	ErrNoSeedURL = errors.New("no seed URL specified: provide a starting URL as the first argument")

	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed or
	// is not an absolute http(s) URL. The crawl cannot start without a
	// well-formed seed.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrInvalidWorkerCount is returned when the worker count is not positive.
	// Zero workers would mean the frontier is never drained.
	ErrInvalidWorkerCount = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	// A timeout of zero or negative would cause immediate fetch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the depth limit is negative.
	// Use 0 for an unlimited crawl.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative (0 = unlimited)")

	// ErrInvalidRateLimit is returned when the request rate is negative.
	// Use 0 to disable global rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative (0 = unlimited)")

	// ErrNoDatabasePath is returned when the database path is empty.
	ErrNoDatabasePath = errors.New("no database path specified")

	// ErrInvalidImageSize is returned when image extraction is enabled with
	// a non-positive minimum width or height.
	ErrInvalidImageSize = errors.New("invalid minimum image size: must be positive when image extraction is enabled")
)
