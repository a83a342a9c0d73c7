package config

import (
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
// These defaults favor a polite, resumable crawl over raw throughput.
const (
	// DefaultWorkers is the number of concurrent crawl workers. Ten workers
	// keep a typical site busy without looking like a flood; the worker
	// count is also the network concurrency bound, so raising it raises the
	// number of simultaneous connections to the target.
	DefaultWorkers = 10

	// DefaultTimeout is the per-request HTTP timeout. 30 seconds tolerates
	// slow shared-hosting servers while still letting a stuck worker move on.
	DefaultTimeout = 30 * time.Second

	// DefaultDatabasePath is the SQLite file holding the frontier, the
	// visited set, and all discovered artifacts. Keeping it in the working
	// directory makes `--resume` the obvious follow-up command.
	DefaultDatabasePath = "emails.db"

	// DefaultDepth of 0 means unlimited crawl depth. Depth is 1-based at
	// the seed; a limit of N follows links discovered at depths < N.
	DefaultDepth = 0

	// DefaultFacesDir is where images that pass face detection are kept.
	DefaultFacesDir = "faces"

	// DefaultMinImageWidth and DefaultMinImageHeight reject thumbnails and
	// icons before the (expensive) external face detector runs. 128 pixels
	// is roughly the smallest image a detector produces useful results on.
	DefaultMinImageWidth  = 128
	DefaultMinImageHeight = 128

	// DefaultMaxBodySize limits the response body size read per page.
	// 10MB is generous for HTML while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "couscous"
)

// Config holds all configuration options for a crawl.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ImageConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// SeedURL is the absolute URL the crawl starts from. Required.
	SeedURL string

	// Depth is the maximum crawl depth. 0 means unlimited. Depth is
	// 1-based at the seed: with Depth=2, links discovered on the seed page
	// (depth 2) are fetched, but links found on those pages are not.
	Depth int

	// StayOnDomain restricts link-following to the seed's host and its
	// subdomains.
	StayOnDomain bool

	// Workers is the number of concurrent crawl workers. This doubles as
	// the bound on outstanding network requests.
	Workers int

	// DatabasePath is the SQLite file for all persistent crawl state.
	DatabasePath string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Resume continues an interrupted crawl from the existing database
	// instead of clearing the frontier and re-seeding.
	Resume bool

	// Verbose enables per-URL progress and error logging. When false,
	// recoverable errors are silent and only aggregate counts are printed.
	Verbose bool

	// Insecure disables TLS certificate verification. Useful for targets
	// with self-signed certificates.
	Insecure bool

	// RateLimit caps outgoing requests per second across all workers.
	// 0 disables the global cap; the per-request politeness jitter still
	// applies.
	RateLimit float64

	// ExtractImages enables the image download / face detection pipeline.
	ExtractImages bool

	// FacesDir is the output directory for images that pass face detection.
	FacesDir string

	// MinImageWidth and MinImageHeight reject undersized images before
	// face detection runs.
	MinImageWidth  int
	MinImageHeight int

	// DetectorCommand is the external face-detection command. The image
	// path is appended as the final argument; a zero exit status means a
	// face was found. Empty disables detection even when ExtractImages is
	// set (images are then only size-filtered, never saved).
	DetectorCommand []string

	// UserAgents is the pool of User-Agent headers; each request picks one
	// at random. Populated with a browser-like default set, overridable
	// via the config file.
	UserAgents []string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ConfigFilePath is the explicit path to the YAML config file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; CLI flags override them.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (worker count, timeout,
// image sizes). It also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Depth:          DefaultDepth,
		Workers:        DefaultWorkers,
		DatabasePath:   DefaultDatabasePath,
		Timeout:        DefaultTimeout,
		FacesDir:       DefaultFacesDir,
		MinImageWidth:  DefaultMinImageWidth,
		MinImageHeight: DefaultMinImageHeight,
		UserAgents:     defaultUserAgents(),
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// defaultUserAgents returns the built-in pool of browser User-Agent strings.
// Rotating through common browser identities keeps the crawler from being
// trivially filtered on its User-Agent.
func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	}
}

// BaseDomain returns the host of the seed URL, lowercased. It is the
// reference for domain-scoped crawls. Call Validate first; BaseDomain
// returns an empty string for an unparseable seed.
func (c *Config) BaseDomain() string {
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any worker starts.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}

	u, err := url.Parse(c.SeedURL)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return ErrInvalidSeedURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidSeedURL
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkerCount
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Depth < 0 {
		return ErrInvalidDepth
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.DatabasePath == "" {
		return ErrNoDatabasePath
	}
	if c.ExtractImages && (c.MinImageWidth <= 0 || c.MinImageHeight <= 0) {
		return ErrInvalidImageSize
	}

	return nil
}
