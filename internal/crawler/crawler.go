package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/couscous-crawler/couscous/internal/config"
	"github.com/couscous-crawler/couscous/internal/database"
	"github.com/couscous-crawler/couscous/internal/model"
)

// Worker-loop timing constants.
const (
	// idleSleep is how long a worker sleeps after finding the frontier
	// empty before polling again.
	idleSleep = 50 * time.Millisecond

	// idleStreakLimit is how many consecutive empty claims a worker
	// tolerates before it considers the crawl quiescent (subject to no
	// tasks being in flight). At 50ms per poll this gives in-flight
	// enqueues roughly half a second to land.
	idleStreakLimit = 10

	// jitterMin and jitterMax bound the randomized politeness delay
	// applied before every request.
	jitterMin = 50 * time.Millisecond
	jitterMax = 200 * time.Millisecond
)

// ImageSink receives image candidates discovered during the crawl. It is
// fully external to the crawl core: failures inside the sink never affect
// frontier or visited state.
type ImageSink interface {
	// Process handles one image candidate found on sourceURL.
	Process(ctx context.Context, imageURL, sourceURL string)
}

// Crawler coordinates the crawl: it owns the worker pool and drives the
// frontier through the database. All shared mutable state lives in the
// database; the Crawler itself only holds configuration, collaborators,
// and monotonic counters.
type Crawler struct {
	// db owns the frontier, visited set, and artifact tables.
	db *database.CrawlDB

	// cfg is the validated run configuration.
	cfg *config.Config

	// fetcher retrieves page bodies.
	fetcher Fetcher

	// images receives image candidates; nil disables the image pipeline.
	images ImageSink

	// policy is the depth/domain gate for discovered links.
	policy Policy

	// limiter caps the global request rate; nil means jitter-only pacing.
	limiter *rate.Limiter

	// logger is used for structured logging.
	logger *slog.Logger

	// pagesCrawled, emailsFound, and phonesFound are live counters for
	// progress reporting. Artifact counts here include duplicates; the
	// database holds the deduplicated truth.
	pagesCrawled atomic.Int64
	emailsFound  atomic.Int64
	phonesFound  atomic.Int64
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithFetcher replaces the default stealth fetcher. Used by tests and by
// callers that need custom transport behavior.
func WithFetcher(f Fetcher) Option {
	return func(c *Crawler) {
		c.fetcher = f
	}
}

// WithImageSink attaches an image pipeline to the crawl.
func WithImageSink(sink ImageSink) Option {
	return func(c *Crawler) {
		c.images = sink
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler for the given validated configuration.
func New(db *database.CrawlDB, cfg *config.Config, opts ...Option) *Crawler {
	c := &Crawler{
		db:  db,
		cfg: cfg,
		policy: Policy{
			MaxDepth:     cfg.Depth,
			StayOnDomain: cfg.StayOnDomain,
			BaseDomain:   cfg.BaseDomain(),
		},
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = NewStealthFetcher(cfg.Timeout,
			WithUserAgents(cfg.UserAgents),
			WithMaxBodySize(cfg.MaxBodySize),
			WithInsecureTLS(cfg.Insecure),
		)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Init prepares the frontier for the run.
//
// On a resumed run, tasks orphaned in the processing state by a previous
// crash or interrupt are moved back to pending; nothing else is touched,
// so completed work is never repeated. On a fresh run, the frontier and
// visited set are cleared and the seed URL is enqueued at depth 1.
// It returns the number of pending tasks the run starts with.
func (c *Crawler) Init(ctx context.Context) (int64, error) {
	if c.cfg.Resume {
		reset, err := c.db.ResetInterrupted(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to reset interrupted tasks: %w", err)
		}
		if reset > 0 {
			c.logger.Info("recovered interrupted tasks", "count", reset)
		}

		pending, err := c.db.PendingCount(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count pending tasks: %w", err)
		}
		return pending, nil
	}

	if err := c.db.Clear(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear frontier: %w", err)
	}
	if _, err := c.db.Enqueue(ctx, c.cfg.SeedURL, 1); err != nil {
		return 0, fmt.Errorf("failed to enqueue seed URL: %w", err)
	}
	return 1, nil
}

// Run executes the crawl with the configured number of workers and blocks
// until the crawl is quiescent or the context is cancelled. A cancelled
// context is not an error: in-flight tasks stay in the processing state
// and a later resumed run repairs them.
//
// Quiescence: workers both consume and produce tasks, so "frontier empty"
// at one instant does not mean the crawl is over - another worker may be
// about to enqueue successors. A worker only exits after idleStreakLimit
// consecutive empty claims AND an observation that no task is in the
// processing state. The streak bound is a heuristic rather than a proven
// barrier; the additional processing-count check closes the obvious race
// (a worker mid-page cannot be missed, because its task stays processing
// until its enqueues are done). We accept the residual fixed shutdown
// latency in exchange for not building a synchronization barrier across
// the pool.
func (c *Crawler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := range c.cfg.Workers {
		workerID := i
		g.Go(func() error {
			return c.workerLoop(ctx, workerID)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// workerLoop claims and processes tasks until quiescence or cancellation.
func (c *Crawler) workerLoop(ctx context.Context, workerID int) error {
	idleStreak := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		task, err := c.db.Claim(ctx)
		if err != nil {
			// A claim failure with a live context is a database problem;
			// backing off and retrying is all a worker can do.
			c.logger.Warn("claim failed", "worker", workerID, "error", err)
			if !sleepCtx(ctx, idleSleep) {
				return nil
			}
			continue
		}

		if task == nil {
			idleStreak++
			if idleStreak > idleStreakLimit {
				processing, err := c.db.ProcessingCount(ctx)
				if err != nil {
					c.logger.Warn("processing count failed", "worker", workerID, "error", err)
				} else if processing == 0 {
					c.logger.Debug("worker quiescent", "worker", workerID)
					return nil
				}
				// Other workers still hold tasks that may produce work.
				idleStreak = 0
			}
			if !sleepCtx(ctx, idleSleep) {
				return nil
			}
			continue
		}

		idleStreak = 0
		c.processTask(ctx, task)
	}
}

// processTask handles one claimed task end to end. Any recoverable failure
// still marks the task done: fetch failures are not retried within a
// crawl, and the URL is permanently consumed.
func (c *Crawler) processTask(ctx context.Context, task *model.Task) {
	// Completion must happen no matter how processing went, or the task
	// would stay processing until the next resumed run.
	defer func() {
		if err := c.db.Complete(ctx, task.URL); err != nil {
			c.logger.Warn("failed to complete task", "url", task.URL, "error", err)
		}
	}()

	// The frontier deduplicates by URL, but the same URL can have been
	// enqueued from two source pages before either claim happened. The
	// visited set converges those races to one processing pass.
	visited, err := c.db.HasVisited(ctx, task.URL)
	if err != nil {
		c.logger.Warn("visited check failed", "url", task.URL, "error", err)
		return
	}
	if visited {
		return
	}

	// Mark before any network I/O so a slow fetch cannot cause the URL to
	// be dispatched twice.
	if err := c.db.MarkVisited(ctx, task.URL); err != nil {
		c.logger.Warn("failed to mark visited", "url", task.URL, "error", err)
		return
	}

	c.logger.Debug("crawling", "url", task.URL, "depth", task.Depth)

	if !c.pace(ctx) {
		return
	}

	body, err := c.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		c.logger.Debug("fetch failed", "url", task.URL, "error", err)
		return
	}
	if body == "" {
		// Non-HTML content; nothing to extract.
		return
	}

	c.pagesCrawled.Add(1)
	c.harvestArtifacts(ctx, task.URL, body)

	pageURL, err := url.Parse(task.URL)
	if err != nil {
		return
	}

	if c.images != nil {
		for _, imageURL := range ExtractImageURLs(body, pageURL) {
			c.images.Process(ctx, imageURL, task.URL)
		}
	}

	if c.policy.FollowLinks(task.Depth) {
		c.enqueueLinks(ctx, pageURL, body, task.Depth)
	}
}

// harvestArtifacts extracts and records emails and phones from a page.
// Duplicate inserts are counted, not treated as errors.
func (c *Crawler) harvestArtifacts(ctx context.Context, pageURL, body string) {
	emails := ExtractEmails(body)
	newEmails := 0
	for _, email := range emails {
		inserted, err := c.db.InsertEmail(ctx, email, pageURL)
		if err != nil {
			c.logger.Debug("failed to record email", "url", pageURL, "error", err)
			continue
		}
		if inserted {
			newEmails++
		}
	}
	if len(emails) > 0 {
		c.emailsFound.Add(int64(len(emails)))
		c.logger.Info("found emails", "url", pageURL, "count", len(emails), "new", newEmails)
	}

	phones := ExtractPhones(body)
	newPhones := 0
	for _, phone := range phones {
		inserted, err := c.db.InsertPhone(ctx, phone, pageURL)
		if err != nil {
			c.logger.Debug("failed to record phone", "url", pageURL, "error", err)
			continue
		}
		if inserted {
			newPhones++
		}
	}
	if len(phones) > 0 {
		c.phonesFound.Add(int64(len(phones)))
		c.logger.Info("found phones", "url", pageURL, "count", len(phones), "new", newPhones)
	}
}

// enqueueLinks applies the policy gate to every outbound link and enqueues
// the survivors at depth+1.
func (c *Crawler) enqueueLinks(ctx context.Context, pageURL *url.URL, body string, depth int) {
	for _, link := range ExtractLinks(body, pageURL) {
		linkURL, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !c.policy.Allow(linkURL, depth) {
			continue
		}

		// Cheap pre-check; the enqueue itself is idempotent either way.
		visited, err := c.db.HasVisited(ctx, link)
		if err != nil || visited {
			continue
		}

		if _, err := c.db.Enqueue(ctx, link, depth+1); err != nil {
			c.logger.Debug("failed to enqueue link", "url", link, "error", err)
		}
	}
}

// pace applies the politeness jitter and the optional global rate limit.
// It reports false when the context was cancelled while waiting.
func (c *Crawler) pace(ctx context.Context) bool {
	jitter := jitterMin + time.Duration(rand.Int64N(int64(jitterMax-jitterMin)))
	if !sleepCtx(ctx, jitter) {
		return false
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false
		}
	}
	return true
}

// Progress is a snapshot of the crawler's live counters.
type Progress struct {
	// PagesCrawled is the number of pages fetched and processed.
	PagesCrawled int64

	// EmailsFound and PhonesFound count extracted artifacts including
	// duplicates; the database holds deduplicated totals.
	EmailsFound int64
	PhonesFound int64
}

// Snapshot returns the crawler's current progress counters.
func (c *Crawler) Snapshot() Progress {
	return Progress{
		PagesCrawled: c.pagesCrawled.Load(),
		EmailsFound:  c.emailsFound.Load(),
		PhonesFound:  c.phonesFound.Load(),
	}
}

// sleepCtx sleeps for d unless the context is cancelled first. It reports
// whether the full sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
