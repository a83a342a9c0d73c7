// Package crawler implements the crawl orchestration engine for couscous.
//
// # Architecture
//
// The crawler is built around a durable frontier owned by the database
// package: a pool of workers claims URL tasks, fetches pages, extracts
// contact artifacts and outbound links, and feeds new tasks back into the
// frontier. Workers both consume and produce work, so there is no central
// work counter; termination is detected by the idle-streak rule described
// on Crawler.Run.
//
// # Components
//
//   - Crawler: owns the worker pool and the crawl lifecycle (init/run)
//   - Policy: pure depth and domain-scope gate for discovered links
//   - Fetcher: HTTP retrieval with per-request User-Agent rotation
//   - Extractor functions: email/phone/link/image extraction from HTML
//
// # Politeness
//
// Every request is preceded by a small randomized delay, and an optional
// global rate limiter caps requests per second across all workers. The
// worker count bounds outstanding network concurrency; there is no
// separate connection-pool cap.
//
// Design decision: We implement our own orchestration rather than using a
// crawler framework because the frontier must live in SQLite with explicit
// pending/processing/done states for crash recovery, and frameworks own
// their queue and visited set in ways that cannot be resumed across
// process restarts.
package crawler
