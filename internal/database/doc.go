// Package database provides SQLite-based storage for couscous.
//
// This package implements the CrawlDB, which owns all shared mutable crawl
// state:
//   - The frontier (url_queue): URLs waiting to be crawled, with a
//     pending/processing/done lifecycle
//   - The visited set: URLs that have ever been dispatched to a worker
//   - The artifact tables: discovered emails, phones, and saved images
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. A single file makes interrupted crawls trivially resumable
//  4. UNIQUE constraints give us idempotent enqueue and artifact dedup
//     without application-level bookkeeping
//
// All methods are safe for concurrent use by multiple workers. The claim
// operation is a single UPDATE..RETURNING statement, so two concurrent
// claimers can never receive the same URL.
package database
