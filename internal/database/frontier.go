package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/couscous-crawler/couscous/internal/model"
)

// Enqueue inserts a pending task for the URL unless the frontier already
// holds a row for it in any state. It reports whether a new row was inserted.
//
// Design decision: INSERT OR IGNORE against the UNIQUE(url) constraint makes
// enqueue idempotent by construction. Two workers discovering the same link
// at the same time race harmlessly; exactly one row ever exists per URL.
func (cdb *CrawlDB) Enqueue(ctx context.Context, url string, depth int) (bool, error) {
	result, err := cdb.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO url_queue (url, depth, status) VALUES (?, ?, ?)`,
		url, depth, string(model.TaskPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to enqueue URL: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read enqueue result: %w", err)
	}
	return rows > 0, nil
}

// Claim atomically selects one pending task, transitions it to processing,
// and returns it. It returns (nil, nil) when no pending task exists.
//
// Design decision: A single UPDATE..RETURNING statement makes the
// select-and-transition atomic inside SQLite, so two concurrent claimers can
// never receive the same URL. The subquery orders by id, which keeps the
// crawl roughly breadth-first without promising strict ordering.
func (cdb *CrawlDB) Claim(ctx context.Context) (*model.Task, error) {
	var task model.Task
	err := cdb.db.QueryRowContext(ctx, `
	UPDATE url_queue
	SET status = ?
	WHERE id = (SELECT id FROM url_queue WHERE status = ? ORDER BY id LIMIT 1)
	RETURNING url, depth`,
		string(model.TaskProcessing), string(model.TaskPending),
	).Scan(&task.URL, &task.Depth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim URL: %w", err)
	}

	task.State = model.TaskProcessing
	return &task, nil
}

// Complete transitions a processing task to done. Completing an unknown or
// already-done URL is a no-op, never an error, so the worker loop can call
// it unconditionally.
func (cdb *CrawlDB) Complete(ctx context.Context, url string) error {
	_, err := cdb.db.ExecContext(ctx,
		`UPDATE url_queue SET status = ? WHERE url = ?`,
		string(model.TaskDone), url,
	)
	if err != nil {
		return fmt.Errorf("failed to complete URL: %w", err)
	}
	return nil
}

// ResetInterrupted transitions every processing row back to pending and
// returns how many were reset. Processing rows at startup were orphaned by a
// prior crash or interrupt; resetting them is the crawl's sole
// crash-recovery mechanism.
func (cdb *CrawlDB) ResetInterrupted(ctx context.Context) (int64, error) {
	result, err := cdb.db.ExecContext(ctx,
		`UPDATE url_queue SET status = ? WHERE status = ?`,
		string(model.TaskPending), string(model.TaskProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset interrupted URLs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reset result: %w", err)
	}
	return count, nil
}

// Clear deletes all frontier and visited state. It is used only when
// starting a fresh (non-resumed) crawl; artifacts are never deleted.
func (cdb *CrawlDB) Clear(ctx context.Context) error {
	if _, err := cdb.db.ExecContext(ctx, `DELETE FROM url_queue`); err != nil {
		return fmt.Errorf("failed to clear frontier: %w", err)
	}
	if _, err := cdb.db.ExecContext(ctx, `DELETE FROM visited`); err != nil {
		return fmt.Errorf("failed to clear visited set: %w", err)
	}
	return nil
}

// PendingCount returns the number of pending frontier tasks.
func (cdb *CrawlDB) PendingCount(ctx context.Context) (int64, error) {
	return cdb.countByStatus(ctx, model.TaskPending)
}

// ProcessingCount returns the number of frontier tasks currently claimed by
// a worker. The quiescence detector uses this to decide whether an idle
// frontier really means the crawl is over.
func (cdb *CrawlDB) ProcessingCount(ctx context.Context) (int64, error) {
	return cdb.countByStatus(ctx, model.TaskProcessing)
}

// DoneCount returns the number of fully processed frontier tasks.
func (cdb *CrawlDB) DoneCount(ctx context.Context) (int64, error) {
	return cdb.countByStatus(ctx, model.TaskDone)
}

func (cdb *CrawlDB) countByStatus(ctx context.Context, state model.TaskState) (int64, error) {
	var count int64
	err := cdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM url_queue WHERE status = ?`, string(state),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s URLs: %w", state, err)
	}
	return count, nil
}

// TaskState returns the frontier state of a URL, or ("", nil) when the URL
// is not in the frontier. Mostly useful for tests and diagnostics.
func (cdb *CrawlDB) TaskState(ctx context.Context, url string) (model.TaskState, error) {
	var status string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT status FROM url_queue WHERE url = ?`, url,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query task state: %w", err)
	}
	return model.TaskState(status), nil
}

// HasVisited reports whether a URL has ever been dispatched to a worker.
func (cdb *CrawlDB) HasVisited(ctx context.Context, url string) (bool, error) {
	var count int64
	err := cdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visited WHERE url = ?`, url,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check visited set: %w", err)
	}
	return count > 0, nil
}

// MarkVisited records that a URL has been dispatched. Idempotent.
//
// The frontier already deduplicates by URL, so the visited set's job is
// narrower: it prevents re-processing a URL that was enqueued again from a
// different source page before the first claim completed.
func (cdb *CrawlDB) MarkVisited(ctx context.Context, url string) error {
	_, err := cdb.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visited (url) VALUES (?)`, url,
	)
	if err != nil {
		return fmt.Errorf("failed to mark URL visited: %w", err)
	}
	return nil
}
