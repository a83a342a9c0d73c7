package database

import (
	"context"
	"fmt"

	"github.com/couscous-crawler/couscous/internal/model"
)

// InsertEmail records an email address found on a page. It reports whether
// the (email, source URL) pair was new. The same email found twice on the
// same page is recorded once; the same email on two different pages is
// recorded twice, preserving both attributions.
func (cdb *CrawlDB) InsertEmail(ctx context.Context, email, sourceURL string) (bool, error) {
	return cdb.insertArtifact(ctx,
		`INSERT OR IGNORE INTO emails (email, source_url) VALUES (?, ?)`,
		email, sourceURL)
}

// InsertPhone records a phone number found on a page, with the same
// dedup semantics as InsertEmail.
func (cdb *CrawlDB) InsertPhone(ctx context.Context, phone, sourceURL string) (bool, error) {
	return cdb.insertArtifact(ctx,
		`INSERT OR IGNORE INTO phones (phone, source_url) VALUES (?, ?)`,
		phone, sourceURL)
}

// InsertImage records a saved face-detection hit under its UUID.
func (cdb *CrawlDB) InsertImage(ctx context.Context, uuid, sourceURL string) (bool, error) {
	return cdb.insertArtifact(ctx,
		`INSERT OR IGNORE INTO images (uuid, source_url) VALUES (?, ?)`,
		uuid, sourceURL)
}

func (cdb *CrawlDB) insertArtifact(ctx context.Context, query, value, sourceURL string) (bool, error) {
	result, err := cdb.db.ExecContext(ctx, query, value, sourceURL)
	if err != nil {
		return false, fmt.Errorf("failed to insert artifact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rows > 0, nil
}

// UniqueEmailCount returns the number of distinct email addresses.
func (cdb *CrawlDB) UniqueEmailCount(ctx context.Context) (int64, error) {
	return cdb.scalar(ctx, `SELECT COUNT(DISTINCT email) FROM emails`)
}

// EmailEntryCount returns the total number of (email, source URL) rows.
func (cdb *CrawlDB) EmailEntryCount(ctx context.Context) (int64, error) {
	return cdb.scalar(ctx, `SELECT COUNT(*) FROM emails`)
}

// UniquePhoneCount returns the number of distinct phone numbers.
func (cdb *CrawlDB) UniquePhoneCount(ctx context.Context) (int64, error) {
	return cdb.scalar(ctx, `SELECT COUNT(DISTINCT phone) FROM phones`)
}

// ImageCount returns the number of saved face-detection hits.
func (cdb *CrawlDB) ImageCount(ctx context.Context) (int64, error) {
	return cdb.scalar(ctx, `SELECT COUNT(*) FROM images`)
}

func (cdb *CrawlDB) scalar(ctx context.Context, query string) (int64, error) {
	var count int64
	if err := cdb.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query count: %w", err)
	}
	return count, nil
}

// Stats returns aggregate counts across all tables. Used for the final
// console summary and by the report command.
func (cdb *CrawlDB) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	var err error

	if stats.UniqueEmails, err = cdb.UniqueEmailCount(ctx); err != nil {
		return stats, err
	}
	if stats.EmailEntries, err = cdb.EmailEntryCount(ctx); err != nil {
		return stats, err
	}
	if stats.UniquePhones, err = cdb.UniquePhoneCount(ctx); err != nil {
		return stats, err
	}
	if stats.Images, err = cdb.ImageCount(ctx); err != nil {
		return stats, err
	}
	if stats.PendingURLs, err = cdb.PendingCount(ctx); err != nil {
		return stats, err
	}
	if stats.DoneURLs, err = cdb.DoneCount(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// Emails returns all recorded email artifacts ordered by value.
func (cdb *CrawlDB) Emails(ctx context.Context) ([]model.Artifact, error) {
	return cdb.listArtifacts(ctx,
		`SELECT email, source_url, found_at FROM emails ORDER BY email, source_url`)
}

// Phones returns all recorded phone artifacts ordered by value.
func (cdb *CrawlDB) Phones(ctx context.Context) ([]model.Artifact, error) {
	return cdb.listArtifacts(ctx,
		`SELECT phone, source_url, found_at FROM phones ORDER BY phone, source_url`)
}

func (cdb *CrawlDB) listArtifacts(ctx context.Context, query string) ([]model.Artifact, error) {
	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var results []model.Artifact
	for rows.Next() {
		var a model.Artifact
		var foundAt string
		if err := rows.Scan(&a.Value, &a.SourceURL, &foundAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.FoundAt = parseTimestamp(foundAt)
		results = append(results, a)
	}

	return results, rows.Err()
}

// Images returns all saved face-detection hits ordered by discovery time.
func (cdb *CrawlDB) Images(ctx context.Context) ([]model.ImageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT uuid, source_url, found_at FROM images ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var results []model.ImageRecord
	for rows.Next() {
		var img model.ImageRecord
		var foundAt string
		if err := rows.Scan(&img.UUID, &img.SourceURL, &foundAt); err != nil {
			return nil, fmt.Errorf("failed to scan image record: %w", err)
		}
		img.FoundAt = parseTimestamp(foundAt)
		results = append(results, img)
	}

	return results, rows.Err()
}
