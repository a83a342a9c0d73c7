package report

import (
	"context"
	"fmt"
	"time"

	"github.com/couscous-crawler/couscous/internal/database"
	"github.com/couscous-crawler/couscous/internal/model"
)

// Build assembles a CrawlReport from everything stored in the crawl
// database: aggregate counts plus the full email, phone, and image
// listings.
func Build(ctx context.Context, db *database.CrawlDB) (*model.CrawlReport, error) {
	stats, err := db.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	emails, err := db.Emails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}

	phones, err := db.Phones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list phones: %w", err)
	}

	images, err := db.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return &model.CrawlReport{
		DatabasePath: db.Path(),
		GeneratedAt:  time.Now(),
		Stats:        stats,
		Emails:       emails,
		Phones:       phones,
		Images:       images,
	}, nil
}
