package model

import "time"

// Artifact is a single discovered contact artifact (an email address or a
// phone number) together with the page it was found on.
//
// The same value found on two different pages produces two artifacts; the
// persistence layer enforces uniqueness on (value, source URL) so the same
// value on the same page is recorded only once.
type Artifact struct {
	// Value is the normalized artifact value (lowercased email, or a phone
	// number normalized to its 0-prefixed national form).
	Value string `json:"value"`

	// SourceURL is the page the artifact was extracted from.
	SourceURL string `json:"source_url"`

	// FoundAt is when the artifact was first recorded.
	FoundAt time.Time `json:"found_at"`
}

// ImageRecord is a persisted face-detection hit. The image bytes live on
// disk under a directory named after the UUID; the database row only records
// the identifier and provenance.
type ImageRecord struct {
	// UUID identifies the saved image file.
	UUID string `json:"uuid"`

	// SourceURL is the page the image was discovered on.
	SourceURL string `json:"source_url"`

	// FoundAt is when the image was saved.
	FoundAt time.Time `json:"found_at"`
}

// Stats summarizes the contents of a crawl database.
type Stats struct {
	// UniqueEmails is the number of distinct email addresses.
	UniqueEmails int64 `json:"unique_emails"`

	// EmailEntries is the total number of (email, source URL) rows.
	EmailEntries int64 `json:"email_entries"`

	// UniquePhones is the number of distinct phone numbers.
	UniquePhones int64 `json:"unique_phones"`

	// Images is the number of saved face-detection hits.
	Images int64 `json:"images"`

	// PendingURLs and DoneURLs describe the frontier.
	PendingURLs int64 `json:"pending_urls"`
	DoneURLs    int64 `json:"done_urls"`
}

// CrawlReport is the material rendered by the report writers.
type CrawlReport struct {
	// DatabasePath is the crawl database the report was built from.
	DatabasePath string `json:"database_path"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Stats holds the aggregate counts.
	Stats Stats `json:"stats"`

	// Emails and Phones are the full artifact listings.
	Emails []Artifact `json:"emails"`
	Phones []Artifact `json:"phones"`

	// Images lists saved face-detection hits.
	Images []ImageRecord `json:"images"`
}
