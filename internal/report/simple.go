package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/couscous-crawler/couscous/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// maxEntries caps how many entries each listing section prints.
	// 0 means unlimited.
	maxEntries int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithMaxEntries limits how many entries each listing section prints.
func WithMaxEntries(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxEntries = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeArtifacts(&sb, "EMAIL ADDRESSES", report.Emails)
	w.writeArtifacts(&sb, "PHONE NUMBERS", report.Phones)
	w.writeImages(&sb, report)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         COUSCOUS CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Database:   %s\n", report.DatabasePath))
	sb.WriteString(fmt.Sprintf("Generated:  %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")
}

// writeSummary writes the aggregate counts section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	s := report.Stats
	sb.WriteString(fmt.Sprintf("  Unique emails:   %d (%d entries across pages)\n", s.UniqueEmails, s.EmailEntries))
	sb.WriteString(fmt.Sprintf("  Unique phones:   %d\n", s.UniquePhones))
	sb.WriteString(fmt.Sprintf("  Saved images:    %d\n", s.Images))
	sb.WriteString(fmt.Sprintf("  Pages crawled:   %d\n", s.DoneURLs))
	sb.WriteString(fmt.Sprintf("  Pending URLs:    %d\n", s.PendingURLs))
	sb.WriteString("\n")
}

// writeArtifacts writes one artifact listing section.
func (w *SimpleWriter) writeArtifacts(sb *strings.Builder, title string, artifacts []model.Artifact) {
	if len(artifacts) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(artifacts) == 0 {
		sb.WriteString("  None found\n\n")
		return
	}

	for i, a := range artifacts {
		if w.maxEntries > 0 && i >= w.maxEntries {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(artifacts)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("  [+] %s\n", a.Value))
		sb.WriteString(fmt.Sprintf("      Found on: %s\n", a.SourceURL))
	}
	sb.WriteString("\n")
}

// writeImages writes the saved images section.
func (w *SimpleWriter) writeImages(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Images) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SAVED IMAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Images) == 0 {
		sb.WriteString("  None saved\n\n")
		return
	}

	for i, img := range report.Images {
		if w.maxEntries > 0 && i >= w.maxEntries {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Images)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("  [+] %s\n", img.UUID))
		sb.WriteString(fmt.Sprintf("      Found on: %s\n", img.SourceURL))
	}
	sb.WriteString("\n")
}
