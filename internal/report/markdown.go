package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/couscous-crawler/couscous/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeArtifacts(md, "Email Addresses", report.Emails)
	w.writeArtifacts(md, "Phone Numbers", report.Phones)
	w.writeImages(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Couscous Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Database", "`" + report.DatabasePath + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.FormatInt(report.Stats.DoneURLs, 10)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the aggregate counts section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")

	s := report.Stats
	md.Table(markdown.TableSet{
		Header: []string{"Artifact", "Count"},
		Rows: [][]string{
			{"Unique emails", strconv.FormatInt(s.UniqueEmails, 10)},
			{"Email entries", strconv.FormatInt(s.EmailEntries, 10)},
			{"Unique phones", strconv.FormatInt(s.UniquePhones, 10)},
			{"Saved images", strconv.FormatInt(s.Images, 10)},
			{"Pending URLs", strconv.FormatInt(s.PendingURLs, 10)},
		},
	})
	md.PlainText("")

	if s.PendingURLs > 0 {
		md.Notef(
			"The frontier still holds %d pending URLs. Re-run with --resume to continue this crawl.",
			s.PendingURLs,
		)
		md.PlainText("")
	}
}

// writeArtifacts writes one artifact listing section as a table.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, title string, artifacts []model.Artifact) {
	md.H2(title)
	md.PlainText("")

	if len(artifacts) == 0 {
		md.PlainText("None found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(artifacts))
	for i, a := range artifacts {
		rows[i] = []string{
			"`" + a.Value + "`",
			truncateString(a.SourceURL, 60),
			a.FoundAt.Format("2006-01-02 15:04"),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Value", "Found On", "First Seen"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImages writes the saved images section.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Saved Images")
	md.PlainText("")

	if len(report.Images) == 0 {
		md.PlainText("None saved.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Images))
	for i, img := range report.Images {
		rows[i] = []string{
			"`" + img.UUID + "`",
			truncateString(img.SourceURL, 60),
			img.FoundAt.Format("2006-01-02 15:04"),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"UUID", "Found On", "Saved At"},
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
