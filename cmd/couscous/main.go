// Package main provides the entry point for the couscous CLI.
//
// Couscous is a breadth-first web crawler that harvests contact artifacts
// (email addresses and French phone numbers) and, optionally, face images
// from websites. All crawl state lives in a SQLite database, so an
// interrupted crawl can be resumed exactly where it left off.
//
// Usage:
//
//	couscous crawl <url>
//	couscous crawl --resume <url>
//	couscous report --db emails.db
//
// See --help for all available options.
package main

// main is the entry point for couscous.
func main() {
	Execute()
}
