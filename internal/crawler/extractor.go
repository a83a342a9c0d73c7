package crawler

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// emailRegex matches email-shaped strings in page text.
//
// Design decision: We use a permissive regex rather than strict RFC 5322
// because false positives are cheap to filter afterwards, while a strict
// pattern would miss many real-world addresses.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// phoneRegex matches French phone numbers: +33 or 0 prefix, a non-zero
// first digit, then four groups of two digits with optional space, dot, or
// dash separators (e.g. "01 02 03 04 05", "+33 6 12 34 56 78", "0102030405").
var phoneRegex = regexp.MustCompile(`(?:\+33\s?|0)[1-9](?:[\s.\-]?\d{2}){4}`)

// falseEmailSuffixes are extensions that show up in email-shaped asset
// names (e.g. "background@2x.png") and must never be recorded as addresses.
var falseEmailSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"}

// ExtractEmails returns the distinct, lowercased email addresses found in
// the page body. Obvious false positives (asset filenames, implausibly
// short matches) are filtered out. Results are sorted for determinism.
func ExtractEmails(body string) []string {
	seen := make(map[string]bool)
	for _, match := range emailRegex.FindAllString(body, -1) {
		email := strings.ToLower(match)
		if isFalsePositiveEmail(email) {
			continue
		}
		seen[email] = true
	}
	return sortedKeys(seen)
}

// isFalsePositiveEmail reports whether an email-shaped match is junk.
func isFalsePositiveEmail(email string) bool {
	for _, suffix := range falseEmailSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return len(email) < 5
}

// ExtractPhones returns the distinct French phone numbers found in the page
// body, normalized to their 0-prefixed national form. Results are sorted.
func ExtractPhones(body string) []string {
	seen := make(map[string]bool)
	for _, match := range phoneRegex.FindAllString(body, -1) {
		if normalized := NormalizePhone(match); normalized != "" {
			seen[normalized] = true
		}
	}
	return sortedKeys(seen)
}

// NormalizePhone normalizes a French phone number to a 0-prefixed digit
// string: "+33 1 02 03 04 05", "01.02.03.04.05", and "0102030405" all
// become "0102030405".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "+33"):
		return "0" + digits[3:]
	case strings.HasPrefix(digits, "33") && len(digits) == 11:
		return "0" + digits[2:]
	default:
		return digits
	}
}

// ExtractLinks returns the distinct absolute http(s) URLs referenced by
// anchor tags in the page body, resolved against base. Fragments are
// stripped; javascript:, mailto:, tel:, data:, fragment-only, and empty
// hrefs are excluded here so downstream components never see them.
//
// Design decision: We parse with golang.org/x/net/html rather than regex
// because it correctly handles the malformed HTML common on the web and
// resolves relative hrefs through a proper base URL.
func ExtractLinks(body string, base *url.URL) []string {
	seen := make(map[string]bool)

	walkHTML(body, func(n *html.Node) {
		if n.Data != "a" {
			return
		}
		if resolved := resolveRef(getAttr(n, "href"), base); resolved != "" {
			seen[resolved] = true
		}
	})

	return sortedKeys(seen)
}

// imagePathHints identify URL paths that are worth handing to the image
// pipeline even without a recognizable extension.
var imagePathHints = []string{"/image", "/photo"}

// imageExtensions are path suffixes accepted as image candidates.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// ExtractImageURLs returns the distinct absolute http(s) image URLs
// referenced by img tags in the page body. Only URLs whose path looks like
// an image are returned; data: URIs are skipped.
func ExtractImageURLs(body string, base *url.URL) []string {
	seen := make(map[string]bool)

	walkHTML(body, func(n *html.Node) {
		if n.Data != "img" {
			return
		}
		resolved := resolveRef(getAttr(n, "src"), base)
		if resolved == "" {
			return
		}

		u, err := url.Parse(resolved)
		if err != nil {
			return
		}
		if looksLikeImagePath(strings.ToLower(u.Path)) {
			seen[resolved] = true
		}
	})

	return sortedKeys(seen)
}

// looksLikeImagePath reports whether a lowercased URL path plausibly
// addresses an image.
func looksLikeImagePath(path string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, hint := range imagePathHints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}

// walkHTML parses body and calls visit on every element node. Parse errors
// yield no visits; x/net/html recovers from almost anything, so this only
// triggers on pathological input.
func walkHTML(body string, visit func(*html.Node)) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// resolveRef resolves an href/src attribute against the base URL and
// returns the absolute http(s) URL with its fragment stripped, or "" when
// the reference must be excluded.
func resolveRef(ref string, base *url.URL) string {
	ref = strings.TrimSpace(ref)
	if ref == "" ||
		strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "javascript:") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "data:") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	resolved.Fragment = ""
	return resolved.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// sortedKeys returns the keys of a string set in sorted order.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
