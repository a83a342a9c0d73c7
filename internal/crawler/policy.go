package crawler

import (
	"net/url"
	"strings"
)

// Policy decides whether discovered links should be followed. It is pure
// and stateless: the same inputs always produce the same answer, and
// nothing here touches the frontier or the network.
type Policy struct {
	// MaxDepth is the crawl depth limit. 0 means unlimited. Depth is
	// 1-based at the seed.
	MaxDepth int

	// StayOnDomain restricts the crawl to BaseDomain and its subdomains.
	StayOnDomain bool

	// BaseDomain is the seed URL's host, used for domain scoping.
	BaseDomain string
}

// FollowLinks reports whether links discovered on a page at the given depth
// should be followed at all. With MaxDepth=2, links found at depth 1
// (producing depth-2 tasks) are followed; links found at depth 2 are not.
func (p Policy) FollowLinks(depth int) bool {
	return p.MaxDepth == 0 || depth < p.MaxDepth
}

// InScope reports whether a link host is within the crawl's domain scope.
// When domain scoping is disabled every host is in scope. Otherwise the
// host must equal the base domain or be a strict subdomain of it; the
// suffix match is anchored on a dot boundary so that example.com.evil.com
// does not pass for base domain example.com.
//
// Host comparison is case-normalized. IDN/punycode normalization is the
// URL parser's job, not this gate's.
func (p Policy) InScope(host string) bool {
	if !p.StayOnDomain {
		return true
	}

	host = strings.ToLower(host)
	base := strings.ToLower(p.BaseDomain)

	return host == base || strings.HasSuffix(host, "."+base)
}

// Allow combines the depth and domain rules for a single discovered link:
// the link was found on a page at sourceDepth and points at linkURL.
// Schemes, fragments, and malformed hrefs are filtered upstream by the
// extractor, so only parsed absolute URLs reach this gate.
func (p Policy) Allow(linkURL *url.URL, sourceDepth int) bool {
	return p.FollowLinks(sourceDepth) && p.InScope(linkURL.Hostname())
}
