// Package orgdomain derives the organization context of a request from its host.
package orgdomain

import (
	"net"
	"strings"
)

// Subdomains that can never name an organization.
var reserved = map[string]bool{
	"www":     true,
	"app":     true,
	"api":     true,
	"console": true,
}

// Parse returns the organization slug addressed by host, if any. A host of the
// form <slug>.<baseDomain> names an organization unless the slug is reserved.
// When the host carries no organization, fallbackSlug (from a rewrite or query
// parameter) is honored. valid reports whether an organization context exists.
func Parse(host, fallbackSlug, baseDomain string) (slug string, valid bool) {
	h := strings.ToLower(strings.TrimSpace(host))
	if strings.Contains(h, ":") {
		if stripped, _, err := net.SplitHostPort(h); err == nil {
			h = stripped
		}
	}
	base := strings.ToLower(strings.TrimSpace(baseDomain))

	if base != "" && h != base && strings.HasSuffix(h, "."+base) {
		sub := strings.TrimSuffix(h, "."+base)
		// Nested subdomains (a.b.example.com) are not org domains.
		if sub != "" && !strings.Contains(sub, ".") && !reserved[sub] {
			return sub, true
		}
		return "", false
	}

	if fb := strings.ToLower(strings.TrimSpace(fallbackSlug)); fb != "" && !reserved[fb] {
		return fb, true
	}
	return "", false
}
