// Package device turns raw User-Agent strings into human-readable client
// descriptions. The audit trail stores both: the raw string as evidence, the
// parsed form so owners can read "Chrome on Mac OS X" instead of a Mozilla
// token soup.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent extracts a display name like "Chrome on Mac OS X" from a
// User-Agent header. Unknown parts degrade gracefully rather than erroring.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
