// Package domainname guesses a company's internet domain. The guess is
// best-effort: callers must not assume the domain resolves or is registered.
package domainname

import (
	"net/url"
	"regexp"
	"strings"
)

// legalSuffixes lists legal-entity suffixes in priority order; only the first
// match is stripped.
var legalSuffixes = []string{
	"limited liability partnership",
	"public limited company",
	"community interest company",
	"ltd",
	"limited",
	"plc",
	"llp",
	"cic",
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Derive produces a best-guess domain for a company. When websiteURL is
// non-empty only the URL is used: a malformed URL yields ("", false) with no
// fallback to the name heuristic.
func Derive(companyName, websiteURL string) (string, bool) {
	if strings.TrimSpace(websiteURL) != "" {
		return fromWebsite(websiteURL)
	}
	return fromName(companyName)
}

func fromWebsite(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", false
	}
	return host, true
}

func fromName(companyName string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name == "" {
		return "", false
	}

	name = stripLegalSuffix(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}

	slug := whitespaceRun.ReplaceAllString(b.String(), "-")
	slug = hyphenRun.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "", false
	}
	return slug + ".co.uk", true
}

// stripLegalSuffix removes at most one legal-entity suffix, respecting a
// word boundary so "consulted" keeps its tail.
func stripLegalSuffix(name string) string {
	for _, suffix := range legalSuffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		if len(name) == len(suffix) {
			return ""
		}
		prev := name[len(name)-len(suffix)-1]
		if prev == ' ' || prev == '.' || prev == ',' {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
